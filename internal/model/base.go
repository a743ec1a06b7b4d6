package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	CreatedBy *uint     `                               json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy *uint     `                               json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型（排课记录无软删除，删除即物理删除）
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}
