package model

// User 管理后台账号表 — 对应 users
type User struct {
	UserID       uint   `gorm:"column:id;primaryKey"                    json:"id"`
	Name         string `gorm:"type:varchar(100);not null"              json:"name"`
	Email        string `gorm:"type:varchar(255);not null;unique"       json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"              json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'admin'" json:"role"` // admin | staff
	IsActive     bool   `gorm:"not null;default:true"                   json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
