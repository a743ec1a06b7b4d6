package model

// Department 院系表 — 对应 departments
type Department struct {
	DepartmentID uint   `gorm:"column:id;primaryKey"             json:"id"`
	Name         string `gorm:"type:varchar(100);not null"       json:"name"`
	Code         string `gorm:"type:varchar(20);not null;unique" json:"code"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
