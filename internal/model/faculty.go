package model

// Faculty 教师表 — 对应 faculty
type Faculty struct {
	FacultyID    uint   `gorm:"column:id;primaryKey"              json:"id"`
	Name         string `gorm:"type:varchar(100);not null"        json:"name"`
	Email        string `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null;default:''" json:"-"`
	DepartmentID uint   `gorm:"not null;index"                    json:"department_id"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Faculty) TableName() string { return "faculty" }
