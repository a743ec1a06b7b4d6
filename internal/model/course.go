package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID     uint   `gorm:"column:id;primaryKey"             json:"id"`
	Name         string `gorm:"type:varchar(150);not null"       json:"name"`
	CourseCode   string `gorm:"type:varchar(20);not null;unique" json:"course_code"`
	DepartmentID uint   `gorm:"not null;index"                   json:"department_id"`
	CreditHours  int    `gorm:"type:smallint;not null;default:3" json:"credit_hours"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
