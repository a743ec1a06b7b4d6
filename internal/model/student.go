package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID    uint   `gorm:"column:id;primaryKey"              json:"id"`
	Name         string `gorm:"type:varchar(100);not null"        json:"name"`
	Email        string `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"        json:"-"`
	DepartmentID uint   `gorm:"not null;index"                    json:"department_id"`
	ClassID      uint   `gorm:"not null;index"                    json:"class_id"`
	SectionID    uint   `gorm:"not null;index"                    json:"section_id"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
