package model

// Class 班级（专业年级）表 — 对应 classes
type Class struct {
	ClassID      uint   `gorm:"column:id;primaryKey"       json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	DepartmentID uint   `gorm:"not null;index"             json:"department_id"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// Section 班级分组表 — 对应 sections
type Section struct {
	SectionID uint   `gorm:"column:id;primaryKey"      json:"id"`
	Name      string `gorm:"type:varchar(20);not null" json:"name"`
	ClassID   uint   `gorm:"not null;index"            json:"class_id"`
	RoomNo    string `gorm:"type:varchar(20)"          json:"room_no,omitempty"`
	BaseModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
