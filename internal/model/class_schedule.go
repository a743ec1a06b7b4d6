package model

import "edusync/backend/internal/scheduling"

// ClassSchedule 排课记录表 — 对应 class_schedules
type ClassSchedule struct {
	ClassScheduleID uint               `gorm:"column:id;primaryKey"  json:"id"`
	CourseID        uint               `gorm:"not null;index"        json:"course_id"`
	FacultyID       uint               `gorm:"not null;index"        json:"faculty_id"`
	ClassID         uint               `gorm:"not null;index"        json:"class_id"`
	SectionID       uint               `gorm:"not null;index"        json:"section_id"`
	DayOfWeek       scheduling.Weekday `gorm:"type:smallint;not null" json:"day_of_week"` // 1-7，周一为 1
	StartTime       string             `gorm:"type:time;not null"    json:"start_time"`  // HH:MM:SS
	EndTime         string             `gorm:"type:time;not null"    json:"end_time"`
	VersionedModel

	// 关联
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (ClassSchedule) TableName() string { return "class_schedules" }

// Entry 转换为冲突检测使用的结构；时间格式非法时返回错误
func (s *ClassSchedule) Entry() (scheduling.Entry, error) {
	start, err := scheduling.ParseClock(s.StartTime)
	if err != nil {
		return scheduling.Entry{}, err
	}
	end, err := scheduling.ParseClock(s.EndTime)
	if err != nil {
		return scheduling.Entry{}, err
	}
	return scheduling.Entry{
		ID:        s.ClassScheduleID,
		CourseID:  s.CourseID,
		FacultyID: s.FacultyID,
		ClassID:   s.ClassID,
		SectionID: s.SectionID,
		Day:       s.DayOfWeek,
		Start:     start,
		End:       end,
	}, nil
}
