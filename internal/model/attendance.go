package model

// 考勤状态
const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceLate    = "Late"
)

// Attendance 学生课程考勤表 — 对应 attendance
// 同一学生同一课程同一天只有一条记录
type Attendance struct {
	AttendanceID uint   `gorm:"column:id;primaryKey" json:"id"`
	StudentID    uint   `gorm:"not null;uniqueIndex:uk_attendance_student_course_date,priority:1" json:"student_id"`
	CourseID     uint   `gorm:"not null;index;uniqueIndex:uk_attendance_student_course_date,priority:2" json:"course_id"`
	Date         string `gorm:"type:varchar(10);not null;index;uniqueIndex:uk_attendance_student_course_date,priority:3" json:"date"` // YYYY-MM-DD
	Status       string `gorm:"type:varchar(10);not null" json:"status"`
	BaseModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance" }
