package model

// 请假状态
const (
	LeaveStatusPending  = "Pending"
	LeaveStatusApproved = "Approved"
	LeaveStatusRejected = "Rejected"
)

// LeaveRequest 教师请假申请表 — 对应 leave_requests
// 申请针对某一天的某门课（班级分组 + 课程），审批前为 Pending
type LeaveRequest struct {
	LeaveRequestID uint   `gorm:"column:id;primaryKey"                       json:"id"`
	FacultyID      uint   `gorm:"not null;index"                             json:"faculty_id"`
	DepartmentID   uint   `gorm:"not null;index"                             json:"department_id"`
	ClassID        uint   `gorm:"not null"                                   json:"class_id"`
	SectionID      uint   `gorm:"not null"                                   json:"section_id"`
	CourseID       uint   `gorm:"not null;index"                             json:"course_id"`
	LeaveDate      string `gorm:"type:varchar(10);not null;index"            json:"leave_date"` // YYYY-MM-DD，字典序即日期序
	Reason         string `gorm:"type:text;not null"                         json:"reason"`
	Status         string `gorm:"type:varchar(10);not null;default:'Pending'" json:"status"`
	BaseModel
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }
