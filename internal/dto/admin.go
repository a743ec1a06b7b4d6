package dto

// ── 院系维护 ──

// DepartmentRequest 创建 / 更新院系
type DepartmentRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Code string `json:"code" binding:"required,max=20"`
}

// ── 课程维护 ──

// CourseListRequest 课程列表查询参数，零值不过滤
type CourseListRequest struct {
	Search       string `form:"search"`
	DepartmentID uint   `form:"department_id"`
	CreditHours  int    `form:"credit_hours" binding:"omitempty,min=1,max=10"`
}

// CourseRequest 创建 / 更新课程
type CourseRequest struct {
	Name         string `json:"name"          binding:"required,max=150"`
	CourseCode   string `json:"course_code"   binding:"required,max=20"`
	DepartmentID uint   `json:"department_id" binding:"required"`
	CreditHours  int    `json:"credit_hours"  binding:"required,min=1,max=10"`
}

// ── 人员维护（学生 / 教师）──

// 人员角色
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// PersonListRequest 人员列表查询参数；class_id / section_id 仅对学生生效
type PersonListRequest struct {
	Role         string `form:"role"          binding:"required,oneof=student faculty"`
	DepartmentID uint   `form:"department_id"`
	ClassID      uint   `form:"class_id"`
	SectionID    uint   `form:"section_id"`
	Search       string `form:"search"`
}

// PersonRequest 创建人员；学生必须指定班级与分组
type PersonRequest struct {
	Role         string `json:"role"          binding:"required,oneof=student faculty"`
	Name         string `json:"name"          binding:"required,max=100"`
	Email        string `json:"email"         binding:"required,email,max=255"`
	Password     string `json:"password"      binding:"required,min=8,max=72"`
	DepartmentID uint   `json:"department_id" binding:"required"`
	ClassID      uint   `json:"class_id"      binding:"required_if=Role student"`
	SectionID    uint   `json:"section_id"    binding:"required_if=Role student"`
}

// UpdatePersonRequest 更新人员；password 为空时保留原密码
type UpdatePersonRequest struct {
	Name         string `json:"name"          binding:"required,max=100"`
	Email        string `json:"email"         binding:"required,email,max=255"`
	Password     string `json:"password"      binding:"omitempty,min=8,max=72"`
	DepartmentID uint   `json:"department_id" binding:"required"`
	ClassID      uint   `json:"class_id"`
	SectionID    uint   `json:"section_id"`
}

// PersonResponse 人员信息
type PersonResponse struct {
	ID           uint   `json:"id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	DepartmentID uint   `json:"department_id"`
	ClassID      uint   `json:"class_id,omitempty"`
	SectionID    uint   `json:"section_id,omitempty"`
}

// ── 请假审批 ──

// LeaveListRequest 请假列表查询参数
type LeaveListRequest struct {
	Status       string `form:"status"        binding:"omitempty,oneof=Pending Approved Rejected"`
	DepartmentID uint   `form:"department_id"`
	FacultyID    uint   `form:"faculty_id"`
	DateFrom     string `form:"date_from"     binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"       binding:"omitempty,datetime=2006-01-02"`
}

// LeaveRequest 提交请假；院系取教师所属院系
type LeaveRequest struct {
	FacultyID uint   `json:"faculty_id" binding:"required"`
	ClassID   uint   `json:"class_id"   binding:"required"`
	SectionID uint   `json:"section_id" binding:"required"`
	CourseID  uint   `json:"course_id"  binding:"required"`
	LeaveDate string `json:"leave_date" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"     binding:"required,max=1000"`
}

// LeaveDecisionRequest 审批请假
type LeaveDecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected"`
}

// LeaveResponse 请假申请
type LeaveResponse struct {
	ID           uint   `json:"id"`
	FacultyID    uint   `json:"faculty_id"`
	DepartmentID uint   `json:"department_id"`
	ClassID      uint   `json:"class_id"`
	SectionID    uint   `json:"section_id"`
	CourseID     uint   `json:"course_id"`
	LeaveDate    string `json:"leave_date"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
