package dto

// ── 考勤 ──

// AttendanceListRequest 考勤列表查询参数；院系 / 班级 / 分组按学生归属过滤
type AttendanceListRequest struct {
	StudentID    uint   `form:"student_id"`
	CourseID     uint   `form:"course_id"`
	DepartmentID uint   `form:"department_id"`
	ClassID      uint   `form:"class_id"`
	SectionID    uint   `form:"section_id"`
	Date         string `form:"date"      binding:"omitempty,datetime=2006-01-02"`
	DateFrom     string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	Status       string `form:"status"    binding:"omitempty,oneof=Present Absent Late"`
}

// AttendanceRequest 登记考勤
type AttendanceRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	CourseID  uint   `json:"course_id"  binding:"required"`
	Date      string `json:"date"       binding:"required,datetime=2006-01-02"`
	Status    string `json:"status"     binding:"required,oneof=Present Absent Late"`
}

// AttendanceStatusRequest 修改考勤状态
type AttendanceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Present Absent Late"`
}

// AttendanceResponse 考勤记录
type AttendanceResponse struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	CourseID    uint   `json:"course_id"`
	CourseCode  string `json:"course_code"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// ── 账单 ──

// InvoiceListRequest 账单列表查询参数；due_from / due_to 按到期日闭区间
type InvoiceListRequest struct {
	StudentID uint   `form:"student_id"`
	Status    string `form:"status"   binding:"omitempty,oneof=paid unpaid"`
	DueFrom   string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo     string `form:"due_to"   binding:"omitempty,datetime=2006-01-02"`
}

// InvoiceRequest 开具账单；编号由系统生成
type InvoiceRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Amount    int64  `json:"amount"     binding:"required,min=1"`
	DueDate   string `json:"due_date"   binding:"required,datetime=2006-01-02"`
	Paid      bool   `json:"paid"`
}

// UpdateInvoiceRequest 修改账单；未提供的字段保持不变
type UpdateInvoiceRequest struct {
	StudentID *uint   `json:"student_id" binding:"omitempty,min=1"`
	Amount    *int64  `json:"amount"     binding:"omitempty,min=1"`
	DueDate   *string `json:"due_date"   binding:"omitempty,datetime=2006-01-02"`
	Paid      *bool   `json:"paid"`
}

// InvoiceResponse 账单
type InvoiceResponse struct {
	ID            uint   `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	StudentID     uint   `json:"student_id"`
	StudentName   string `json:"student_name"`
	Amount        int64  `json:"amount"`
	DueDate       string `json:"due_date"`
	Paid          bool   `json:"paid"`
	PaidAt        string `json:"paid_at,omitempty"`
	GeneratedAt   string `json:"generated_at"`
}

// ── 活动 ──

// EventListRequest 活动列表查询参数；title 为不区分大小写的包含匹配
type EventListRequest struct {
	Title        string `form:"title"`
	AudienceType string `form:"audience_type" binding:"omitempty,oneof=all student faculty class department"`
	DateFrom     string `form:"date_from"     binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"       binding:"omitempty,datetime=2006-01-02"`
}

// EventRequest 创建 / 更新活动；audience_type 缺省为 all
type EventRequest struct {
	Title        string `json:"title"         binding:"required,max=200"`
	Description  string `json:"description"   binding:"required"`
	EventDate    string `json:"event_date"    binding:"required,datetime=2006-01-02"`
	AudienceType string `json:"audience_type" binding:"omitempty,oneof=all student faculty class department"`
	AudienceID   uint   `json:"audience_id"   binding:"required_if=AudienceType class,required_if=AudienceType department"`
}

// EventResponse 活动
type EventResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	EventDate    string `json:"event_date"`
	AudienceType string `json:"audience_type"`
	AudienceID   uint   `json:"audience_id"`
	CreatedBy    uint   `json:"created_by"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ── 站内消息 ──

// MessageListRequest 消息列表查询参数；filter 缺省为 all
type MessageListRequest struct {
	Filter string `form:"filter" binding:"omitempty,oneof=all inbox sent"`
}

// MessageRequest 发送消息；发件人为当前登录管理员
type MessageRequest struct {
	ReceiverType string `json:"receiver_type" binding:"required,oneof=admin student faculty"`
	ReceiverID   uint   `json:"receiver_id"   binding:"required"`
	Subject      string `json:"subject"       binding:"required,max=200"`
	Body         string `json:"body"          binding:"required"`
}

// MessageResponse 消息，附收发双方姓名
type MessageResponse struct {
	ID           uint   `json:"id"`
	SenderType   string `json:"sender_type"`
	SenderID     uint   `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	ReceiverType string `json:"receiver_type"`
	ReceiverID   uint   `json:"receiver_id"`
	ReceiverName string `json:"receiver_name"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	SentAt       string `json:"sent_at"`
}

// ── 统计分析 ──

// 统计类型，缺省返回全部
const (
	AnalyticsDashboard              = "dashboard"
	AnalyticsDepartmentDistribution = "department-distribution"
	AnalyticsRevenue                = "revenue"
	AnalyticsAttendance             = "attendance"
)

// AnalyticsRequest 统计查询参数；year 仅影响收入统计，缺省为当年
type AnalyticsRequest struct {
	Type string `form:"type" binding:"omitempty,oneof=dashboard department-distribution revenue attendance"`
	Year int    `form:"year" binding:"omitempty,min=2000,max=2100"`
}

// ChartSeries 单序列图表数据
type ChartSeries struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// StatusBreakdown 按标签分组的出勤 / 缺勤 / 迟到人次
type StatusBreakdown struct {
	Labels  []string `json:"labels"`
	Present []int64  `json:"present"`
	Absent  []int64  `json:"absent"`
	Late    []int64  `json:"late"`
}

// AttendanceAnalytics 考勤统计：按月份与按院系
type AttendanceAnalytics struct {
	Overall        StatusBreakdown `json:"overall"`
	DepartmentWise StatusBreakdown `json:"department_wise"`
}

// RevenueAnalytics 全年每月开票金额与已收金额
type RevenueAnalytics struct {
	Year      int      `json:"year"`
	Labels    []string `json:"labels"`
	Billed    []int64  `json:"billed"`
	Collected []int64  `json:"collected"`
}

// DashboardStats 仪表盘汇总数字
type DashboardStats struct {
	Students        int64 `json:"students"`
	Faculty         int64 `json:"faculty"`
	Courses         int64 `json:"courses"`
	UpcomingEvents  int64 `json:"upcoming_events"`
	PendingLeaves   int64 `json:"pending_leaves"`
	UnpaidInvoices  int64 `json:"unpaid_invoices"`
	ScheduleEntries int64 `json:"schedule_entries"`
}

// AnalyticsResponse 全部统计
type AnalyticsResponse struct {
	Dashboard              DashboardStats      `json:"dashboard"`
	DepartmentDistribution ChartSeries         `json:"department_distribution"`
	Revenue                RevenueAnalytics    `json:"revenue"`
	Attendance             AttendanceAnalytics `json:"attendance"`
}
