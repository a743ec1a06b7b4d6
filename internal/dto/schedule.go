package dto

// ── 排课模块 DTO ──

// ScheduleRequest 创建排课请求；day_of_week 接受 Mon / Monday（不区分大小写）或 1-7
type ScheduleRequest struct {
	CourseID  uint   `json:"course_id"   binding:"required"`
	FacultyID uint   `json:"faculty_id"  binding:"required"`
	ClassID   uint   `json:"class_id"    binding:"required"`
	SectionID uint   `json:"section_id"  binding:"required"`
	DayOfWeek string `json:"day_of_week" binding:"required,weekday"`
	StartTime string `json:"start_time"  binding:"required,clock"`
	EndTime   string `json:"end_time"    binding:"required,clock"`
}

// UpdateScheduleRequest 更新排课请求；version 为空时以当前版本为准
type UpdateScheduleRequest struct {
	ScheduleRequest
	Version int `json:"version" binding:"omitempty,min=1"`
}

// ScheduleListRequest 排课列表查询参数
type ScheduleListRequest struct {
	ViewType     string `form:"view_type"     binding:"omitempty,oneof=student faculty"`
	DepartmentID uint   `form:"department_id"`
	ClassID      uint   `form:"class_id"`
	SectionID    uint   `form:"section_id"`
	FacultyID    uint   `form:"faculty_id"`
	Day          string `form:"day"           binding:"omitempty,weekday"`
	PaginationRequest
}

// ScheduleExportRequest 导出查询参数（不分页）
type ScheduleExportRequest struct {
	ViewType     string `form:"view_type"     binding:"omitempty,oneof=student faculty"`
	DepartmentID uint   `form:"department_id"`
	ClassID      uint   `form:"class_id"`
	SectionID    uint   `form:"section_id"`
	FacultyID    uint   `form:"faculty_id"`
	Day          string `form:"day"           binding:"omitempty,weekday"`
}

// ── 响应 ──

// ScheduleResponse 排课记录响应
type ScheduleResponse struct {
	ID        uint   `json:"id"`
	CourseID  uint   `json:"course_id"`
	FacultyID uint   `json:"faculty_id"`
	ClassID   uint   `json:"class_id"`
	SectionID uint   `json:"section_id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Version   int    `json:"version"`

	Course  *CourseResponse  `json:"course,omitempty"`
	Faculty *FacultyResponse `json:"faculty,omitempty"`
	Class   *ClassResponse   `json:"class,omitempty"`
	Section *SectionResponse `json:"section,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ConflictCheckResponse 冲突预检结果
type ConflictCheckResponse struct {
	Conflict    bool              `json:"conflict"`
	Reason      string            `json:"reason,omitempty"` // faculty | section | faculty+section
	Conflicting *ScheduleResponse `json:"conflicting,omitempty"`
}

// ── 导入 ──

// ImportRowError 导入失败的行
type ImportRowError struct {
	Row    int    `json:"row"` // Excel 行号（含表头，从 1 开始）
	Reason string `json:"reason"`
}

// ImportResult 批量导入结果
type ImportResult struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}
