package dto

// ── 基础数据（院系 / 班级 / 分组 / 教师 / 课程）──

// CatalogListRequest 基础数据列表查询参数，零值不过滤
type CatalogListRequest struct {
	DepartmentID uint `form:"department_id"`
	ClassID      uint `form:"class_id"`
}

// DepartmentResponse 院系
type DepartmentResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ClassResponse 班级
type ClassResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	DepartmentID uint   `json:"department_id"`
}

// SectionResponse 班级分组
type SectionResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	ClassID uint   `json:"class_id"`
	RoomNo  string `json:"room_no,omitempty"`
}

// FacultyResponse 教师
type FacultyResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	DepartmentID uint   `json:"department_id"`
}

// CourseResponse 课程
type CourseResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CourseCode   string `json:"course_code"`
	DepartmentID uint   `json:"department_id"`
	CreditHours  int    `json:"credit_hours"`
}
