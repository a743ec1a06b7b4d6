package model

// 活动面向的人群
const (
	AudienceAll        = "all"
	AudienceStudent    = "student"
	AudienceFaculty    = "faculty"
	AudienceClass      = "class"
	AudienceDepartment = "department"
)

// Event 校园活动表 — 对应 events
// AudienceID 仅在 class / department 时指向具体班级或院系，其余为 0
type Event struct {
	EventID      uint   `gorm:"column:id;primaryKey"                        json:"id"`
	Title        string `gorm:"type:varchar(200);not null"                  json:"title"`
	Description  string `gorm:"type:text;not null"                          json:"description"`
	EventDate    string `gorm:"type:varchar(10);not null;index"             json:"event_date"` // YYYY-MM-DD
	AudienceType string `gorm:"type:varchar(20);not null;default:'all'"     json:"audience_type"`
	AudienceID   uint   `gorm:"not null;default:0"                          json:"audience_id"`
	BaseModel
}

// TableName 指定表名
func (Event) TableName() string { return "events" }
