package model

import "time"

// Invoice 学生账单表 — 对应 invoices
// Amount 以最小货币单位存储；开票时间即 CreatedAt
type Invoice struct {
	InvoiceID     uint       `gorm:"column:id;primaryKey"                   json:"id"`
	InvoiceNumber string     `gorm:"type:varchar(20);not null;unique"       json:"invoice_number"` // INV-YYYY-NNN
	StudentID     uint       `gorm:"not null;index"                         json:"student_id"`
	Amount        int64      `gorm:"not null"                               json:"amount"`
	DueDate       string     `gorm:"type:varchar(10);not null;index"        json:"due_date"` // YYYY-MM-DD
	Paid          bool       `gorm:"not null;default:false"                 json:"paid"`
	PaidAt        *time.Time `                                              json:"paid_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Invoice) TableName() string { return "invoices" }
