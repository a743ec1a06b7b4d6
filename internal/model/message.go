package model

import "time"

// 消息收发方类型
const (
	PartyAdmin   = "admin"
	PartyStudent = "student"
	PartyFaculty = "faculty"
)

// Message 站内消息表 — 对应 messages
// 收发双方为 (类型, ID) 组合，admin 对应 users 表
type Message struct {
	MessageID    uint      `gorm:"column:id;primaryKey"                                      json:"id"`
	SenderType   string    `gorm:"type:varchar(10);not null;index:idx_messages_sender,priority:1"   json:"sender_type"`
	SenderID     uint      `gorm:"not null;index:idx_messages_sender,priority:2"              json:"sender_id"`
	ReceiverType string    `gorm:"type:varchar(10);not null;index:idx_messages_receiver,priority:1" json:"receiver_type"`
	ReceiverID   uint      `gorm:"not null;index:idx_messages_receiver,priority:2"            json:"receiver_id"`
	Subject      string    `gorm:"type:varchar(200);not null"                                json:"subject"`
	Body         string    `gorm:"type:text;not null"                                        json:"body"`
	SentAt       time.Time `gorm:"not null;autoCreateTime"                                   json:"sent_at"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
