package repository

import (
	"context"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// 消息列表范围
const (
	MessageBoxAll   = "all"
	MessageBoxInbox = "inbox"
	MessageBoxSent  = "sent"
)

// MessageFilter 以 (PartyType, PartyID) 为视角筛选消息
type MessageFilter struct {
	PartyType string
	PartyID   uint
	Box       string // inbox | sent | all（空值同 all）
}

// MessageRepository 站内消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id uint) (*model.Message, error)
	// List 按发送时间降序
	List(ctx context.Context, f MessageFilter) ([]model.Message, error)
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var m model.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) List(ctx context.Context, f MessageFilter) ([]model.Message, error) {
	var list []model.Message
	query := r.db.WithContext(ctx)
	switch f.Box {
	case MessageBoxInbox:
		query = query.Where("receiver_type = ? AND receiver_id = ?", f.PartyType, f.PartyID)
	case MessageBoxSent:
		query = query.Where("sender_type = ? AND sender_id = ?", f.PartyType, f.PartyID)
	default:
		query = query.Where("(sender_type = ? AND sender_id = ?) OR (receiver_type = ? AND receiver_id = ?)",
			f.PartyType, f.PartyID, f.PartyType, f.PartyID)
	}
	err := query.Order("sent_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *messageRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
