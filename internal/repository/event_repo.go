package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// EventFilter 活动筛选条件，零值字段不参与过滤
type EventFilter struct {
	Title        string
	AudienceType string
	DateFrom     string
	DateTo       string
}

// EventRepository 校园活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint) (*model.Event, error)
	// List 按活动日期升序
	List(ctx context.Context, f EventFilter) ([]model.Event, error)
	Count(ctx context.Context, f EventFilter) (int64, error)
	Update(ctx context.Context, e *model.Event) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id uint) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	var list []model.Event
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("event_date ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *eventRepo) Count(ctx context.Context, f EventFilter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Event{}), f).Count(&n).Error
	return n, err
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", e.EventID).
		Updates(map[string]interface{}{
			"title":         e.Title,
			"description":   e.Description,
			"event_date":    e.EventDate,
			"audience_type": e.AudienceType,
			"audience_id":   e.AudienceID,
			"updated_by":    e.UpdatedBy,
		}).Error
}

func (r *eventRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepo) applyFilter(db *gorm.DB, f EventFilter) *gorm.DB {
	if strings.TrimSpace(f.Title) != "" {
		db = db.Where("LOWER(title) LIKE ?", likePattern(f.Title))
	}
	if f.AudienceType != "" {
		db = db.Where("audience_type = ?", f.AudienceType)
	}
	if f.DateFrom != "" {
		db = db.Where("event_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("event_date <= ?", f.DateTo)
	}
	return db
}
