package repository

import (
	"context"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// LeaveFilter 请假申请筛选条件，零值字段不参与过滤
// DateFrom / DateTo 为 YYYY-MM-DD 闭区间
type LeaveFilter struct {
	Status       string
	DepartmentID uint
	FacultyID    uint
	CourseID     uint
	DateFrom     string
	DateTo       string
}

// LeaveRequestRepository 请假申请数据访问接口
type LeaveRequestRepository interface {
	Create(ctx context.Context, l *model.LeaveRequest) error
	GetByID(ctx context.Context, id uint) (*model.LeaveRequest, error)
	// List 按状态、请假日期升序
	List(ctx context.Context, f LeaveFilter) ([]model.LeaveRequest, error)
	// Count 与 List 使用相同条件
	Count(ctx context.Context, f LeaveFilter) (int64, error)
	// UpdateStatus 仅当当前状态为 from 时更新，否则返回 gorm.ErrRecordNotFound
	UpdateStatus(ctx context.Context, id uint, from, to string, callerID uint) error
}

type leaveRequestRepo struct {
	db *gorm.DB
}

// NewLeaveRequestRepo 创建 LeaveRequestRepository 实例
func NewLeaveRequestRepo(db *gorm.DB) LeaveRequestRepository {
	return &leaveRequestRepo{db: db}
}

func (r *leaveRequestRepo) Create(ctx context.Context, l *model.LeaveRequest) error {
	if l.Status == "" {
		l.Status = model.LeaveStatusPending
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *leaveRequestRepo) GetByID(ctx context.Context, id uint) (*model.LeaveRequest, error) {
	var l model.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leaveRequestRepo) List(ctx context.Context, f LeaveFilter) ([]model.LeaveRequest, error) {
	var list []model.LeaveRequest
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("status ASC, leave_date ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *leaveRequestRepo) Count(ctx context.Context, f LeaveFilter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.LeaveRequest{}), f).Count(&n).Error
	return n, err
}

func (r *leaveRequestRepo) UpdateStatus(ctx context.Context, id uint, from, to string, callerID uint) error {
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": callerID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *leaveRequestRepo) applyFilter(db *gorm.DB, f LeaveFilter) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.DepartmentID != 0 {
		db = db.Where("department_id = ?", f.DepartmentID)
	}
	if f.FacultyID != 0 {
		db = db.Where("faculty_id = ?", f.FacultyID)
	}
	if f.CourseID != 0 {
		db = db.Where("course_id = ?", f.CourseID)
	}
	if f.DateFrom != "" {
		db = db.Where("leave_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("leave_date <= ?", f.DateTo)
	}
	return db
}
