package repository

import (
	"context"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Class, error)
	// ListAll departmentID 为 0 时返回全部班级
	ListAll(ctx context.Context, departmentID uint) ([]model.Class, error)
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) GetByID(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) ListAll(ctx context.Context, departmentID uint) ([]model.Class, error) {
	var classes []model.Class
	query := r.db.WithContext(ctx)
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	err := query.Order("name ASC").Find(&classes).Error
	return classes, err
}

// ── Section ──

// SectionRepository 班级分组数据访问接口
type SectionRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Section, error)
	// ListAll classID 为 0 时返回全部分组
	ListAll(ctx context.Context, classID uint) ([]model.Section, error)
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) GetByID(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListAll(ctx context.Context, classID uint) ([]model.Section, error) {
	var sections []model.Section
	query := r.db.WithContext(ctx)
	if classID != 0 {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("class_id ASC, name ASC").Find(&sections).Error
	return sections, err
}
