package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	// List 按姓名升序
	List(ctx context.Context, f PersonFilter) ([]model.Student, error)
	Update(ctx context.Context, s *model.Student) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, s *model.Student) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) List(ctx context.Context, f PersonFilter) ([]model.Student, error) {
	var list []model.Student
	query := r.db.WithContext(ctx)
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.ClassID != 0 {
		query = query.Where("class_id = ?", f.ClassID)
	}
	if f.SectionID != 0 {
		query = query.Where("section_id = ?", f.SectionID)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", p, p)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *studentRepo) Update(ctx context.Context, s *model.Student) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("id = ?", s.StudentID).
		Updates(map[string]interface{}{
			"name":          s.Name,
			"email":         s.Email,
			"password_hash": s.PasswordHash,
			"department_id": s.DepartmentID,
			"class_id":      s.ClassID,
			"section_id":    s.SectionID,
			"updated_by":    s.UpdatedBy,
		}).Error
}

func (r *studentRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
