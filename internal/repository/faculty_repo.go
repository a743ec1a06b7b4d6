package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// PersonFilter 学生 / 教师列表筛选条件，零值字段不参与过滤
// ClassID / SectionID 仅对学生生效；Search 对姓名与邮箱做不区分大小写的包含匹配
type PersonFilter struct {
	DepartmentID uint
	ClassID      uint
	SectionID    uint
	Search       string
}

// CourseFilter 课程列表筛选条件，零值字段不参与过滤
// Search 对课程名与课程代码做不区分大小写的包含匹配
type CourseFilter struct {
	DepartmentID uint
	CreditHours  int
	Search       string
}

// likePattern 转为小写的 LIKE 包含匹配模式
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// FacultyRepository 教师数据访问接口
type FacultyRepository interface {
	Create(ctx context.Context, f *model.Faculty) error
	GetByID(ctx context.Context, id uint) (*model.Faculty, error)
	GetByEmail(ctx context.Context, email string) (*model.Faculty, error)
	// ListAll departmentID 为 0 时返回全部教师
	ListAll(ctx context.Context, departmentID uint) ([]model.Faculty, error)
	List(ctx context.Context, f PersonFilter) ([]model.Faculty, error)
	Update(ctx context.Context, f *model.Faculty) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type facultyRepo struct {
	db *gorm.DB
}

// NewFacultyRepo 创建 FacultyRepository 实例
func NewFacultyRepo(db *gorm.DB) FacultyRepository {
	return &facultyRepo{db: db}
}

func (r *facultyRepo) Create(ctx context.Context, f *model.Faculty) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *facultyRepo) GetByID(ctx context.Context, id uint) (*model.Faculty, error) {
	var f model.Faculty
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facultyRepo) GetByEmail(ctx context.Context, email string) (*model.Faculty, error) {
	var f model.Faculty
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facultyRepo) ListAll(ctx context.Context, departmentID uint) ([]model.Faculty, error) {
	return r.List(ctx, PersonFilter{DepartmentID: departmentID})
}

func (r *facultyRepo) List(ctx context.Context, f PersonFilter) ([]model.Faculty, error) {
	var list []model.Faculty
	query := r.db.WithContext(ctx)
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", p, p)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *facultyRepo) Update(ctx context.Context, f *model.Faculty) error {
	return r.db.WithContext(ctx).
		Model(&model.Faculty{}).
		Where("id = ?", f.FacultyID).
		Updates(map[string]interface{}{
			"name":          f.Name,
			"email":         f.Email,
			"password_hash": f.PasswordHash,
			"department_id": f.DepartmentID,
			"updated_by":    f.UpdatedBy,
		}).Error
}

func (r *facultyRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Faculty{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── Course ──

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id uint) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	ListAll(ctx context.Context, departmentID uint) ([]model.Course, error)
	// List 按课程代码升序
	List(ctx context.Context, f CourseFilter) ([]model.Course, error)
	Update(ctx context.Context, c *model.Course) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, c *model.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Where("course_code = ?", code).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) ListAll(ctx context.Context, departmentID uint) ([]model.Course, error) {
	return r.List(ctx, CourseFilter{DepartmentID: departmentID})
}

func (r *courseRepo) List(ctx context.Context, f CourseFilter) ([]model.Course, error) {
	var list []model.Course
	query := r.db.WithContext(ctx)
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.CreditHours != 0 {
		query = query.Where("credit_hours = ?", f.CreditHours)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(course_code) LIKE ?)", p, p)
	}
	err := query.Order("course_code ASC").Find(&list).Error
	return list, err
}

func (r *courseRepo) Update(ctx context.Context, c *model.Course) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", c.CourseID).
		Updates(map[string]interface{}{
			"name":          c.Name,
			"course_code":   c.CourseCode,
			"department_id": c.DepartmentID,
			"credit_hours":  c.CreditHours,
			"updated_by":    c.UpdatedBy,
		}).Error
}

func (r *courseRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
