package repository

import (
	"context"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
	"edusync/backend/internal/scheduling"
	pkgerrors "edusync/backend/pkg/errors"
)

// 视图类型
const (
	ViewStudent = "student"
	ViewFaculty = "faculty"
)

// ScheduleFilter 排课列表筛选条件，零值字段不参与过滤
//
//   - student 视图：按班级 / 分组过滤；未指定班级时按班级所属院系过滤
//   - faculty 视图：按教师过滤；院系按教师所属院系过滤
//   - 未指定视图：所有非零条件同时生效，院系按班级所属院系过滤
//   - CourseID 在所有视图下生效
type ScheduleFilter struct {
	ViewType     string
	DepartmentID uint
	ClassID      uint
	SectionID    uint
	FacultyID    uint
	CourseID     uint
	Day          scheduling.Weekday
}

// ClassScheduleRepository 排课数据访问接口
type ClassScheduleRepository interface {
	Create(ctx context.Context, s *model.ClassSchedule) error
	GetByID(ctx context.Context, id uint) (*model.ClassSchedule, error)
	// List 分页查询（含课程/教师/班级/分组关联），按星期、开始时间排序
	List(ctx context.Context, f ScheduleFilter, offset, limit int) ([]model.ClassSchedule, int64, error)
	// ListAll 不分页，供导出与巡检使用
	ListAll(ctx context.Context, f ScheduleFilter) ([]model.ClassSchedule, error)
	// Count 与 List 使用相同条件，供删除基础数据前检查引用
	Count(ctx context.Context, f ScheduleFilter) (int64, error)
	// ListForSlot 同一天内与该教师或该分组相关的全部排课（冲突检测候选集）
	ListForSlot(ctx context.Context, day scheduling.Weekday, facultyID, sectionID uint) ([]model.ClassSchedule, error)
	// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, s *model.ClassSchedule) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type classScheduleRepo struct {
	db *gorm.DB
}

// NewClassScheduleRepo 创建 ClassScheduleRepository 实例
func NewClassScheduleRepo(db *gorm.DB) ClassScheduleRepository {
	return &classScheduleRepo{db: db}
}

func (r *classScheduleRepo) Create(ctx context.Context, s *model.ClassSchedule) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *classScheduleRepo) GetByID(ctx context.Context, id uint) (*model.ClassSchedule, error) {
	var s model.ClassSchedule
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("class_schedules.id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *classScheduleRepo) List(ctx context.Context, f ScheduleFilter, offset, limit int) ([]model.ClassSchedule, int64, error) {
	var list []model.ClassSchedule
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.ClassSchedule{}), f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.withAssociations(query).
		Order("class_schedules.day_of_week ASC, class_schedules.start_time ASC, class_schedules.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *classScheduleRepo) ListAll(ctx context.Context, f ScheduleFilter) ([]model.ClassSchedule, error) {
	var list []model.ClassSchedule
	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.ClassSchedule{}), f)
	err := r.withAssociations(query).
		Order("class_schedules.day_of_week ASC, class_schedules.start_time ASC, class_schedules.id ASC").
		Find(&list).Error
	return list, err
}

func (r *classScheduleRepo) Count(ctx context.Context, f ScheduleFilter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.ClassSchedule{}), f).Count(&n).Error
	return n, err
}

func (r *classScheduleRepo) ListForSlot(ctx context.Context, day scheduling.Weekday, facultyID, sectionID uint) ([]model.ClassSchedule, error) {
	var list []model.ClassSchedule
	err := r.db.WithContext(ctx).
		Where("day_of_week = ?", day).
		Where("faculty_id = ? OR section_id = ?", facultyID, sectionID).
		Order("start_time ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *classScheduleRepo) Update(ctx context.Context, s *model.ClassSchedule) error {
	oldVersion := s.Version
	result := r.db.WithContext(ctx).
		Model(&model.ClassSchedule{}).
		Where("id = ? AND version = ?", s.ClassScheduleID, oldVersion).
		Updates(map[string]interface{}{
			"course_id":   s.CourseID,
			"faculty_id":  s.FacultyID,
			"class_id":    s.ClassID,
			"section_id":  s.SectionID,
			"day_of_week": s.DayOfWeek,
			"start_time":  s.StartTime,
			"end_time":    s.EndTime,
			"updated_by":  s.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version = oldVersion + 1
	return nil
}

func (r *classScheduleRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ClassSchedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── 查询辅助 ──

func (r *classScheduleRepo) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Course").
		Preload("Faculty").
		Preload("Class").
		Preload("Section")
}

func (r *classScheduleRepo) applyFilter(db *gorm.DB, f ScheduleFilter) *gorm.DB {
	if f.Day != 0 {
		db = db.Where("class_schedules.day_of_week = ?", f.Day)
	}
	if f.CourseID != 0 {
		db = db.Where("class_schedules.course_id = ?", f.CourseID)
	}

	switch f.ViewType {
	case ViewStudent:
		if f.DepartmentID != 0 && f.ClassID == 0 {
			db = db.Where("class_schedules.class_id IN (?)",
				r.db.Model(&model.Class{}).Select("id").Where("department_id = ?", f.DepartmentID))
		}
		if f.ClassID != 0 {
			db = db.Where("class_schedules.class_id = ?", f.ClassID)
		}
		if f.SectionID != 0 {
			db = db.Where("class_schedules.section_id = ?", f.SectionID)
		}
	case ViewFaculty:
		if f.FacultyID != 0 {
			db = db.Where("class_schedules.faculty_id = ?", f.FacultyID)
		}
		if f.DepartmentID != 0 {
			db = db.Where("class_schedules.faculty_id IN (?)",
				r.db.Model(&model.Faculty{}).Select("id").Where("department_id = ?", f.DepartmentID))
		}
	default:
		if f.DepartmentID != 0 {
			db = db.Where("class_schedules.class_id IN (?)",
				r.db.Model(&model.Class{}).Select("id").Where("department_id = ?", f.DepartmentID))
		}
		if f.ClassID != 0 {
			db = db.Where("class_schedules.class_id = ?", f.ClassID)
		}
		if f.SectionID != 0 {
			db = db.Where("class_schedules.section_id = ?", f.SectionID)
		}
		if f.FacultyID != 0 {
			db = db.Where("class_schedules.faculty_id = ?", f.FacultyID)
		}
	}
	return db
}
