package repository

import (
	"context"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// AttendanceFilter 考勤筛选条件，零值字段不参与过滤
// DepartmentID / ClassID / SectionID 按学生当前归属过滤
type AttendanceFilter struct {
	StudentID    uint
	CourseID     uint
	DepartmentID uint
	ClassID      uint
	SectionID    uint
	Date         string
	DateFrom     string
	DateTo       string
	Status       string
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) error
	GetByID(ctx context.Context, id uint) (*model.Attendance, error)
	// Find 按学生、课程、日期精确查找
	Find(ctx context.Context, studentID, courseID uint, date string) (*model.Attendance, error)
	// List 按日期降序、学生 ID 升序
	List(ctx context.Context, f AttendanceFilter) ([]model.Attendance, error)
	Count(ctx context.Context, f AttendanceFilter) (int64, error)
	// UpdateStatus 记录不存在时返回 gorm.ErrRecordNotFound
	UpdateStatus(ctx context.Context, id uint, status string, callerID uint) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id uint) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) Find(ctx context.Context, studentID, courseID uint, date string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND date = ?", studentID, courseID, date).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.applyFilter(r.db.WithContext(ctx).Select("attendance.*"), f).
		Order("attendance.date DESC, attendance.student_id ASC, attendance.id ASC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) Count(ctx context.Context, f AttendanceFilter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Attendance{}), f).Count(&n).Error
	return n, err
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id uint, status string, callerID uint) error {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
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

func (r *attendanceRepo) applyFilter(db *gorm.DB, f AttendanceFilter) *gorm.DB {
	if f.DepartmentID != 0 || f.ClassID != 0 || f.SectionID != 0 {
		db = db.Joins("JOIN students ON students.id = attendance.student_id")
		if f.DepartmentID != 0 {
			db = db.Where("students.department_id = ?", f.DepartmentID)
		}
		if f.ClassID != 0 {
			db = db.Where("students.class_id = ?", f.ClassID)
		}
		if f.SectionID != 0 {
			db = db.Where("students.section_id = ?", f.SectionID)
		}
	}
	if f.StudentID != 0 {
		db = db.Where("attendance.student_id = ?", f.StudentID)
	}
	if f.CourseID != 0 {
		db = db.Where("attendance.course_id = ?", f.CourseID)
	}
	if f.Date != "" {
		db = db.Where("attendance.date = ?", f.Date)
	}
	if f.DateFrom != "" {
		db = db.Where("attendance.date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("attendance.date <= ?", f.DateTo)
	}
	if f.Status != "" {
		db = db.Where("attendance.status = ?", f.Status)
	}
	return db
}
