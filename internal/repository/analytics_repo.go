package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// Totals 各业务表记录数
type Totals struct {
	Students        int64
	Faculty         int64
	Courses         int64
	UpcomingEvents  int64
	PendingLeaves   int64
	UnpaidInvoices  int64
	ScheduleEntries int64
}

// LabelCount 按标签分组的计数
type LabelCount struct {
	Label string
	Count int64
}

// StatusCount 按标签与状态分组的计数
type StatusCount struct {
	Label  string
	Status string
	Count  int64
}

// IssuedAmount 单张账单的开票时间、金额与是否已付
type IssuedAmount struct {
	CreatedAt time.Time
	Amount    int64
	Paid      bool
}

// AnalyticsRepository 统计查询接口，只读
type AnalyticsRepository interface {
	// Totals today 为 YYYY-MM-DD，活动日期不早于 today 计为即将举行
	Totals(ctx context.Context, today string) (*Totals, error)
	// StudentsPerDepartment 每个院系（含无学生的院系）的学生数，按院系 ID 升序，标签为院系代码
	StudentsPerDepartment(ctx context.Context) ([]LabelCount, error)
	// AttendanceByMonth 标签为 YYYY-MM，按月份升序
	AttendanceByMonth(ctx context.Context) ([]StatusCount, error)
	// AttendanceByDepartment 按学生所属院系分组，标签为院系代码，按院系 ID 升序
	AttendanceByDepartment(ctx context.Context) ([]StatusCount, error)
	// InvoicesIssued 开票时间在 [from, to) 内的账单
	InvoicesIssued(ctx context.Context, from, to time.Time) ([]IssuedAmount, error)
}

type analyticsRepo struct {
	db *gorm.DB
}

// NewAnalyticsRepo 创建 AnalyticsRepository 实例
func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Totals(ctx context.Context, today string) (*Totals, error) {
	db := r.db.WithContext(ctx)
	t := &Totals{}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&t.Students, db.Model(&model.Student{})},
		{&t.Faculty, db.Model(&model.Faculty{})},
		{&t.Courses, db.Model(&model.Course{})},
		{&t.UpcomingEvents, db.Model(&model.Event{}).Where("event_date >= ?", today)},
		{&t.PendingLeaves, db.Model(&model.LeaveRequest{}).Where("status = ?", model.LeaveStatusPending)},
		{&t.UnpaidInvoices, db.Model(&model.Invoice{}).Where("paid = ?", false)},
		{&t.ScheduleEntries, db.Model(&model.ClassSchedule{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *analyticsRepo) StudentsPerDepartment(ctx context.Context) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Select("departments.code AS label, COUNT(students.id) AS count").
		Joins("LEFT JOIN students ON students.department_id = departments.id").
		Group("departments.id, departments.code").
		Order("departments.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) AttendanceByMonth(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("SUBSTR(attendance.date, 1, 7) AS label, attendance.status AS status, COUNT(*) AS count").
		Group("SUBSTR(attendance.date, 1, 7), attendance.status").
		Order("label ASC, status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) AttendanceByDepartment(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("departments.code AS label, attendance.status AS status, COUNT(*) AS count").
		Joins("JOIN students ON students.id = attendance.student_id").
		Joins("JOIN departments ON departments.id = students.department_id").
		Group("departments.id, departments.code, attendance.status").
		Order("departments.id ASC, attendance.status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) InvoicesIssued(ctx context.Context, from, to time.Time) ([]IssuedAmount, error) {
	var rows []IssuedAmount
	err := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Select("created_at, amount, paid").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}
