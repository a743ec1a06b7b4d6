package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Department    DepartmentRepository
	Class         ClassRepository
	Section       SectionRepository
	Faculty       FacultyRepository
	Course        CourseRepository
	Student       StudentRepository
	LeaveRequest  LeaveRequestRepository
	ClassSchedule ClassScheduleRepository
	Attendance    AttendanceRepository
	Invoice       InvoiceRepository
	Event         EventRepository
	Message       MessageRepository
	Analytics     AnalyticsRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Department:    NewDepartmentRepo(db),
		Class:         NewClassRepo(db),
		Section:       NewSectionRepo(db),
		Faculty:       NewFacultyRepo(db),
		Course:        NewCourseRepo(db),
		Student:       NewStudentRepo(db),
		LeaveRequest:  NewLeaveRequestRepo(db),
		ClassSchedule: NewClassScheduleRepo(db),
		Attendance:    NewAttendanceRepo(db),
		Invoice:       NewInvoiceRepo(db),
		Event:         NewEventRepo(db),
		Message:       NewMessageRepo(db),
		Analytics:     NewAnalyticsRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn；fn 返回错误时回滚
// 未绑定数据库连接（单元测试中的 mock 聚合）时直接在当前 Repository 上执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
