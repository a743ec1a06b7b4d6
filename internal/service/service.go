package service

import (
	"time"

	"go.uber.org/zap"

	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	"edusync/backend/pkg/jwt"
	"edusync/backend/pkg/metrics"
)

// Deps 构建 Service 聚合所需的外部依赖
type Deps struct {
	Repo        *repository.Repository
	JWT         *jwt.Manager
	Locker      scheduling.Locker // nil 时使用进程内锁
	Blacklist   TokenBlacklist    // nil 时登出不吊销 Token
	LockTimeout time.Duration
	Location    *time.Location // “今天”与 ICS 导出使用的时区
	Logger      *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Catalog  CatalogService
	Schedule ScheduleService
	Filter   FilterService
	Export   ExportService
	Import   ImportService

	Department    DepartmentService
	Course        CourseService
	People        PeopleService
	Leave         LeaveService
	CatalogImport CatalogImportService

	Attendance AttendanceService
	Invoice    InvoiceService
	Event      EventService
	Message    MessageService
	Analytics  AnalyticsService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	locker := d.Locker
	if locker != nil {
		locker = scheduling.NewFallbackLocker(locker, scheduling.NewLocalLocker(), func(err error) {
			metrics.LockFallbacks.Inc()
			d.Logger.Warn("排课锁服务不可用，降级为进程内锁", zap.Error(err))
		})
	}
	schedule := NewScheduleService(d.Repo, locker, d.LockTimeout, d.Logger)
	people := NewPeopleService(d.Repo, d.Logger)
	courses := NewCourseService(d.Repo, d.Logger)
	return &Service{
		Auth:     NewAuthService(d.Repo, d.JWT, d.Blacklist, d.Logger),
		Catalog:  NewCatalogService(d.Repo, d.Logger),
		Schedule: schedule,
		Filter:   NewFilterService(d.Repo, d.Location, d.Logger),
		Export:   NewExportService(d.Repo, d.Location, d.Logger),
		Import:   NewImportService(schedule, d.Logger),

		Department:    NewDepartmentService(d.Repo, d.Logger),
		Course:        courses,
		People:        people,
		Leave:         NewLeaveService(d.Repo, d.Logger),
		CatalogImport: NewCatalogImportService(people, courses, d.Logger),

		Attendance: NewAttendanceService(d.Repo, d.Logger),
		Invoice:    NewInvoiceService(d.Repo, d.Location, d.Logger),
		Event:      NewEventService(d.Repo, d.Logger),
		Message:    NewMessageService(d.Repo, d.Logger),
		Analytics:  NewAnalyticsService(d.Repo, d.Location, d.Logger),
	}
}
