package handler

import (
	"edusync/backend/config"
	"edusync/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Schedule   *ScheduleHandler
	Filter     *FilterHandler
	Transfer   *TransferHandler
	Department *DepartmentHandler
	Course     *CourseHandler
	People     *PeopleHandler
	Leave      *LeaveHandler
	Attendance *AttendanceHandler
	Invoice    *InvoiceHandler
	Event      *EventHandler
	Message    *MessageHandler
	Analytics  *AnalyticsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Catalog:    NewCatalogHandler(svc.Catalog),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Filter:     NewFilterHandler(svc.Filter),
		Transfer:   NewTransferHandler(svc.Export, svc.Import, svc.CatalogImport, cfg.Server.UploadLimit),
		Department: NewDepartmentHandler(svc.Department),
		Course:     NewCourseHandler(svc.Course),
		People:     NewPeopleHandler(svc.People),
		Leave:      NewLeaveHandler(svc.Leave),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Invoice:    NewInvoiceHandler(svc.Invoice),
		Event:      NewEventHandler(svc.Event),
		Message:    NewMessageHandler(svc.Message),
		Analytics:  NewAnalyticsHandler(svc.Analytics),
	}
}
