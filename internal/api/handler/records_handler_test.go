package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

type mockAttendanceService struct {
	list    []dto.AttendanceResponse
	listReq *dto.AttendanceListRequest
	item    *dto.AttendanceResponse
	status  string
	err     error
}

func (m *mockAttendanceService) List(_ context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	m.listReq = req
	return m.list, m.err
}
func (m *mockAttendanceService) Record(_ context.Context, _ *dto.AttendanceRequest, _ uint) (*dto.AttendanceResponse, error) {
	return m.item, m.err
}
func (m *mockAttendanceService) UpdateStatus(_ context.Context, _ uint, status string, _ uint) (*dto.AttendanceResponse, error) {
	m.status = status
	return m.item, m.err
}

type mockInvoiceService struct {
	list    []dto.InvoiceResponse
	listReq *dto.InvoiceListRequest
	item    *dto.InvoiceResponse
	update  *dto.UpdateInvoiceRequest
	paidID  uint
	err     error
}

func (m *mockInvoiceService) List(_ context.Context, req *dto.InvoiceListRequest) ([]dto.InvoiceResponse, error) {
	m.listReq = req
	return m.list, m.err
}
func (m *mockInvoiceService) GetByID(_ context.Context, _ uint) (*dto.InvoiceResponse, error) {
	return m.item, m.err
}
func (m *mockInvoiceService) Create(_ context.Context, _ *dto.InvoiceRequest, _ uint) (*dto.InvoiceResponse, error) {
	return m.item, m.err
}
func (m *mockInvoiceService) Update(_ context.Context, _ uint, req *dto.UpdateInvoiceRequest, _ uint) (*dto.InvoiceResponse, error) {
	m.update = req
	return m.item, m.err
}
func (m *mockInvoiceService) Delete(_ context.Context, _ uint) error {
	return m.err
}
func (m *mockInvoiceService) MarkPaid(_ context.Context, id uint, _ uint) (*dto.InvoiceResponse, error) {
	m.paidID = id
	return m.item, m.err
}

type mockEventService struct {
	list []dto.EventResponse
	item *dto.EventResponse
	err  error
}

func (m *mockEventService) List(_ context.Context, _ *dto.EventListRequest) ([]dto.EventResponse, error) {
	return m.list, m.err
}
func (m *mockEventService) GetByID(_ context.Context, _ uint) (*dto.EventResponse, error) {
	return m.item, m.err
}
func (m *mockEventService) Create(_ context.Context, _ *dto.EventRequest, _ uint) (*dto.EventResponse, error) {
	return m.item, m.err
}
func (m *mockEventService) Update(_ context.Context, _ uint, _ *dto.EventRequest, _ uint) (*dto.EventResponse, error) {
	return m.item, m.err
}
func (m *mockEventService) Delete(_ context.Context, _ uint) error {
	return m.err
}

type mockMessageService struct {
	list     []dto.MessageResponse
	box      string
	item     *dto.MessageResponse
	callerID uint
	err      error
}

func (m *mockMessageService) List(_ context.Context, box string, callerID uint) ([]dto.MessageResponse, error) {
	m.box = box
	m.callerID = callerID
	return m.list, m.err
}
func (m *mockMessageService) Send(_ context.Context, _ *dto.MessageRequest, callerID uint) (*dto.MessageResponse, error) {
	m.callerID = callerID
	return m.item, m.err
}
func (m *mockMessageService) Delete(_ context.Context, _ uint, callerID uint) error {
	m.callerID = callerID
	return m.err
}

type mockAnalyticsService struct {
	called string
	year   int
	err    error
}

func (m *mockAnalyticsService) Dashboard(_ context.Context) (*dto.DashboardStats, error) {
	m.called = dto.AnalyticsDashboard
	return &dto.DashboardStats{Students: 3}, m.err
}
func (m *mockAnalyticsService) DepartmentDistribution(_ context.Context) (*dto.ChartSeries, error) {
	m.called = dto.AnalyticsDepartmentDistribution
	return &dto.ChartSeries{}, m.err
}
func (m *mockAnalyticsService) Revenue(_ context.Context, year int) (*dto.RevenueAnalytics, error) {
	m.called = dto.AnalyticsRevenue
	m.year = year
	return &dto.RevenueAnalytics{Year: year}, m.err
}
func (m *mockAnalyticsService) Attendance(_ context.Context) (*dto.AttendanceAnalytics, error) {
	m.called = dto.AnalyticsAttendance
	return &dto.AttendanceAnalytics{}, m.err
}
func (m *mockAnalyticsService) All(_ context.Context, year int) (*dto.AnalyticsResponse, error) {
	m.called = "all"
	m.year = year
	return &dto.AnalyticsResponse{}, m.err
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_List(t *testing.T) {
	mock := &mockAttendanceService{list: []dto.AttendanceResponse{{ID: 1, Status: "Present"}}}
	h := NewAttendanceHandler(mock)

	w := serve("GET", "/attendance", "/attendance?class_id=2&date=2026-10-01", h.List, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.listReq == nil || mock.listReq.ClassID != 2 || mock.listReq.Date != "2026-10-01" {
		t.Errorf("查询参数绑定不符: %+v", mock.listReq)
	}

	for _, target := range []string{"/attendance?status=Excused", "/attendance?date=01/10/2026"} {
		if w := serve("GET", "/attendance", target, h.List, nil, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s 期望 400，实际 %d", target, w.Code)
		}
	}
}

func TestAttendanceHandler_RecordAndUpdate(t *testing.T) {
	mock := &mockAttendanceService{item: &dto.AttendanceResponse{ID: 7, Status: "Late"}}
	h := NewAttendanceHandler(mock)

	body := dto.AttendanceRequest{StudentID: 1, CourseID: 1, Date: "2026-10-01", Status: "Late"}
	w := serve("POST", "/attendance", "/attendance", withAuth(h.Record), jsonBody(body), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}

	w = serve("PUT", "/attendance/:id", "/attendance/7", withAuth(h.UpdateStatus),
		jsonBody(dto.AttendanceStatusRequest{Status: "Absent"}), "application/json")
	if w.Code != http.StatusOK || mock.status != "Absent" {
		t.Errorf("期望 200 且状态为 Absent，实际 %d / %q", w.Code, mock.status)
	}

	w = serve("PUT", "/attendance/:id", "/attendance/abc", withAuth(h.UpdateStatus),
		jsonBody(dto.AttendanceStatusRequest{Status: "Absent"}), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法 ID 期望 400，实际 %d", w.Code)
	}
}

func TestAttendanceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"重复登记", service.ErrAttendanceExists, http.StatusConflict, 16007},
		{"引用无效", service.ErrCatalogInvalidRef, http.StatusBadRequest, 16003},
		{"状态非法", service.ErrAttendanceBadStatus, http.StatusBadRequest, 10001},
		{"内部错误", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	body := dto.AttendanceRequest{StudentID: 1, CourseID: 1, Date: "2026-10-01", Status: "Present"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{err: tt.err})
			w := serve("POST", "/attendance", "/attendance", withAuth(h.Record), jsonBody(body), "application/json")

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}

	h := NewAttendanceHandler(&mockAttendanceService{err: service.ErrAttendanceNotFound})
	w := serve("PUT", "/attendance/:id", "/attendance/9", withAuth(h.UpdateStatus),
		jsonBody(dto.AttendanceStatusRequest{Status: "Late"}), "application/json")
	if w.Code != http.StatusNotFound {
		t.Errorf("不存在期望 404，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// InvoiceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestInvoiceHandler_CreateAndPay(t *testing.T) {
	mock := &mockInvoiceService{item: &dto.InvoiceResponse{ID: 3, InvoiceNumber: "INV-2026-001"}}
	h := NewInvoiceHandler(mock)

	w := serve("POST", "/invoices", "/invoices", withAuth(h.Create),
		jsonBody(dto.InvoiceRequest{StudentID: 1, Amount: 5000, DueDate: "2026-11-30"}), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}

	w = serve("POST", "/invoices", "/invoices", withAuth(h.Create),
		jsonBody(dto.InvoiceRequest{StudentID: 1, Amount: 0, DueDate: "2026-11-30"}), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("金额为 0 期望 400，实际 %d", w.Code)
	}

	w = serve("POST", "/invoices/:id/pay", "/invoices/3/pay", withAuth(h.Pay), nil, "")
	if w.Code != http.StatusOK || mock.paidID != 3 {
		t.Errorf("期望 200 且标记账单 3，实际 %d / %d", w.Code, mock.paidID)
	}
}

func TestInvoiceHandler_PartialUpdate(t *testing.T) {
	mock := &mockInvoiceService{item: &dto.InvoiceResponse{ID: 3}}
	h := NewInvoiceHandler(mock)

	w := serve("PUT", "/invoices/:id", "/invoices/3", withAuth(h.Update),
		jsonBody(map[string]interface{}{"due_date": "2026-12-15"}), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.update == nil || mock.update.DueDate == nil || *mock.update.DueDate != "2026-12-15" || mock.update.Amount != nil || mock.update.Paid != nil {
		t.Errorf("未提供的字段应为 nil，实际 %+v", mock.update)
	}
}

func TestInvoiceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"不存在", service.ErrInvoiceNotFound, http.StatusNotFound, 16001},
		{"编号冲突", service.ErrInvoiceNumberBusy, http.StatusConflict, 16002},
		{"学生不存在", service.ErrCatalogInvalidRef, http.StatusBadRequest, 16003},
		{"到期日错误", service.ErrInvoiceBadDueDate, http.StatusBadRequest, 10001},
		{"内部错误", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInvoiceHandler(&mockInvoiceService{err: tt.err})
			w := serve("POST", "/invoices/:id/pay", "/invoices/3/pay", withAuth(h.Pay), nil, "")

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// EventHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEventHandler_Create(t *testing.T) {
	h := NewEventHandler(&mockEventService{item: &dto.EventResponse{ID: 1}})

	ok := dto.EventRequest{Title: "Sports Day", Description: "Annual", EventDate: "2026-11-20"}
	if w := serve("POST", "/events", "/events", withAuth(h.Create), jsonBody(ok), "application/json"); w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}

	// 班级对象必须带 audience_id
	bad := ok
	bad.AudienceType = "class"
	if w := serve("POST", "/events", "/events", withAuth(h.Create), jsonBody(bad), "application/json"); w.Code != http.StatusBadRequest {
		t.Errorf("缺少 audience_id 期望 400，实际 %d", w.Code)
	}
}

func TestEventHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"对象无效", service.ErrEventBadAudience, http.StatusBadRequest, 16003},
		{"不存在", service.ErrEventNotFound, http.StatusNotFound, 16001},
		{"内部错误", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	body := dto.EventRequest{Title: "Orientation", Description: "Welcome", EventDate: "2026-11-22", AudienceType: "department", AudienceID: 9}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEventHandler(&mockEventService{err: tt.err})
			w := serve("PUT", "/events/:id", "/events/1", withAuth(h.Update), jsonBody(body), "application/json")

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// MessageHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMessageHandler_ListBox(t *testing.T) {
	mock := &mockMessageService{list: []dto.MessageResponse{}}
	h := NewMessageHandler(mock)

	w := serve("GET", "/messages", "/messages?filter=inbox", withAuth(h.List), nil, "")
	if w.Code != http.StatusOK || mock.box != "inbox" || mock.callerID != 1 {
		t.Errorf("期望 200 且查询当前用户收件箱，实际 %d / %q / %d", w.Code, mock.box, mock.callerID)
	}

	if w := serve("GET", "/messages", "/messages?filter=trash", withAuth(h.List), nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("未知范围期望 400，实际 %d", w.Code)
	}
}

func TestMessageHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"非收发方", service.ErrMessageForbidden, http.StatusForbidden, 10003},
		{"不存在", service.ErrMessageNotFound, http.StatusNotFound, 16001},
		{"内部错误", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMessageHandler(&mockMessageService{err: tt.err})
			w := serve("DELETE", "/messages/:id", "/messages/4", withAuth(h.Delete), nil, "")

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}

	h := NewMessageHandler(&mockMessageService{err: service.ErrMessageRecipientNotFound})
	body := dto.MessageRequest{ReceiverType: "student", ReceiverID: 9, Subject: "Hi", Body: "Hello"}
	w := serve("POST", "/messages", "/messages", withAuth(h.Send), jsonBody(body), "application/json")
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 16003 {
		t.Errorf("收件人不存在期望 400/16003，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AnalyticsHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAnalyticsHandler_Get(t *testing.T) {
	tests := []struct {
		target   string
		wantCall string
		wantYear int
	}{
		{"/analytics", "all", 0},
		{"/analytics?type=dashboard", dto.AnalyticsDashboard, 0},
		{"/analytics?type=department-distribution", dto.AnalyticsDepartmentDistribution, 0},
		{"/analytics?type=revenue&year=2025", dto.AnalyticsRevenue, 2025},
		{"/analytics?type=attendance", dto.AnalyticsAttendance, 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			mock := &mockAnalyticsService{}
			h := NewAnalyticsHandler(mock)
			w := serve("GET", "/analytics", tt.target, h.Get, nil, "")
			if w.Code != http.StatusOK {
				t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
			}
			if mock.called != tt.wantCall || mock.year != tt.wantYear {
				t.Errorf("期望调用 %s(year=%d)，实际 %s(year=%d)", tt.wantCall, tt.wantYear, mock.called, mock.year)
			}
		})
	}

	h := NewAnalyticsHandler(&mockAnalyticsService{})
	for _, target := range []string{"/analytics?type=faculty-performance", "/analytics?year=1999"} {
		if w := serve("GET", "/analytics", target, h.Get, nil, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s 期望 400，实际 %d", target, w.Code)
		}
	}

	h = NewAnalyticsHandler(&mockAnalyticsService{err: errors.New("db down")})
	if w := serve("GET", "/analytics", "/analytics", h.Get, nil, ""); w.Code != http.StatusInternalServerError {
		t.Errorf("底层失败期望 500，实际 %d", w.Code)
	}
}
