package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	items []model.Attendance
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	a.AttendanceID = uint(len(m.items) + 1)
	m.items = append(m.items, *a)
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id uint) (*model.Attendance, error) {
	for i := range m.items {
		if m.items[i].AttendanceID == id {
			a := m.items[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Find(_ context.Context, studentID, courseID uint, date string) (*model.Attendance, error) {
	for i := range m.items {
		a := m.items[i]
		if a.StudentID == studentID && a.CourseID == courseID && a.Date == date {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List 院系 / 班级 / 分组条件不参与 mock 过滤
func (m *mockAttendanceRepo) List(_ context.Context, f repository.AttendanceFilter) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.items {
		if f.StudentID != 0 && a.StudentID != f.StudentID {
			continue
		}
		if f.CourseID != 0 && a.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

func (m *mockAttendanceRepo) Count(ctx context.Context, f repository.AttendanceFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id uint, status string, callerID uint) error {
	for i := range m.items {
		if m.items[i].AttendanceID == id {
			m.items[i].Status = status
			m.items[i].UpdatedBy = &callerID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock InvoiceRepository ──

type mockInvoiceRepo struct {
	items      []model.Invoice
	createErrs []error // 依次作为 Create 的返回值，用尽后正常写入
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return err
	}
	inv.InvoiceID = uint(len(m.items) + 1)
	inv.CreatedAt = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m.items = append(m.items, *inv)
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id uint) (*model.Invoice, error) {
	for i := range m.items {
		if m.items[i].InvoiceID == id {
			inv := m.items[i]
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]model.Invoice, error) {
	var result []model.Invoice
	for _, inv := range m.items {
		if f.StudentID != 0 && inv.StudentID != f.StudentID {
			continue
		}
		if f.Paid != nil && inv.Paid != *f.Paid {
			continue
		}
		if f.DueFrom != "" && inv.DueDate < f.DueFrom {
			continue
		}
		if f.DueTo != "" && inv.DueDate > f.DueTo {
			continue
		}
		result = append(result, inv)
	}
	return result, nil
}

func (m *mockInvoiceRepo) Count(ctx context.Context, f repository.InvoiceFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func (m *mockInvoiceRepo) LastNumber(_ context.Context, prefix string) (string, error) {
	last := ""
	for _, inv := range m.items {
		if !strings.HasPrefix(inv.InvoiceNumber, prefix) {
			continue
		}
		n := inv.InvoiceNumber
		if len(n) > len(last) || (len(n) == len(last) && n > last) {
			last = n
		}
	}
	return last, nil
}

func (m *mockInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	for i := range m.items {
		if m.items[i].InvoiceID == inv.InvoiceID {
			m.items[i] = *inv
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].InvoiceID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	items []model.Event
}

func (m *mockEventRepo) Create(_ context.Context, e *model.Event) error {
	e.EventID = uint(len(m.items) + 1)
	m.items = append(m.items, *e)
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id uint) (*model.Event, error) {
	for i := range m.items {
		if m.items[i].EventID == id {
			e := m.items[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) List(_ context.Context, f repository.EventFilter) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.items {
		if f.AudienceType != "" && e.AudienceType != f.AudienceType {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Title)) {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].EventDate < result[j].EventDate })
	return result, nil
}

func (m *mockEventRepo) Count(ctx context.Context, f repository.EventFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func (m *mockEventRepo) Update(_ context.Context, e *model.Event) error {
	for i := range m.items {
		if m.items[i].EventID == e.EventID {
			m.items[i] = *e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockEventRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].EventID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	items []model.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	msg.MessageID = uint(len(m.items) + 1)
	msg.SentAt = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC).Add(time.Duration(msg.MessageID) * time.Minute)
	m.items = append(m.items, *msg)
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id uint) (*model.Message, error) {
	for i := range m.items {
		if m.items[i].MessageID == id {
			msg := m.items[i]
			return &msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) List(_ context.Context, f repository.MessageFilter) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.items {
		sent := msg.SenderType == f.PartyType && msg.SenderID == f.PartyID
		received := msg.ReceiverType == f.PartyType && msg.ReceiverID == f.PartyID
		switch f.Box {
		case repository.MessageBoxInbox:
			if !received {
				continue
			}
		case repository.MessageBoxSent:
			if !sent {
				continue
			}
		default:
			if !sent && !received {
				continue
			}
		}
		result = append(result, msg)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].SentAt.After(result[j].SentAt) })
	return result, nil
}

func (m *mockMessageRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].MessageID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock AnalyticsRepository ──

type mockAnalyticsRepo struct {
	totals   repository.Totals
	today    string // 最近一次 Totals 收到的日期
	perDept  []repository.LabelCount
	byMonth  []repository.StatusCount
	byDept   []repository.StatusCount
	issued   []repository.IssuedAmount
	from, to time.Time
	err      error
}

func (m *mockAnalyticsRepo) Totals(_ context.Context, today string) (*repository.Totals, error) {
	m.today = today
	if m.err != nil {
		return nil, m.err
	}
	t := m.totals
	return &t, nil
}

func (m *mockAnalyticsRepo) StudentsPerDepartment(context.Context) ([]repository.LabelCount, error) {
	return m.perDept, m.err
}

func (m *mockAnalyticsRepo) AttendanceByMonth(context.Context) ([]repository.StatusCount, error) {
	return m.byMonth, m.err
}

func (m *mockAnalyticsRepo) AttendanceByDepartment(context.Context) ([]repository.StatusCount, error) {
	return m.byDept, m.err
}

func (m *mockAnalyticsRepo) InvoicesIssued(_ context.Context, from, to time.Time) ([]repository.IssuedAmount, error) {
	m.from, m.to = from, to
	return m.issued, m.err
}
