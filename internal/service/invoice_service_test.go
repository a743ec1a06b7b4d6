package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
)

func newTestInvoiceService(t *testing.T) (*invoiceService, *mockInvoiceRepo, uint) {
	t.Helper()
	repo, _, _ := newTestRepository()
	st, err := NewPeopleService(repo, zap.NewNop()).Create(context.Background(), studentReq("ali@x.edu", 1, 1, 1), 1)
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	svc := NewInvoiceService(repo, time.UTC, zap.NewNop()).(*invoiceService)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return svc, repo.Invoice.(*mockInvoiceRepo), st.ID
}

func TestInvoiceService_CreateNumbering(t *testing.T) {
	svc, invoices, studentID := newTestInvoiceService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 150000, DueDate: "2026-11-30"}, 1)
	if err != nil {
		t.Fatalf("期望开票成功，实际: %v", err)
	}
	if first.InvoiceNumber != "INV-2026-001" || first.StudentName != "Ali Raza" || first.Paid || first.PaidAt != "" {
		t.Errorf("首张账单数据不符: %+v", first)
	}

	second, _ := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 2000, DueDate: "2026-12-31", Paid: true}, 1)
	if second.InvoiceNumber != "INV-2026-002" {
		t.Errorf("期望 INV-2026-002，实际 %s", second.InvoiceNumber)
	}
	if !second.Paid || second.PaidAt != "2026-10-19T08:30:00Z" {
		t.Errorf("开票即已付应记录付款时间，实际 %+v", second)
	}

	// 序号超过三位后按数值继续递增
	invoices.items = append(invoices.items,
		model.Invoice{InvoiceID: 50, InvoiceNumber: "INV-2026-999", StudentID: studentID},
		model.Invoice{InvoiceID: 51, InvoiceNumber: "INV-2026-1000", StudentID: studentID},
		model.Invoice{InvoiceID: 52, InvoiceNumber: "INV-2025-4321", StudentID: studentID},
	)
	next, err := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 100, DueDate: "2026-12-31"}, 1)
	if err != nil || next.InvoiceNumber != "INV-2026-1001" {
		t.Errorf("期望 INV-2026-1001，实际 %+v (err=%v)", next, err)
	}
}

func TestInvoiceService_CreateRetriesOnNumberClash(t *testing.T) {
	svc, invoices, studentID := newTestInvoiceService(t)
	ctx := context.Background()
	clash := &pgconn.PgError{Code: "23505", ConstraintName: "invoices_invoice_number_key"}

	invoices.createErrs = []error{clash}
	resp, err := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 100, DueDate: "2026-11-01"}, 1)
	if err != nil || resp.InvoiceNumber != "INV-2026-001" {
		t.Fatalf("一次冲突后期望重试成功，实际 %+v (err=%v)", resp, err)
	}

	invoices.createErrs = []error{clash, clash, clash}
	if _, err := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 100, DueDate: "2026-11-01"}, 1); !errors.Is(err, ErrInvoiceNumberBusy) {
		t.Errorf("连续冲突期望 ErrInvoiceNumberBusy，实际: %v", err)
	}
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	svc, _, studentID := newTestInvoiceService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.InvoiceRequest
		want error
	}{
		{"金额为 0", dto.InvoiceRequest{StudentID: studentID, Amount: 0, DueDate: "2026-11-01"}, ErrInvoiceBadAmount},
		{"到期日格式错误", dto.InvoiceRequest{StudentID: studentID, Amount: 10, DueDate: "2026/11/01"}, ErrInvoiceBadDueDate},
		{"学生不存在", dto.InvoiceRequest{StudentID: 99, Amount: 10, DueDate: "2026-11-01"}, ErrCatalogInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tt.req, 1); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestInvoiceService_UpdateAndMarkPaid(t *testing.T) {
	svc, _, studentID := newTestInvoiceService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 5000, DueDate: "2026-11-30"}, 1)

	due := "2026-12-15"
	updated, err := svc.Update(ctx, created.ID, &dto.UpdateInvoiceRequest{DueDate: &due}, 2)
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if updated.DueDate != due || updated.Amount != 5000 || updated.InvoiceNumber != created.InvoiceNumber {
		t.Errorf("未提供的字段应保持不变，实际 %+v", updated)
	}

	paid, err := svc.MarkPaid(ctx, created.ID, 2)
	if err != nil || !paid.Paid || paid.PaidAt != "2026-10-19T08:30:00Z" {
		t.Fatalf("MarkPaid 结果不符: %+v (err=%v)", paid, err)
	}

	// 再次标记不改变原付款时间
	svc.now = func() time.Time { return time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC) }
	again, _ := svc.MarkPaid(ctx, created.ID, 2)
	if again.PaidAt != paid.PaidAt {
		t.Errorf("重复标记付款不应改变付款时间，实际 %s", again.PaidAt)
	}

	unpaid := false
	reverted, _ := svc.Update(ctx, created.ID, &dto.UpdateInvoiceRequest{Paid: &unpaid}, 2)
	if reverted.Paid || reverted.PaidAt != "" {
		t.Errorf("改回未付应清空付款时间，实际 %+v", reverted)
	}

	zero := int64(0)
	if _, err := svc.Update(ctx, created.ID, &dto.UpdateInvoiceRequest{Amount: &zero}, 2); !errors.Is(err, ErrInvoiceBadAmount) {
		t.Errorf("期望 ErrInvoiceBadAmount，实际: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, 99, 2); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("期望 ErrInvoiceNotFound，实际: %v", err)
	}
}

func TestInvoiceService_ListAndDelete(t *testing.T) {
	svc, _, studentID := newTestInvoiceService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 100, DueDate: "2026-11-01", Paid: true}, 1)
	_, _ = svc.Create(ctx, &dto.InvoiceRequest{StudentID: studentID, Amount: 200, DueDate: "2026-12-01"}, 1)

	unpaid, err := svc.List(ctx, &dto.InvoiceListRequest{Status: "unpaid"})
	if err != nil || len(unpaid) != 1 || unpaid[0].Amount != 200 {
		t.Errorf("期望 1 张未付账单，实际 %+v (err=%v)", unpaid, err)
	}
	all, _ := svc.List(ctx, &dto.InvoiceListRequest{})
	if len(all) != 2 {
		t.Errorf("期望 2 张账单，实际 %d", len(all))
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, a.ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("删除后期望 ErrInvoiceNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("重复删除期望 ErrInvoiceNotFound，实际: %v", err)
	}
}
