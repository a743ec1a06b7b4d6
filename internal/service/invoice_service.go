package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	pkgerrors "edusync/backend/pkg/errors"
)

// ── 账单模块业务错误 ──

var (
	ErrInvoiceNotFound   = errors.New("账单不存在")
	ErrInvoiceNumberBusy = errors.New("账单编号生成冲突，请重试")
	ErrInvoiceBadDueDate = errors.New("到期日格式应为 YYYY-MM-DD")
	ErrInvoiceBadAmount  = errors.New("账单金额必须大于 0")
)

// 编号冲突时重新取号的次数
const invoiceNumberAttempts = 3

// InvoiceService 学生账单业务接口
//
// 编号格式 INV-<开票年份>-<序号>，序号按年递增且至少三位。
type InvoiceService interface {
	// List 按到期日降序，附学生姓名
	List(ctx context.Context, req *dto.InvoiceListRequest) ([]dto.InvoiceResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.InvoiceResponse, error)
	Create(ctx context.Context, req *dto.InvoiceRequest, callerID uint) (*dto.InvoiceResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateInvoiceRequest, callerID uint) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id uint) error
	// MarkPaid 已付款的账单保持原付款时间
	MarkPaid(ctx context.Context, id uint, callerID uint) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewInvoiceService 创建 InvoiceService 实例；loc 决定编号中的年份
func NewInvoiceService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) InvoiceService {
	if loc == nil {
		loc = time.Local
	}
	return &invoiceService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── List / GetByID ──────────────────────

func (s *invoiceService) List(ctx context.Context, req *dto.InvoiceListRequest) ([]dto.InvoiceResponse, error) {
	f := repository.InvoiceFilter{
		StudentID: req.StudentID,
		DueFrom:   req.DueFrom,
		DueTo:     req.DueTo,
	}
	switch req.Status {
	case "paid":
		paid := true
		f.Paid = &paid
	case "unpaid":
		paid := false
		f.Paid = &paid
	}

	list, err := s.repo.Invoice.List(ctx, f)
	if err != nil {
		s.logger.Error("查询账单列表失败", zap.Error(err))
		return nil, err
	}

	names := newNameCache(s.repo)
	result := make([]dto.InvoiceResponse, 0, len(list))
	for i := range list {
		result = append(result, s.toResponse(ctx, names, &list[i]))
	}
	return result, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uint) (*dto.InvoiceResponse, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, newNameCache(s.repo), inv)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *invoiceService) Create(ctx context.Context, req *dto.InvoiceRequest, callerID uint) (*dto.InvoiceResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvoiceBadAmount
	}
	if _, err := time.Parse(leaveDateLayout, req.DueDate); err != nil {
		return nil, ErrInvoiceBadDueDate
	}
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		return nil, refError(err)
	}

	now := s.now().In(s.loc)
	inv := &model.Invoice{
		StudentID: req.StudentID,
		Amount:    req.Amount,
		DueDate:   req.DueDate,
		Paid:      req.Paid,
		BaseModel: model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if req.Paid {
		inv.PaidAt = &now
	}

	prefix := fmt.Sprintf("INV-%d-", now.Year())
	for attempt := 1; ; attempt++ {
		number, err := s.nextNumber(ctx, prefix)
		if err != nil {
			return nil, err
		}
		inv.InvoiceNumber = number

		err = s.repo.Invoice.Create(ctx, inv)
		if err == nil {
			break
		}
		// 并发开票取到同一编号时重新取号
		if pkgerrors.IsUniqueViolation(err) && attempt < invoiceNumberAttempts {
			continue
		}
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrInvoiceNumberBusy
		}
		s.logger.Error("创建账单失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("账单已开具",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Uint("student_id", inv.StudentID),
		zap.Int64("amount", inv.Amount),
	)
	resp := s.toResponse(ctx, newNameCache(s.repo), inv)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *invoiceService) Update(ctx context.Context, id uint, req *dto.UpdateInvoiceRequest, callerID uint) (*dto.InvoiceResponse, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StudentID != nil && *req.StudentID != inv.StudentID {
		if _, err := s.repo.Student.GetByID(ctx, *req.StudentID); err != nil {
			return nil, refError(err)
		}
		inv.StudentID = *req.StudentID
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, ErrInvoiceBadAmount
		}
		inv.Amount = *req.Amount
	}
	if req.DueDate != nil {
		if _, err := time.Parse(leaveDateLayout, *req.DueDate); err != nil {
			return nil, ErrInvoiceBadDueDate
		}
		inv.DueDate = *req.DueDate
	}
	if req.Paid != nil {
		s.setPaid(inv, *req.Paid)
	}
	inv.UpdatedBy = &callerID

	if err := s.repo.Invoice.Update(ctx, inv); err != nil {
		s.logger.Error("更新账单失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := s.toResponse(ctx, newNameCache(s.repo), inv)
	return &resp, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id uint, callerID uint) (*dto.InvoiceResponse, error) {
	paid := true
	return s.Update(ctx, id, &dto.UpdateInvoiceRequest{Paid: &paid}, callerID)
}

// ────────────────────── Delete ──────────────────────

func (s *invoiceService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Invoice.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		s.logger.Error("删除账单失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *invoiceService) get(ctx context.Context, id uint) (*model.Invoice, error) {
	inv, err := s.repo.Invoice.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		s.logger.Error("查询账单失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return inv, nil
}

// nextNumber 取前缀下最大序号加一
func (s *invoiceService) nextNumber(ctx context.Context, prefix string) (string, error) {
	last, err := s.repo.Invoice.LastNumber(ctx, prefix)
	if err != nil {
		s.logger.Error("查询账单编号失败", zap.Error(err))
		return "", err
	}
	seq := 0
	if last != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("账单编号格式异常 %q: %w", last, err)
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

func (s *invoiceService) setPaid(inv *model.Invoice, paid bool) {
	switch {
	case paid && !inv.Paid:
		now := s.now().In(s.loc)
		inv.PaidAt = &now
	case !paid:
		inv.PaidAt = nil
	}
	inv.Paid = paid
}

func (s *invoiceService) toResponse(ctx context.Context, names *nameCache, inv *model.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:            inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		StudentID:     inv.StudentID,
		StudentName:   names.party(ctx, model.PartyStudent, inv.StudentID),
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
		Paid:          inv.Paid,
		GeneratedAt:   inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.PaidAt != nil {
		resp.PaidAt = inv.PaidAt.Format(time.RFC3339)
	}
	return resp
}
