package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
)

// InvoiceFilter 账单筛选条件，零值字段不参与过滤
// DueFrom / DueTo 为到期日闭区间；IssuedFrom / IssuedTo 为开票时间左闭右开
type InvoiceFilter struct {
	StudentID  uint
	Paid       *bool
	DueFrom    string
	DueTo      string
	IssuedFrom time.Time
	IssuedTo   time.Time
}

// InvoiceRepository 账单数据访问接口
type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	GetByID(ctx context.Context, id uint) (*model.Invoice, error)
	// List 按到期日降序
	List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error)
	Count(ctx context.Context, f InvoiceFilter) (int64, error)
	// LastNumber 返回指定前缀下序号最大的账单编号，没有时返回空串
	LastNumber(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, inv *model.Invoice) error
	// Delete 记录不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id uint) error
}

type invoiceRepo struct {
	db *gorm.DB
}

// NewInvoiceRepo 创建 InvoiceRepository 实例
func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error) {
	var list []model.Invoice
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("due_date DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *invoiceRepo) Count(ctx context.Context, f InvoiceFilter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), f).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) LastNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	// 序号位数可能增长（999 之后为 1000），先按长度再按字典序
	err := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("LENGTH(invoice_number) DESC, invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", inv.InvoiceID).
		Updates(map[string]interface{}{
			"student_id": inv.StudentID,
			"amount":     inv.Amount,
			"due_date":   inv.DueDate,
			"paid":       inv.Paid,
			"paid_at":    inv.PaidAt,
			"updated_by": inv.UpdatedBy,
		}).Error
}

func (r *invoiceRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Invoice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepo) applyFilter(db *gorm.DB, f InvoiceFilter) *gorm.DB {
	if f.StudentID != 0 {
		db = db.Where("student_id = ?", f.StudentID)
	}
	if f.Paid != nil {
		db = db.Where("paid = ?", *f.Paid)
	}
	if f.DueFrom != "" {
		db = db.Where("due_date >= ?", f.DueFrom)
	}
	if f.DueTo != "" {
		db = db.Where("due_date <= ?", f.DueTo)
	}
	if !f.IssuedFrom.IsZero() {
		db = db.Where("created_at >= ?", f.IssuedFrom)
	}
	if !f.IssuedTo.IsZero() {
		db = db.Where("created_at < ?", f.IssuedTo)
	}
	return db
}
