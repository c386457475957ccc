package repository

import (
	"context"
	"time"

	"paypilot/internal/dto"
	"paypilot/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceRepository defines the data access contract for invoices.
type InvoiceRepository interface {
	CreateTx(tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Invoice, int64, error)

	// NextSequenceTx reads the highest numeric invoice number globally.
	// The caller allocates highest+1; the unique index on invoice_no catches
	// two transactions reading the same value, and the caller retries.
	NextSequenceTx(tx *gorm.DB) (int64, error)

	// UpdatePaymentStatusTx writes the derived settlement status, conditional
	// on the payment version the caller read. Zero affected rows means a
	// concurrent settlement write won and the caller must retry from a fresh
	// read.
	UpdatePaymentStatusTx(tx *gorm.DB, id uuid.UUID, version int64, status model.PaymentStatus, flagged bool) (int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// MarkOverdue flips unpaid invoices (Pending or Partial) whose due date
	// passed to Overdue.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)

	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) CreateTx(tx *gorm.DB, inv *model.Invoice) error {
	return tx.Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").Preload("Client").
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("Items").
		First(&inv, "order_id = ?", orderID).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if filter.PaymentStatus != "" && filter.PaymentStatus != "all" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		q = q.Where("invoice_no ILIKE ?", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date " + sortDirection(filter.SortOrder)
	switch filter.SortBy {
	case "invoiceNo":
		order = "invoice_no " + sortDirection(filter.SortOrder)
	case "totalAmount":
		order = "total_amount " + sortDirection(filter.SortOrder)
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Order(order).Limit(filter.Limit).Offset(offset).Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) NextSequenceTx(tx *gorm.DB) (int64, error) {
	var max int64
	err := tx.Raw(`SELECT COALESCE(MAX(CAST(invoice_no AS BIGINT)), 0) FROM invoices`).Scan(&max).Error
	return max, err
}

func (r *invoiceRepo) UpdatePaymentStatusTx(tx *gorm.DB, id uuid.UUID, version int64, status model.PaymentStatus, flagged bool) (int64, error) {
	updates := map[string]interface{}{
		"payment_status":  status,
		"payment_version": gorm.Expr("payment_version + 1"),
	}
	if flagged {
		updates["overpayment_flagged"] = true
	}
	res := tx.Model(&model.Invoice{}).
		Where("id = ? AND payment_version = ?", id, version).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *invoiceRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("payment_status IN ? AND due_date < ?",
			[]model.PaymentStatus{model.PaymentPending, model.PaymentPartial}, asOf).
		Updates(map[string]interface{}{
			"payment_status":  model.PaymentOverdue,
			"payment_version": gorm.Expr("payment_version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *invoiceRepo) DB() *gorm.DB { return r.db }
