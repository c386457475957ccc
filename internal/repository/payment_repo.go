package repository

import (
	"context"

	"paypilot/internal/dto"
	"paypilot/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository defines the data access contract for payments.
type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	// SumForInvoiceTx returns the cumulative amount already applied to the
	// invoice, read inside the reconciler's transaction.
	SumForInvoiceTx(tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error)
	// DeleteTx removes a payment row. The reconciler uses it to undo its own
	// insert when it loses the settlement version race.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter dto.PaymentFilter, storeID *uuid.UUID) ([]model.Payment, int64, error)
	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) SumForInvoiceTx(tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.Model(&model.Payment{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", invoiceID).
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *paymentRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Payment{}, "id = ?", id).Error
}

func (r *paymentRepo) List(ctx context.Context, filter dto.PaymentFilter, storeID *uuid.UUID) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	if filter.InvoiceID != "" {
		q = q.Where("invoice_id = ?", filter.InvoiceID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) DB() *gorm.DB { return r.db }
