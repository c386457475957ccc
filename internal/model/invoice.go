package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the derived settlement state of an invoice. The reconciler
// is its only writer, except for the overdue sweep which flips unpaid invoices
// (Pending or Partial) past their due date to Overdue.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

// Invoice is a priced, stock-backed bill for a completed order.
//
// InvoiceNo is a globally unique zero-padded monotonic sequence allocated
// inside the creation transaction. Line rates/amounts are snapshots taken at
// creation time and are immutable regardless of later product price edits.
// Invariants: sum(items.amount) == subtotal and
// totalAmount == (subtotal - discount) + tax, rounded to 2 places.
type Invoice struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNo string     `gorm:"type:varchar(12);uniqueIndex;not null"`
	OrderID   *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	ClientID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID  `gorm:"type:uuid;not null;index"`

	Date    time.Time `gorm:"not null"`
	DueDate time.Time `gorm:"not null"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Notes *string
	Terms *string

	// ReservationToken ties the invoice to the ledger reservation that backed
	// it, so deletion can release exactly what was consumed, replay-safe.
	ReservationToken uuid.UUID `gorm:"type:uuid;not null"`

	// OverpaymentFlagged is set when OVERPAYMENT_MODE=flag accepted a payment
	// that pushed the cumulative total past TotalAmount.
	OverpaymentFlagged bool `gorm:"not null;default:false"`

	// PaymentVersion is an optimistic lock on the settlement fields. Every
	// status write bumps it and is conditional on the version the writer read,
	// so concurrent payments against the same invoice serialize through the
	// reconciler's retry instead of racing the overpayment guard.
	PaymentVersion int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Client *Client       `gorm:"foreignKey:ClientID"`
}

type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`
	// Rate is the product price snapshot at invoice creation.
	Rate   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
