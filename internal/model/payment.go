package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of accepted payment channels.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodUPI          PaymentMethod = "upi"
	MethodCheque       PaymentMethod = "cheque"
	MethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodUPI, MethodCheque, MethodOther:
		return true
	}
	return false
}

// Payment is one settlement applied against an invoice. Many payments may
// apply to one invoice; the reconciler derives the invoice's payment status
// from the cumulative sum, callers never set it.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Reference string
	// Flagged marks a payment accepted in flag mode despite exceeding the
	// invoice total plus tolerance.
	Flagged   bool `gorm:"not null;default:false"`
	CreatedAt time.Time

	Invoice *Invoice `gorm:"foreignKey:InvoiceID"`
}
