package dto

import "github.com/shopspring/decimal"

// RecordPaymentRequest is the POST /payments body. InvoiceNo is a display
// hint; the invoice is addressed by InvoiceID only.
type RecordPaymentRequest struct {
	InvoiceID     string          `json:"invoiceId"     validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"        validate:"required,gt=0"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer upi cheque other"`
	PaymentID     string          `json:"paymentId"` // external gateway reference
	InvoiceNo     string          `json:"invoiceNo"`
}

type PaymentFilter struct {
	InvoiceID string `form:"invoiceId" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=200"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoiceId"`
	ClientID  string          `json:"clientId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"paymentMethod"`
	Reference string          `json:"reference,omitempty"`
	Flagged   bool            `json:"flagged,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

// ApplyPaymentResponse returns the recorded payment together with the invoice
// whose payment status the reconciler just re-derived.
type ApplyPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
