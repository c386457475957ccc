package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type InvoiceProductRequest struct {
	Product  string `json:"product"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateInvoiceRequest is the POST /invoices body. The order's accepted line
// items are the source of truth; products and the submitted subtotal/tax/
// totalAmount are accepted for wire compatibility but recomputed server-side
// and treated as a display hint only.
type CreateInvoiceRequest struct {
	Order        string                  `json:"order"        validate:"required,uuid"`
	Client       string                  `json:"client"       validate:"omitempty,uuid"`
	Products     []InvoiceProductRequest `json:"products"     validate:"omitempty,dive"`
	DiscountRate decimal.Decimal         `json:"discountRate" validate:"min=0,max=100"`
	TaxRate      decimal.Decimal         `json:"taxRate"      validate:"min=0,max=100"`
	Subtotal     decimal.Decimal         `json:"subtotal"`
	Tax          decimal.Decimal         `json:"tax"`
	TotalAmount  decimal.Decimal         `json:"totalAmount"`
	Notes        *string                 `json:"notes"`
	Terms        *string                 `json:"terms"`
}

// InvoiceFilter is bound from the query string of GET /invoices.
type InvoiceFilter struct {
	PaymentStatus string `form:"paymentStatus"`
	Search        string `form:"search"`
	SortBy        string `form:"sortBy,default=date"`
	SortOrder     string `form:"sortOrder,default=desc" validate:"omitempty,oneof=asc desc"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type InvoiceItemResponse struct {
	ProductID string          `json:"productId"`
	Product   string          `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNo     string                `json:"invoiceNo"`
	OrderID       *string               `json:"orderId,omitempty"`
	ClientID      string                `json:"clientId"`
	StoreID       string                `json:"storeId"`
	Date          string                `json:"date"`
	DueDate       string                `json:"dueDate"`
	PaymentStatus string                `json:"paymentStatus"`
	Items         []InvoiceItemResponse `json:"items"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Tax           decimal.Decimal       `json:"tax"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	Notes         *string               `json:"notes,omitempty"`
	Terms         *string               `json:"terms,omitempty"`
	CreatedAt     string                `json:"createdAt"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
