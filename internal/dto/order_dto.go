package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type CreateOrderRequest struct {
	// Client may be omitted by portal users — their own client record is used.
	Client string             `json:"client" validate:"omitempty,uuid"`
	Items  []OrderItemRequest `json:"items"  validate:"required,min=1,dive"`
	Notes  *string            `json:"notes"`
}

// TransitionOrderRequest drives PATCH /orders/:id.
type TransitionOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderFilter is bound from the query string of GET /orders.
type OrderFilter struct {
	Status    string `form:"status"`
	SortBy    string `form:"sortBy,default=createdAt"`
	SortOrder string `form:"sortOrder,default=desc" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID string `json:"productId"`
	Product   string `json:"product,omitempty"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	ClientID    string              `json:"clientId"`
	StoreID     string              `json:"storeId"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Tax         decimal.Decimal     `json:"tax"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Notes       *string             `json:"notes,omitempty"`
	CreatedAt   string              `json:"createdAt"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
