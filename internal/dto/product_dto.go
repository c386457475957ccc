package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest sets a product's absolute quantity (manual restock /
// correction). This is the one sanctioned stock path outside reservation.
type AdjustStockRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// ProductFilter is bound from the query string of GET /products. Listing
// reads are outside the reservation transaction and may be stale.
type ProductFilter struct {
	Search    string `form:"search"`
	Active    string `form:"active"` // "false" = inactive, "all" = both, default active
	SortBy    string `form:"sortBy,default=name"`
	SortOrder string `form:"sortOrder,default=asc" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=200"`
}

type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	StoreID  string          `json:"storeId"`
	IsActive bool            `json:"isActive"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
