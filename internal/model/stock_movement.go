package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types.
const (
	MovementReserve = "reserve"
	MovementRelease = "release"
	MovementRestock = "restock"
)

// StockMovement records every change to a product's quantity. Reserve and
// release movements carry the reservation token, which is what makes release
// idempotent: a token that already has release rows is not released again.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null"`
	// Quantity is the signed delta: negative = stock out, positive = stock in.
	Quantity    int `gorm:"not null"`
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	Note        string

	ReservationToken *uuid.UUID `gorm:"type:uuid;index"`
	// ReferenceID points at the invoice (or other entity) that caused the movement.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
