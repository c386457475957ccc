package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Quantity is mutated only by the inventory ledger
// (reserve/release) and by the explicit restock path — never by direct field
// overwrite from unrelated flows.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Description *string
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null;default:0;check:quantity >= 0"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	IsActive    bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}
