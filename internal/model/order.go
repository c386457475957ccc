package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed order lifecycle state set.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderAccepted  OrderStatus = "Accepted"
	OrderCompleted OrderStatus = "Completed"
	OrderRejected  OrderStatus = "Rejected"
	OrderCancelled OrderStatus = "Cancelled"
)

// orderTransitions is the explicit transition table. Completed is reachable
// only through invoice creation; the service layer enforces that the public
// surface cannot request it directly. A Completed order may still be
// cancelled — the service voids the backing invoice (restoring stock) before
// the transition. Rejected and Cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderAccepted, OrderRejected, OrderCancelled},
	OrderAccepted:  {OrderCompleted, OrderCancelled},
	OrderCompleted: {OrderCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderCompleted, OrderRejected, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransition reports whether s → to is a legal transition.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Order is a client's purchase request. Subtotal/Tax/TotalAmount are a display
// hint computed server-side at creation; the authoritative figures live on the
// invoice generated when the order is fulfilled. Orders are never hard-deleted.
type Order struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID uuid.UUID   `gorm:"type:uuid;not null;index"`
	StoreID  uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status   OrderStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items  []OrderItem `gorm:"foreignKey:OrderID"`
	Client *Client     `gorm:"foreignKey:ClientID"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
