package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is the tenancy boundary. Every product, order, invoice and payment
// belongs to exactly one store; users other than the superadmin are bound to one.
type Store struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null;index"`
	Email    *string
	Phone    *string
	Address  *string
	City     *string
	Country  *string
	IsActive bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Employees []User `gorm:"foreignKey:StoreID"`
}
