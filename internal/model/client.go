package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of a store. When the client uses the portal, UserID
// links to their login; orders placed through the portal carry their ClientID.
type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"not null;index"`
	Email   *string
	Phone   *string
	Address *string
	StoreID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID  *uuid.UUID `gorm:"type:uuid;index"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}
