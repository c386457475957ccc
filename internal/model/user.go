package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles. Permission checks compare Role
// values, never raw strings from the request.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin" // store administrator
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client" // client-portal login
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// Operator reports whether the role may drive order/invoice lifecycle.
func (r Role) Operator() bool {
	return r == RoleSuperadmin || r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	// StoreID is nil only for the superadmin.
	StoreID  *uuid.UUID `gorm:"type:uuid;index"`
	IsActive bool       `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
