// Package scope implements the store scope resolver: the mapping from an
// authenticated principal to the set of store identifiers it may act within.
// Every service read and mutation validates the target entity's store against
// the resolved scope; a mismatch is a Forbidden error, never a silent filter.
package scope

import (
	"paypilot/internal/apierror"
	"paypilot/internal/model"

	"github.com/google/uuid"
)

// Scope is the set of stores a principal may operate within: either all
// stores (superadmin) or exactly one.
type Scope struct {
	All     bool
	StoreID uuid.UUID
}

// Resolve yields the scope for a principal with the given role and store
// binding. Superadmin resolves to the all-stores scope regardless of binding;
// every other role must be bound to exactly one store.
func Resolve(role model.Role, storeID *uuid.UUID) (Scope, error) {
	if role == model.RoleSuperadmin {
		return Scope{All: true}, nil
	}
	if !role.Valid() || storeID == nil || *storeID == uuid.Nil {
		return Scope{}, apierror.ErrForbidden
	}
	return Scope{StoreID: *storeID}, nil
}

// Allows reports whether the scope covers the given store.
func (s Scope) Allows(storeID uuid.UUID) bool {
	return s.All || s.StoreID == storeID
}

// Check returns ErrForbidden when the scope does not cover the given store.
func (s Scope) Check(storeID uuid.UUID) error {
	if !s.Allows(storeID) {
		return apierror.ErrForbidden
	}
	return nil
}
