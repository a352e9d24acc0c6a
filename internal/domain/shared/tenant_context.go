package shared

import (
	"github.com/google/uuid"
)

// Role identifies the access level of the acting user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
	RoleAgent   Role = "agent"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDriver, RoleAgent:
		return true
	}
	return false
}

// TenantContext is the immutable per-request scoping value. It is built once
// from the authenticated session and passed explicitly to every downstream
// call; there is no ambient or global tenant state.
type TenantContext struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	role     Role
	branchID *uuid.UUID
}

// NewTenantContext constructs a TenantContext. It fails closed: without a
// tenant id no scoped repository can be created and no capability dispatched.
func NewTenantContext(tenantID, userID uuid.UUID, role Role, branchID *uuid.UUID) (TenantContext, error) {
	if tenantID == uuid.Nil {
		return TenantContext{}, ErrTenantRequired
	}
	if userID == uuid.Nil {
		return TenantContext{}, NewDomainError("CONFIGURATION_ERROR", "User ID is required")
	}
	if !role.IsValid() {
		return TenantContext{}, NewDomainError("CONFIGURATION_ERROR", "Unknown role: "+string(role))
	}
	return TenantContext{
		tenantID: tenantID,
		userID:   userID,
		role:     role,
		branchID: branchID,
	}, nil
}

// TenantID returns the tenant the request is scoped to. Never uuid.Nil.
func (t TenantContext) TenantID() uuid.UUID {
	return t.tenantID
}

// UserID returns the acting user.
func (t TenantContext) UserID() uuid.UUID {
	return t.userID
}

// Role returns the acting user's role.
func (t TenantContext) Role() Role {
	return t.role
}

// BranchID returns the optional branch the user operates from.
func (t TenantContext) BranchID() *uuid.UUID {
	return t.branchID
}

// Valid reports whether the context was built through NewTenantContext.
func (t TenantContext) Valid() bool {
	return t.tenantID != uuid.Nil && t.userID != uuid.Nil
}
