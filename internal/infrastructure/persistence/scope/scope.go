// Package scope provides tenant-scoped database access.
//
// A Scope binds a GORM connection to exactly one tenant context. Every
// repository built on a Scope applies an unconditional tenant_id filter to
// reads, updates and deletes, and stamps the tenant id on creates, so code
// using a repository cannot reach another tenant's rows regardless of the
// conditions it supplies.
//
// Usage:
//
//	s, err := scope.New(db, tctx)
//	customers, err := scope.NewRepository[partner.Customer](s, scope.KindCustomer)
//	all, err := customers.FindMany(ctx, "status = ?", "active")
package scope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var (
	// ErrTenantIDRequired is returned when a scope is constructed without a tenant
	ErrTenantIDRequired = errors.New("tenant_id is required to construct a scope")
	// ErrUnknownKind is returned for entity kinds outside the closed set
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrKindNotTenantOwned is returned when a tenant repository is requested
	// for a pass-through kind
	ErrKindNotTenantOwned = errors.New("entity kind is not tenant-owned")
	// ErrCrossTenantWrite is returned when an entity stamped with a different
	// tenant is handed to a scoped write
	ErrCrossTenantWrite = errors.New("entity belongs to a different tenant")
)

// Scope binds a database handle to one tenant context. A Scope is built per
// request and never shared across tenants.
type Scope struct {
	db   *gorm.DB
	tctx shared.TenantContext
}

// New constructs a Scope. It fails closed when the tenant context is invalid
// so that no unscoped handle can be obtained by accident.
func New(db *gorm.DB, tctx shared.TenantContext) (*Scope, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}
	if !tctx.Valid() {
		return nil, ErrTenantIDRequired
	}
	return &Scope{db: db, tctx: tctx}, nil
}

// TenantID returns the tenant this scope is bound to
func (s *Scope) TenantID() uuid.UUID {
	return s.tctx.TenantID()
}

// UserID returns the acting user
func (s *Scope) UserID() uuid.UUID {
	return s.tctx.UserID()
}

// Role returns the acting user's role
func (s *Scope) Role() shared.Role {
	return s.tctx.Role()
}

// BranchID returns the acting user's branch, if any
func (s *Scope) BranchID() *uuid.UUID {
	return s.tctx.BranchID()
}

// Context returns the tenant context the scope was built from
func (s *Scope) Context() shared.TenantContext {
	return s.tctx
}

// scoped returns a gorm handle with the tenant filter already applied
func (s *Scope) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("tenant_id = ?", s.tctx.TenantID())
}

// raw returns a gorm handle without the tenant filter. Only pass-through
// repositories in this package use it.
func (s *Scope) raw(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction with a Scope bound to it.
// The derived scope carries the same tenant context.
func (s *Scope) Transaction(ctx context.Context, fn func(tx *Scope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Scope{db: tx, tctx: s.tctx})
	})
}
