package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TenantEntity extends BaseEntity with the owning tenant.
// TenantID is stamped at creation and never reassigned afterwards.
// Models whose TenantID participates in a composite unique index declare
// TenantID directly on the struct instead of embedding TenantEntity.
type TenantEntity struct {
	BaseEntity
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// GetTenantID returns the owning tenant ID
func (e *TenantEntity) GetTenantID() uuid.UUID {
	return e.TenantID
}

// SetTenantID stamps the owning tenant ID
func (e *TenantEntity) SetTenantID(tenantID uuid.UUID) {
	e.TenantID = tenantID
}

// SetCreatedBy records the user that created the entity
func (e *TenantEntity) SetCreatedBy(userID *uuid.UUID) {
	e.CreatedBy = userID
}

// NewTenantEntity creates a new tenant-owned entity stamped with tenantID
func NewTenantEntity(tenantID uuid.UUID) TenantEntity {
	return TenantEntity{
		BaseEntity: NewBaseEntity(),
		TenantID:   tenantID,
	}
}
