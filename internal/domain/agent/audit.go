package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// AuditEntry is an immutable record of one state-changing decision.
// Entries are created once and never mutated or deleted.
type AuditEntry struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	// UserID is nil for system-originated actions
	UserID     *uuid.UUID `gorm:"type:uuid"`
	EntityType string     `gorm:"type:varchar(100);not null;index"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	// Verb is the action taken, e.g. "action.confirmed", "order.created"
	Verb string `gorm:"type:varchar(100);not null"`
	// Payload is the serialized change detail
	Payload string `gorm:"type:text"`
	Source  string `gorm:"type:varchar(100)"`
	Reason  string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// NewAuditEntry creates an audit entry for a tenant-scoped decision.
func NewAuditEntry(tenantID uuid.UUID, userID *uuid.UUID, entityType string, entityID uuid.UUID, verb, payload string) (*AuditEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if entityType == "" || verb == "" {
		return nil, shared.NewDomainError("INVALID_AUDIT_ENTRY", "Entity type and verb are required")
	}
	return &AuditEntry{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Verb:       verb,
		Payload:    payload,
	}, nil
}

// WithSource attaches origin metadata to the entry.
func (e *AuditEntry) WithSource(source, reason string) *AuditEntry {
	e.Source = source
	e.Reason = reason
	return e
}

// AuditRepository is the append-only persistence port for audit entries.
// No read, update, or delete path is exposed; history is append-only
// by construction.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
}

// AuditLogger records audit entries best-effort: implementations must not
// block or fail the primary operation's outcome.
type AuditLogger interface {
	Record(ctx context.Context, entry *AuditEntry)
}
