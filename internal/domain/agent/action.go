package agent

import (
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// ActionStatus is the lifecycle state of a dispatched capability invocation.
//
// Read-only capabilities: PROPOSED -> EXECUTED | FAILED (synchronously).
// Mutating capabilities:  PROPOSED -> CONFIRMED -> EXECUTED | FAILED | TIMED_OUT
//
//	PROPOSED -> CANCELLED
type ActionStatus string

const (
	StatusProposed  ActionStatus = "PROPOSED"
	StatusConfirmed ActionStatus = "CONFIRMED"
	StatusCancelled ActionStatus = "CANCELLED"
	StatusExecuted  ActionStatus = "EXECUTED"
	StatusFailed    ActionStatus = "FAILED"
	StatusTimedOut  ActionStatus = "TIMED_OUT"
)

// IsTerminal reports whether the status allows no further transitions.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case StatusExecuted, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to target is legal.
func (s ActionStatus) CanTransitionTo(target ActionStatus) bool {
	switch s {
	case StatusProposed:
		switch target {
		case StatusConfirmed, StatusCancelled, StatusExecuted, StatusFailed, StatusTimedOut:
			return true
		}
	case StatusConfirmed:
		switch target {
		case StatusExecuted, StatusFailed, StatusTimedOut:
			return true
		}
	}
	return false
}

// ErrActionConflict is returned when confirming or cancelling an action that
// is no longer PROPOSED. This is the exactly-once guarantee boundary.
var ErrActionConflict = shared.NewDomainError("ACTION_CONFLICT", "Action has already been decided")

// Action is the persisted record of one capability invocation and its
// confirmation/execution lifecycle. Actions are append-and-transition only;
// they are never deleted.
type Action struct {
	shared.BaseEntity
	TenantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_agent_actions_tenant_key,priority:1"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID `gorm:"type:uuid;not null"`
	CapabilityName string    `gorm:"type:varchar(100);not null"`
	// Arguments is the serialized argument object as proposed. Execution at
	// confirm time always uses this copy, never caller-resupplied arguments.
	Arguments      string       `gorm:"type:text;not null"`
	Result         *string      `gorm:"type:text"`
	ErrorMessage   *string      `gorm:"type:text"`
	IdempotencyKey string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_agent_actions_tenant_key,priority:2"`
	Status         ActionStatus `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt    *time.Time
	ExecutedAt     *time.Time
}

// TableName returns the table name for GORM
func (Action) TableName() string {
	return "agent_actions"
}

// NewProposedAction creates an action awaiting user confirmation.
func NewProposedAction(tenantID, userID, conversationID uuid.UUID, capability, arguments, idempotencyKey string) (*Action, error) {
	if capability == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Capability name cannot be empty")
	}
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Idempotency key cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	return &Action{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		UserID:         userID,
		CapabilityName: capability,
		Arguments:      arguments,
		IdempotencyKey: idempotencyKey,
		Status:         StatusProposed,
	}, nil
}

// NewExecutedAction creates a terminal record for a read-only capability that
// was executed immediately. status must be EXECUTED, FAILED or TIMED_OUT.
func NewExecutedAction(tenantID, userID, conversationID uuid.UUID, capability, arguments, idempotencyKey string, status ActionStatus, result, errMessage *string) (*Action, error) {
	if status != StatusExecuted && status != StatusFailed && status != StatusTimedOut {
		return nil, shared.NewDomainError("INVALID_ACTION", "Immediate action must end in a terminal status")
	}
	a, err := NewProposedAction(tenantID, userID, conversationID, capability, arguments, idempotencyKey)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.Status = status
	a.Result = result
	a.ErrorMessage = errMessage
	a.ConfirmedAt = &now
	a.ExecutedAt = &now
	return a, nil
}

// RequiresConfirmation reports whether the action is still awaiting a
// confirm/cancel decision.
func (a *Action) RequiresConfirmation() bool {
	return a.Status == StatusProposed
}
