package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActionRepository is the persistence port for action records.
//
// Implementations must provide two guarantees the confirmation pipeline
// depends on:
//
//  1. Create enforces a unique (tenant_id, idempotency_key) constraint and
//     returns shared.ErrAlreadyExists on violation, so concurrent duplicate
//     proposals collapse onto the existing action.
//  2. TransitionFromProposed is an atomic conditional update
//     (status = PROPOSED AND id = ?), never a read-then-write, and returns
//     ErrActionConflict when the status already moved.
type ActionRepository interface {
	Create(ctx context.Context, action *Action) error

	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Action, error)

	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Action, error)

	ListByConversation(ctx context.Context, tenantID, conversationID uuid.UUID) ([]Action, error)

	// TransitionFromProposed moves the action out of PROPOSED via a
	// compare-and-swap on the current status. target must be CONFIRMED or
	// CANCELLED. Returns ErrActionConflict if the action already left
	// PROPOSED, shared.ErrNotFound if no such action exists in the tenant.
	TransitionFromProposed(ctx context.Context, tenantID, id uuid.UUID, target ActionStatus, decidedAt time.Time) error

	// RecordOutcome persists the terminal result of an executed action.
	RecordOutcome(ctx context.Context, tenantID, id uuid.UUID, status ActionStatus, result, errMessage *string, executedAt time.Time) error
}
