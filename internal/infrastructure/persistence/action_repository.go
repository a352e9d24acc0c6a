package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/agent"
	"github.com/vansales/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ActionRepositoryImpl implements agent.ActionRepository using GORM.
// Rows in agent_actions are never deleted; the table doubles as the
// execution history for a conversation.
type ActionRepositoryImpl struct {
	db *gorm.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *gorm.DB) *ActionRepositoryImpl {
	return &ActionRepositoryImpl{db: db}
}

// Create inserts a new action record. The unique (tenant_id, idempotency_key)
// index turns concurrent duplicate proposals into shared.ErrAlreadyExists.
func (r *ActionRepositoryImpl) Create(ctx context.Context, action *agent.Action) error {
	err := r.db.WithContext(ctx).Create(action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create action: %w", err)
	}
	return nil
}

// FindByIDForTenant fetches one action within the tenant
func (r *ActionRepositoryImpl) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*agent.Action, error) {
	var action agent.Action
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find action: %w", err)
	}
	return &action, nil
}

// FindByIdempotencyKey fetches the action holding the given key within the tenant
func (r *ActionRepositoryImpl) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*agent.Action, error) {
	var action agent.Action
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find action by idempotency key: %w", err)
	}
	return &action, nil
}

// ListByConversation lists a conversation's actions, oldest first
func (r *ActionRepositoryImpl) ListByConversation(ctx context.Context, tenantID, conversationID uuid.UUID) ([]agent.Action, error) {
	var actions []agent.Action
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND conversation_id = ?", tenantID, conversationID).
		Order("created_at ASC").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}

// TransitionFromProposed moves an action out of PROPOSED with a single
// conditional UPDATE. Zero rows affected means the action either does not
// exist in this tenant or already left PROPOSED; the two cases are told apart
// with a follow-up read.
func (r *ActionRepositoryImpl) TransitionFromProposed(ctx context.Context, tenantID, id uuid.UUID, target agent.ActionStatus, decidedAt time.Time) error {
	if target != agent.StatusConfirmed && target != agent.StatusCancelled {
		return fmt.Errorf("invalid transition target %q from PROPOSED", target)
	}

	// confirmed_at records the decision time for both outcomes, so a
	// cancelled action keeps when it was decided.
	updates := map[string]any{
		"status":       target,
		"confirmed_at": decidedAt,
		"updated_at":   decidedAt,
	}

	res := r.db.WithContext(ctx).
		Model(&agent.Action{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, agent.StatusProposed).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition action: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByIDForTenant(ctx, tenantID, id); err != nil {
			return err
		}
		return agent.ErrActionConflict
	}
	return nil
}

// RecordOutcome persists the terminal result of a confirmed action
func (r *ActionRepositoryImpl) RecordOutcome(ctx context.Context, tenantID, id uuid.UUID, status agent.ActionStatus, result, errMessage *string, executedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}

	res := r.db.WithContext(ctx).
		Model(&agent.Action{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"status":        status,
			"result":        result,
			"error_message": errMessage,
			"executed_at":   executedAt,
			"updated_at":    executedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record action outcome: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ agent.ActionRepository = (*ActionRepositoryImpl)(nil)
