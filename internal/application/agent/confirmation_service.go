package agent

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/agent"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/config"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrActionExpired is returned when a proposed action outlived its
// confirmation window. The action is cancelled as a side effect.
var ErrActionExpired = shared.NewDomainError("ACTION_EXPIRED", "Action is no longer confirmable")

// ConfirmationService decides the fate of proposed actions. The decision is a
// compare-and-swap in the action store, so concurrent confirm and cancel calls
// resolve to exactly one winner and execution happens at most once.
type ConfirmationService struct {
	db       *gorm.DB
	actions  agent.ActionRepository
	registry *agent.Registry
	executor *Executor
	audit    agent.AuditLogger
	cfg      config.AgentConfig
}

// NewConfirmationService creates a confirmation service.
func NewConfirmationService(
	db *gorm.DB,
	actions agent.ActionRepository,
	registry *agent.Registry,
	executor *Executor,
	audit agent.AuditLogger,
	cfg config.AgentConfig,
) *ConfirmationService {
	return &ConfirmationService{
		db:       db,
		actions:  actions,
		registry: registry,
		executor: executor,
		audit:    audit,
		cfg:      cfg,
	}
}

// Confirm wins the PROPOSED -> CONFIRMED transition and executes the action
// using the arguments stored at proposal time. Arguments supplied by the
// caller at confirm time are deliberately not accepted anywhere in this path.
//
// Returns agent.ErrActionConflict when the action was already decided and
// shared.ErrNotFound when it does not exist in the tenant.
func (s *ConfirmationService) Confirm(ctx context.Context, tctx shared.TenantContext, actionID uuid.UUID) (*ActionView, error) {
	action, err := s.actions.FindByIDForTenant(ctx, tctx.TenantID(), actionID)
	if err != nil {
		return nil, err
	}
	capability, err := s.registry.Authorize(action.CapabilityName, tctx.Role())
	if err != nil {
		return nil, err
	}

	if s.cfg.ConfirmTTL > 0 && time.Since(action.CreatedAt) > s.cfg.ConfirmTTL {
		// expire lazily: the first decision attempt past the window cancels
		if err := s.actions.TransitionFromProposed(ctx, tctx.TenantID(), actionID, agent.StatusCancelled, time.Now()); err != nil {
			return nil, err
		}
		s.auditDecision(ctx, tctx, actionID, "action.cancelled", "confirmation window expired")
		return nil, ErrActionExpired
	}

	if err := s.actions.TransitionFromProposed(ctx, tctx.TenantID(), actionID, agent.StatusConfirmed, time.Now()); err != nil {
		return nil, err
	}
	s.auditDecision(ctx, tctx, actionID, "action.confirmed", "")

	status, result, errMessage := s.execute(ctx, tctx, capability.Name, action.Arguments)
	if err := s.actions.RecordOutcome(ctx, tctx.TenantID(), actionID, status, result, errMessage, time.Now()); err != nil {
		return nil, err
	}
	s.auditDecision(ctx, tctx, actionID, "action."+verbFor(status), "")

	decided, err := s.actions.FindByIDForTenant(ctx, tctx.TenantID(), actionID)
	if err != nil {
		return nil, err
	}
	return newActionView(decided), nil
}

// Cancel wins the PROPOSED -> CANCELLED transition. A cancelled action is
// never executed.
func (s *ConfirmationService) Cancel(ctx context.Context, tctx shared.TenantContext, actionID uuid.UUID) (*ActionView, error) {
	if _, err := s.actions.FindByIDForTenant(ctx, tctx.TenantID(), actionID); err != nil {
		return nil, err
	}
	if err := s.actions.TransitionFromProposed(ctx, tctx.TenantID(), actionID, agent.StatusCancelled, time.Now()); err != nil {
		return nil, err
	}
	s.auditDecision(ctx, tctx, actionID, "action.cancelled", "user cancelled")

	cancelled, err := s.actions.FindByIDForTenant(ctx, tctx.TenantID(), actionID)
	if err != nil {
		return nil, err
	}
	return newActionView(cancelled), nil
}

// Get returns one action within the tenant.
func (s *ConfirmationService) Get(ctx context.Context, tctx shared.TenantContext, actionID uuid.UUID) (*ActionView, error) {
	action, err := s.actions.FindByIDForTenant(ctx, tctx.TenantID(), actionID)
	if err != nil {
		return nil, err
	}
	return newActionView(action), nil
}

// ListByConversation returns the conversation's actions in creation order.
func (s *ConfirmationService) ListByConversation(ctx context.Context, tctx shared.TenantContext, conversationID uuid.UUID) ([]ActionView, error) {
	actions, err := s.actions.ListByConversation(ctx, tctx.TenantID(), conversationID)
	if err != nil {
		return nil, err
	}
	views := make([]ActionView, 0, len(actions))
	for i := range actions {
		views = append(views, *newActionView(&actions[i]))
	}
	return views, nil
}

// execute runs the capability under the configured deadline using the stored
// argument snapshot.
func (s *ConfirmationService) execute(ctx context.Context, tctx shared.TenantContext, capability, storedArguments string) (agent.ActionStatus, *string, *string) {
	var args map[string]any
	if err := json.Unmarshal([]byte(storedArguments), &args); err != nil || args == nil {
		args = map[string]any{}
	}

	sc, err := scope.New(s.db, tctx)
	if err != nil {
		msg := err.Error()
		return agent.StatusFailed, nil, &msg
	}

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.ExecutionTimeout)
	defer cancel()

	payload, err := s.executor.Execute(execCtx, sc, capability, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			msg := "execution exceeded the configured timeout"
			return agent.StatusTimedOut, nil, &msg
		}
		msg := err.Error()
		return agent.StatusFailed, nil, &msg
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		msg := "failed to serialize execution result"
		return agent.StatusFailed, nil, &msg
	}
	result := string(raw)
	return agent.StatusExecuted, &result, nil
}

func (s *ConfirmationService) auditDecision(ctx context.Context, tctx shared.TenantContext, actionID uuid.UUID, verb, reason string) {
	if s.audit == nil {
		return
	}
	userID := tctx.UserID()
	entry, err := agent.NewAuditEntry(tctx.TenantID(), &userID, "agent_action", actionID, verb, "")
	if err != nil {
		logger.L(ctx).Warn("failed to build audit entry", zap.Error(err))
		return
	}
	s.audit.Record(ctx, entry.WithSource("agent", reason))
}

func verbFor(status agent.ActionStatus) string {
	switch status {
	case agent.StatusExecuted:
		return "executed"
	case agent.StatusTimedOut:
		return "timed_out"
	default:
		return "failed"
	}
}

