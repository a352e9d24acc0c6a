// Package agent implements the capability dispatch and confirmation pipeline.
// An AI agent proposes tool calls; read-only capabilities execute immediately,
// mutating capabilities become PROPOSED actions that a human confirms or
// cancels. Every dispatched call is recorded as an action, and each confirmed
// action executes exactly once.
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

// ToolCall is one capability invocation as proposed by the model.
type ToolCall struct {
	Name string `json:"name" binding:"required"`
	// Arguments is the raw JSON argument object. Malformed JSON degrades to
	// an empty argument object rather than failing the whole dispatch.
	Arguments string `json:"arguments"`
}

// DispatchRequest carries one batch of tool calls within a conversation.
type DispatchRequest struct {
	ConversationID uuid.UUID  `json:"conversationId" binding:"required"`
	ToolCalls      []ToolCall `json:"toolCalls" binding:"required,min=1"`
}

// ActionView is the external representation of an action record.
type ActionView struct {
	ID                   uuid.UUID  `json:"id"`
	ConversationID       uuid.UUID  `json:"conversationId"`
	Capability           string     `json:"capability"`
	Arguments            string     `json:"arguments"`
	Status               string     `json:"status"`
	RequiresConfirmation bool       `json:"requiresConfirmation"`
	Result               *string    `json:"result,omitempty"`
	ErrorMessage         *string    `json:"errorMessage,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	ConfirmedAt          *time.Time `json:"confirmedAt,omitempty"`
	ExecutedAt           *time.Time `json:"executedAt,omitempty"`
}

// DispatchResult is the outcome of one dispatch batch: actions that ran to a
// terminal state immediately, and actions stored as PROPOSED awaiting a
// confirmation decision. Unknown capability names are dropped and counted,
// never recorded as actions.
type DispatchResult struct {
	ExecutedActions []ActionView `json:"executedActions"`
	ProposedActions []ActionView `json:"proposedActions"`
	Skipped         int          `json:"skipped"`
}

// DispatchService turns tool calls into action records. It is safe for
// concurrent use; all per-request state lives in the tenant scope.
type DispatchService struct {
	db       *gorm.DB
	actions  agent.ActionRepository
	registry *agent.Registry
	executor *Executor
	dedupe   shared.IdempotencyStore
	audit    agent.AuditLogger
	cfg      config.AgentConfig
}

// NewDispatchService creates a dispatch service. dedupe may be nil; the
// durable unique index on (tenant_id, idempotency_key) is the correctness
// backstop, the store is only a fast path.
func NewDispatchService(
	db *gorm.DB,
	actions agent.ActionRepository,
	registry *agent.Registry,
	executor *Executor,
	dedupe shared.IdempotencyStore,
	audit agent.AuditLogger,
	cfg config.AgentConfig,
) *DispatchService {
	return &DispatchService{
		db:       db,
		actions:  actions,
		registry: registry,
		executor: executor,
		dedupe:   dedupe,
		audit:    audit,
		cfg:      cfg,
	}
}

// Dispatch processes a batch of tool calls for one conversation. Each call
// independently becomes an action record (or is skipped when the capability
// name is unknown); one bad call never fails the batch.
func (s *DispatchService) Dispatch(ctx context.Context, tctx shared.TenantContext, req DispatchRequest) (*DispatchResult, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{
		ExecutedActions: make([]ActionView, 0, len(req.ToolCalls)),
		ProposedActions: make([]ActionView, 0, len(req.ToolCalls)),
	}
	for _, call := range req.ToolCalls {
		capability, err := s.registry.Resolve(call.Name)
		if errors.Is(err, agent.ErrUnknownCapability) {
			result.Skipped++
			logger.L(ctx).Warn("dropping unknown capability",
				zap.String("capability", call.Name),
				zap.String("conversation_id", req.ConversationID.String()))
			continue
		}
		if err != nil {
			return nil, err
		}

		view, err := s.dispatchOne(ctx, sc, tctx, req.ConversationID, capability, call)
		if err != nil {
			return nil, err
		}
		if view.Status == string(agent.StatusProposed) {
			result.ProposedActions = append(result.ProposedActions, *view)
		} else {
			result.ExecutedActions = append(result.ExecutedActions, *view)
		}
	}
	return result, nil
}

func (s *DispatchService) dispatchOne(ctx context.Context, sc *scope.Scope, tctx shared.TenantContext, conversationID uuid.UUID, capability agent.Capability, call ToolCall) (*ActionView, error) {
	args := parseArguments(ctx, call)
	canonical, _ := json.Marshal(args)
	key := agent.DeriveIdempotencyKey(tctx.UserID(), capability.Name, args)

	// fast path: a key already marked means the action record exists
	if s.dedupe != nil {
		if seen, err := s.dedupe.IsProcessed(ctx, tctx.TenantID().String()+":"+key); err == nil && seen {
			if existing, err := s.actions.FindByIdempotencyKey(ctx, tctx.TenantID(), key); err == nil {
				return newActionView(existing), nil
			}
		}
	}

	if !capability.PermitsRole(tctx.Role()) {
		return s.recordRejected(ctx, tctx, conversationID, capability.Name, string(canonical), key,
			"Role "+string(tctx.Role())+" is not allowed to invoke "+capability.Name)
	}
	if err := s.registry.ValidateArguments(capability.Name, args); err != nil {
		if errors.Is(err, agent.ErrInvalidArguments) {
			return s.recordRejected(ctx, tctx, conversationID, capability.Name, string(canonical), key,
				"Arguments do not match the parameter schema for "+capability.Name)
		}
		return nil, err
	}

	if s.registry.IsReadOnly(capability.Name) {
		return s.executeImmediately(ctx, sc, tctx, conversationID, capability.Name, args, string(canonical), key)
	}
	return s.propose(ctx, tctx, conversationID, capability.Name, string(canonical), key)
}

// propose stores a PROPOSED action awaiting confirmation. A duplicate
// idempotency key collapses onto the existing action.
func (s *DispatchService) propose(ctx context.Context, tctx shared.TenantContext, conversationID uuid.UUID, capability, arguments, key string) (*ActionView, error) {
	action, err := agent.NewProposedAction(tctx.TenantID(), tctx.UserID(), conversationID, capability, arguments, key)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, tctx, action); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.actions.FindByIdempotencyKey(ctx, tctx.TenantID(), key)
			if findErr != nil {
				return nil, findErr
			}
			return newActionView(existing), nil
		}
		return nil, err
	}

	s.auditAction(ctx, tctx, action, "action.proposed", "")
	return newActionView(action), nil
}

// executeImmediately runs a read-only capability synchronously and stores a
// terminal record of the outcome.
func (s *DispatchService) executeImmediately(ctx context.Context, sc *scope.Scope, tctx shared.TenantContext, conversationID uuid.UUID, capability string, args map[string]any, arguments, key string) (*ActionView, error) {
	status, result, errMessage := s.run(ctx, sc, capability, args)

	action, err := agent.NewExecutedAction(tctx.TenantID(), tctx.UserID(), conversationID, capability, arguments, key, status, result, errMessage)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, tctx, action); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.actions.FindByIdempotencyKey(ctx, tctx.TenantID(), key)
			if findErr != nil {
				return nil, findErr
			}
			return newActionView(existing), nil
		}
		return nil, err
	}

	s.auditAction(ctx, tctx, action, "action.executed", "")
	return newActionView(action), nil
}

// recordRejected stores a FAILED terminal record so denials stay visible in
// the conversation history.
func (s *DispatchService) recordRejected(ctx context.Context, tctx shared.TenantContext, conversationID uuid.UUID, capability, arguments, key, reason string) (*ActionView, error) {
	action, err := agent.NewExecutedAction(tctx.TenantID(), tctx.UserID(), conversationID, capability, arguments, key, agent.StatusFailed, nil, &reason)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, tctx, action); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.actions.FindByIdempotencyKey(ctx, tctx.TenantID(), key)
			if findErr != nil {
				return nil, findErr
			}
			return newActionView(existing), nil
		}
		return nil, err
	}
	s.auditAction(ctx, tctx, action, "action.rejected", reason)
	return newActionView(action), nil
}

// run executes a capability under the configured deadline and maps the
// outcome to a terminal status.
func (s *DispatchService) run(ctx context.Context, sc *scope.Scope, capability string, args map[string]any) (agent.ActionStatus, *string, *string) {
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

func (s *DispatchService) create(ctx context.Context, tctx shared.TenantContext, action *agent.Action) error {
	if err := s.actions.Create(ctx, action); err != nil {
		return err
	}
	if s.dedupe != nil {
		if _, err := s.dedupe.MarkProcessed(ctx, tctx.TenantID().String()+":"+action.IdempotencyKey, s.cfg.DedupTTL); err != nil {
			logger.L(ctx).Warn("failed to mark idempotency key", zap.Error(err))
		}
	}
	return nil
}

func (s *DispatchService) auditAction(ctx context.Context, tctx shared.TenantContext, action *agent.Action, verb, reason string) {
	if s.audit == nil {
		return
	}
	userID := tctx.UserID()
	payload, _ := json.Marshal(map[string]any{
		"capability": action.CapabilityName,
		"status":     action.Status,
	})
	entry, err := agent.NewAuditEntry(tctx.TenantID(), &userID, "agent_action", action.ID, verb, string(payload))
	if err != nil {
		return
	}
	s.audit.Record(ctx, entry.WithSource("agent", reason))
}

func newActionView(action *agent.Action) *ActionView {
	return &ActionView{
		ID:                   action.ID,
		ConversationID:       action.ConversationID,
		Capability:           action.CapabilityName,
		Arguments:            action.Arguments,
		Status:               string(action.Status),
		RequiresConfirmation: action.RequiresConfirmation(),
		Result:               action.Result,
		ErrorMessage:         action.ErrorMessage,
		CreatedAt:            action.CreatedAt,
		ConfirmedAt:          action.ConfirmedAt,
		ExecutedAt:           action.ExecutedAt,
	}
}

// parseArguments decodes the raw argument JSON. Anything that is not a JSON
// object degrades to an empty argument map; schema validation then decides
// whether empty arguments are acceptable for the capability.
func parseArguments(ctx context.Context, call ToolCall) map[string]any {
	if call.Arguments == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args == nil {
		logger.L(ctx).Warn("malformed tool call arguments, using empty object",
			zap.String("capability", call.Name))
		return map[string]any{}
	}
	return args
}
