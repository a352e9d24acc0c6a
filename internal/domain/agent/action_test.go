package agent

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusProposed.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusExecuted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusTimedOut.IsTerminal())
}

func TestActionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ActionStatus
		to      ActionStatus
		allowed bool
	}{
		{"proposed to confirmed", StatusProposed, StatusConfirmed, true},
		{"proposed to cancelled", StatusProposed, StatusCancelled, true},
		{"proposed to executed", StatusProposed, StatusExecuted, true},
		{"proposed to failed", StatusProposed, StatusFailed, true},
		{"confirmed to executed", StatusConfirmed, StatusExecuted, true},
		{"confirmed to failed", StatusConfirmed, StatusFailed, true},
		{"confirmed to timed out", StatusConfirmed, StatusTimedOut, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, false},
		{"confirmed to proposed", StatusConfirmed, StatusProposed, false},
		{"executed is terminal", StatusExecuted, StatusFailed, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"failed is terminal", StatusFailed, StatusExecuted, false},
		{"timed out is terminal", StatusTimedOut, StatusExecuted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewProposedAction(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	conversationID := uuid.New()

	action, err := NewProposedAction(tenantID, userID, conversationID, "create_order", `{"customer_code":"C-1"}`, "key-1")
	require.NoError(t, err)

	assert.Equal(t, tenantID, action.TenantID)
	assert.Equal(t, userID, action.UserID)
	assert.Equal(t, StatusProposed, action.Status)
	assert.True(t, action.RequiresConfirmation())
	assert.Nil(t, action.ConfirmedAt)
	assert.Nil(t, action.ExecutedAt)
	assert.NotEqual(t, uuid.Nil, action.ID)
}

func TestNewProposedAction_Invalid(t *testing.T) {
	_, err := NewProposedAction(uuid.New(), uuid.New(), uuid.New(), "", "{}", "key")
	assert.Error(t, err)

	_, err = NewProposedAction(uuid.New(), uuid.New(), uuid.New(), "create_order", "{}", "")
	assert.Error(t, err)
}

func TestNewExecutedAction(t *testing.T) {
	result := `{"items":[]}`
	action, err := NewExecutedAction(uuid.New(), uuid.New(), uuid.New(), "list_orders", "{}", "key-2", StatusExecuted, &result, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusExecuted, action.Status)
	assert.False(t, action.RequiresConfirmation())
	require.NotNil(t, action.ConfirmedAt)
	require.NotNil(t, action.ExecutedAt)
	require.NotNil(t, action.Result)
	assert.Equal(t, result, *action.Result)
}

func TestNewExecutedAction_RejectsNonTerminalStatus(t *testing.T) {
	_, err := NewExecutedAction(uuid.New(), uuid.New(), uuid.New(), "list_orders", "{}", "key-3", StatusProposed, nil, nil)
	assert.Error(t, err)

	_, err = NewExecutedAction(uuid.New(), uuid.New(), uuid.New(), "list_orders", "{}", "key-3", StatusConfirmed, nil, nil)
	assert.Error(t, err)
}
