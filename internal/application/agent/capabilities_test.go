package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/shared"
)

func TestBuildRegistry(t *testing.T) {
	registry, err := BuildRegistry()
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCapabilities()), registry.Len())

	for _, name := range ReadOnlyCapabilities() {
		assert.True(t, registry.IsReadOnly(name), "%s should be read-only", name)
	}
	for _, name := range []string{CapCreateOrder, CapAdjustInventory, CapPullStock} {
		assert.False(t, registry.IsReadOnly(name), "%s must require confirmation", name)
	}
}

func TestExecutorCoversEveryCapability(t *testing.T) {
	executor := NewExecutor()
	for _, c := range DefaultCapabilities() {
		assert.True(t, executor.Supports(c.Name), "no handler for %s", c.Name)
	}
}

func TestRegistryAuthorization(t *testing.T) {
	registry, err := BuildRegistry()
	require.NoError(t, err)

	_, err = registry.Authorize(CapAdjustInventory, shared.RoleManager)
	assert.NoError(t, err)

	_, err = registry.Authorize(CapAdjustInventory, shared.RoleDriver)
	assert.Error(t, err)

	_, err = registry.Authorize(CapPullStock, shared.RoleDriver)
	assert.NoError(t, err)
}

func TestArgumentSchemas(t *testing.T) {
	registry, err := BuildRegistry()
	require.NoError(t, err)

	tests := []struct {
		name    string
		cap     string
		args    map[string]any
		wantErr bool
	}{
		{"list customers empty args", CapListCustomers, map[string]any{}, false},
		{"list customers bad status", CapListCustomers, map[string]any{"status": "pending"}, true},
		{"unknown key rejected", CapListCustomers, map[string]any{"tenantId": "x"}, true},
		{"vehicle stock requires vehicle", CapGetVehicleStock, map[string]any{}, true},
		{"adjust requires delta", CapAdjustInventory, map[string]any{"sku": "SKU-1"}, true},
		{"pull stock valid", CapPullStock, map[string]any{
			"vehicleId": "0b8e9c7e-24a2-4c8f-a3f4-94be5a0f1a10", "sku": "SKU-1", "quantity": 5,
		}, false},
		{"pull stock zero quantity", CapPullStock, map[string]any{
			"vehicleId": "0b8e9c7e-24a2-4c8f-a3f4-94be5a0f1a10", "sku": "SKU-1", "quantity": 0,
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.ValidateArguments(tt.cap, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
