package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/shared"
)

func testCapabilities() []Capability {
	return []Capability{
		{
			Name:        "list_orders",
			Description: "List orders for the tenant",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{"type": "string"},
				},
			},
			AllowedRoles: []shared.Role{shared.RoleAdmin, shared.RoleManager, shared.RoleAgent},
		},
		{
			Name:        "create_order",
			Description: "Create a sales order",
			Parameters: map[string]any{
				"type":     "object",
				"required": []any{"customer_code"},
				"properties": map[string]any{
					"customer_code": map[string]any{"type": "string"},
				},
			},
			AllowedRoles: []shared.Role{shared.RoleAdmin, shared.RoleManager},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(testCapabilities(), []string{"list_orders"})
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	assert.True(t, registry.IsReadOnly("list_orders"))
	assert.False(t, registry.IsReadOnly("create_order"))
}

func TestNewRegistry_Invalid(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		caps := testCapabilities()
		caps = append(caps, caps[0])
		_, err := NewRegistry(caps, nil)
		assert.Error(t, err)
	})

	t.Run("read-only list references unknown capability", func(t *testing.T) {
		_, err := NewRegistry(testCapabilities(), []string{"drop_database"})
		assert.Error(t, err)
	})

	t.Run("no allowed roles", func(t *testing.T) {
		_, err := NewRegistry([]Capability{{Name: "orphan"}}, nil)
		assert.Error(t, err)
	})
}

func TestRegistry_Authorize(t *testing.T) {
	registry, err := NewRegistry(testCapabilities(), []string{"list_orders"})
	require.NoError(t, err)

	t.Run("permitted role", func(t *testing.T) {
		c, err := registry.Authorize("create_order", shared.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, "create_order", c.Name)
	})

	t.Run("denied role", func(t *testing.T) {
		_, err := registry.Authorize("create_order", shared.RoleDriver)
		assert.ErrorIs(t, err, ErrRoleDenied)
	})

	t.Run("unknown capability is distinguishable from denial", func(t *testing.T) {
		_, err := registry.Authorize("no_such_capability", shared.RoleAdmin)
		assert.ErrorIs(t, err, ErrUnknownCapability)
		assert.NotErrorIs(t, err, ErrRoleDenied)
	})
}

func TestRegistry_ValidateArguments(t *testing.T) {
	registry, err := NewRegistry(testCapabilities(), []string{"list_orders"})
	require.NoError(t, err)

	t.Run("valid arguments", func(t *testing.T) {
		err := registry.ValidateArguments("create_order", map[string]any{"customer_code": "C-1"})
		assert.NoError(t, err)
	})

	t.Run("missing required argument", func(t *testing.T) {
		err := registry.ValidateArguments("create_order", map[string]any{})
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := registry.ValidateArguments("create_order", map[string]any{"customer_code": 42})
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})
}

func TestRegistry_Catalog(t *testing.T) {
	registry, err := NewRegistry(testCapabilities(), []string{"list_orders"})
	require.NoError(t, err)

	catalog := registry.Catalog()
	assert.Len(t, catalog, 2)

	byName := make(map[string]CapabilityView, len(catalog))
	for _, v := range catalog {
		byName[v.Name] = v
	}
	assert.True(t, byName["list_orders"].ReadOnly)
	assert.False(t, byName["create_order"].ReadOnly)
	assert.NotEmpty(t, byName["create_order"].ParameterSchema)
}
