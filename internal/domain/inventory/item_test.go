package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/shared"
)

func TestNewInventoryItem(t *testing.T) {
	tenantID := uuid.New()
	item, err := NewInventoryItem(tenantID, uuid.New(), "sku-1", "Bottled Water 1.5L", decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, tenantID, item.TenantID)
	assert.Equal(t, "SKU-1", item.SKU)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(100)))
}

func TestNewInventoryItem_Invalid(t *testing.T) {
	_, err := NewInventoryItem(uuid.New(), uuid.New(), "", "x", decimal.Zero)
	assert.Error(t, err)

	_, err = NewInventoryItem(uuid.New(), uuid.Nil, "SKU-1", "x", decimal.Zero)
	assert.Error(t, err)

	_, err = NewInventoryItem(uuid.New(), uuid.New(), "SKU-1", "x", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestInventoryItem_Adjust(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), "SKU-1", "x", decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, item.Adjust(decimal.NewFromInt(-4)))
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(6)))

	err = item.Adjust(decimal.NewFromInt(-7))
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(6)))
}

func TestInventoryItem_BelowReorderLevel(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), "SKU-1", "x", decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.False(t, item.BelowReorderLevel())

	item.ReorderLevel = decimal.NewFromInt(10)
	assert.True(t, item.BelowReorderLevel())
}
