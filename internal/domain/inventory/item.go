package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/shared"
)

// InventoryItem represents the stock of one product at one branch.
// TenantID leads the unique (branch, SKU) index so stock rows only collide
// within a tenant.
type InventoryItem struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_tenant_branch_sku,priority:1"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_tenant_branch_sku,priority:2"`
	SKU          string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_tenant_branch_sku,priority:3"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a branch stock record for a product
func NewInventoryItem(tenantID, branchID uuid.UUID, sku, name string, quantity decimal.Decimal) (*InventoryItem, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return &InventoryItem{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		BranchID:   branchID,
		SKU:        sku,
		Name:       name,
		Quantity:   quantity,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (i *InventoryItem) GetTenantID() uuid.UUID {
	return i.TenantID
}

// SetTenantID stamps the owning tenant ID
func (i *InventoryItem) SetTenantID(tenantID uuid.UUID) {
	i.TenantID = tenantID
}

// SetCreatedBy records the user that created the stock record
func (i *InventoryItem) SetCreatedBy(userID *uuid.UUID) {
	i.CreatedBy = userID
}

// Adjust applies a signed quantity delta. The resulting quantity must not go
// negative.
func (i *InventoryItem) Adjust(delta decimal.Decimal) error {
	next := i.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	i.Quantity = next
	return nil
}

// BelowReorderLevel reports whether the stock dropped under its threshold
func (i *InventoryItem) BelowReorderLevel() bool {
	return i.ReorderLevel.IsPositive() && i.Quantity.LessThan(i.ReorderLevel)
}
