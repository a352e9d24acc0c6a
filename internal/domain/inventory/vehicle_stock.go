package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/shared"
)

// VehicleStockItem represents the stock of one product loaded on one
// delivery vehicle. TenantID leads the unique (vehicle, SKU) index so stock
// rows only collide within a tenant.
type VehicleStockItem struct {
	shared.BaseEntity
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vehicle_stock_tenant_vehicle_sku,priority:1"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
	VehicleID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vehicle_stock_tenant_vehicle_sku,priority:2"`
	SKU       string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_vehicle_stock_tenant_vehicle_sku,priority:3"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (VehicleStockItem) TableName() string {
	return "vehicle_stock_items"
}

// NewVehicleStockItem creates a vehicle stock record
func NewVehicleStockItem(tenantID, vehicleID uuid.UUID, sku, name string, quantity decimal.Decimal) (*VehicleStockItem, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle ID is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return &VehicleStockItem{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		VehicleID:  vehicleID,
		SKU:        sku,
		Name:       name,
		Quantity:   quantity,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (v *VehicleStockItem) GetTenantID() uuid.UUID {
	return v.TenantID
}

// SetTenantID stamps the owning tenant ID
func (v *VehicleStockItem) SetTenantID(tenantID uuid.UUID) {
	v.TenantID = tenantID
}

// SetCreatedBy records the user that created the stock record
func (v *VehicleStockItem) SetCreatedBy(userID *uuid.UUID) {
	v.CreatedBy = userID
}

// Adjust applies a signed quantity delta, rejecting negative results
func (v *VehicleStockItem) Adjust(delta decimal.Decimal) error {
	next := v.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	v.Quantity = next
	return nil
}
