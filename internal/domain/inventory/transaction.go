package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/shared"
)

// TransactionType classifies a stock movement
type TransactionType string

const (
	TransactionLoad       TransactionType = "load"       // branch -> vehicle
	TransactionUnload     TransactionType = "unload"     // vehicle -> branch
	TransactionSale       TransactionType = "sale"       // vehicle -> customer
	TransactionAdjustment TransactionType = "adjustment" // manual correction
)

// IsValid reports whether the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionLoad, TransactionUnload, TransactionSale, TransactionAdjustment:
		return true
	}
	return false
}

// InventoryTransaction is one immutable entry in the stock movement ledger
type InventoryTransaction struct {
	shared.TenantEntity
	Type      TransactionType `gorm:"type:varchar(20);not null;index"`
	SKU       string          `gorm:"type:varchar(100);not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BranchID  *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID *uuid.UUID      `gorm:"type:uuid;index"`
	OrderID   *uuid.UUID      `gorm:"type:uuid;index"`
	Reference string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction records a stock movement
func NewInventoryTransaction(tenantID uuid.UUID, txType TransactionType, sku string, quantity decimal.Decimal) (*InventoryTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown transaction type: "+string(txType))
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	return &InventoryTransaction{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Type:         txType,
		SKU:          sku,
		Quantity:     quantity,
	}, nil
}
