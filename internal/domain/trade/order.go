package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/shared"
)

// OrderStatus represents the delivery order lifecycle
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a sales/delivery order for a customer.
// TenantID leads the unique order number index so numbers only collide within
// a tenant.
type Order struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_number,priority:1"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_tenant_number,priority:2"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID    *uuid.UUID      `gorm:"type:uuid;index"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'draft'"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `gorm:"type:text"`
	DeliveredAt *time.Time
	Lines       []OrderLine `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderLine is one item position on an order
type OrderLine struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"type:varchar(100);not null"`
	Name      string          `gorm:"type:varchar(200)"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// LineTotal returns quantity * unit price
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// NewOrder creates a draft order for a customer
func NewOrder(tenantID, customerID uuid.UUID, orderNumber string) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is required")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	return &Order{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Status:      OrderStatusDraft,
		TotalAmount: decimal.Zero,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (o *Order) GetTenantID() uuid.UUID {
	return o.TenantID
}

// SetTenantID stamps the owning tenant ID
func (o *Order) SetTenantID(tenantID uuid.UUID) {
	o.TenantID = tenantID
}

// SetCreatedBy records the user that created the order
func (o *Order) SetCreatedBy(userID *uuid.UUID) {
	o.CreatedBy = userID
}

// AddLine appends an item position and recalculates the total
func (o *Order) AddLine(sku, name string, quantity, unitPrice decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState
	}
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	line := OrderLine{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		SKU:        sku,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	o.Lines = append(o.Lines, line)
	o.recalculate()
	return nil
}

// Confirm moves a draft order to confirmed
func (o *Order) Confirm() error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order has no lines")
	}
	o.Status = OrderStatusConfirmed
	return nil
}

// MarkDelivered completes a confirmed order
func (o *Order) MarkDelivered() error {
	if o.Status != OrderStatusConfirmed {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &now
	return nil
}

// Cancel cancels an order that has not been delivered
func (o *Order) Cancel() error {
	if o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled {
		return shared.ErrInvalidState
	}
	o.Status = OrderStatusCancelled
	return nil
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.LineTotal())
	}
	o.TotalAmount = total
}
