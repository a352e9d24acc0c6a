package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// PricingTier represents the customer's price tier
type PricingTier string

const (
	TierStandard  PricingTier = "standard"
	TierWholesale PricingTier = "wholesale"
	TierKeyPartner PricingTier = "key_partner"
)

// Customer represents a delivery customer (store, kiosk, outlet).
// TenantID leads the unique code index so codes only collide within a tenant.
type Customer struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_code,priority:1"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customers_tenant_code,priority:2"`
	Name        string          `gorm:"type:varchar(200);not null"`
	ContactName string          `gorm:"type:varchar(100)"`
	Phone       string          `gorm:"type:varchar(50);index"`
	Address     string          `gorm:"type:text"`
	Tier        PricingTier     `gorm:"type:varchar(20);not null;default:'standard'"`
	Status      CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		Tier:        TierStandard,
		Status:      CustomerStatusActive,
		CreditLimit: decimal.Zero,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (c *Customer) GetTenantID() uuid.UUID {
	return c.TenantID
}

// SetTenantID stamps the owning tenant ID
func (c *Customer) SetTenantID(tenantID uuid.UUID) {
	c.TenantID = tenantID
}

// SetCreatedBy records the user that created the customer
func (c *Customer) SetCreatedBy(userID *uuid.UUID) {
	c.CreatedBy = userID
}

// SetTier changes the customer's pricing tier
func (c *Customer) SetTier(tier PricingTier) error {
	switch tier {
	case TierStandard, TierWholesale, TierKeyPartner:
		c.Tier = tier
		return nil
	}
	return shared.NewDomainError("INVALID_TIER", "Unknown pricing tier: "+string(tier))
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
}
