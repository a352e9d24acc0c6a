package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// Branch represents a distribution branch (depot) of a tenant.
// TenantID leads the unique code index so codes only collide within a tenant.
type Branch struct {
	shared.BaseEntity
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_branches_tenant_code,priority:1"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	Code      string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_branches_tenant_code,priority:2"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Address   string     `gorm:"type:text"`
	Phone     string     `gorm:"type:varchar(50)"`
	Active    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new active branch
func NewBranch(tenantID uuid.UUID, code, name string) (*Branch, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_CODE", "Branch code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	return &Branch{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       code,
		Name:       name,
		Active:     true,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (b *Branch) GetTenantID() uuid.UUID {
	return b.TenantID
}

// SetTenantID stamps the owning tenant ID
func (b *Branch) SetTenantID(tenantID uuid.UUID) {
	b.TenantID = tenantID
}

// SetCreatedBy records the user that created the branch
func (b *Branch) SetCreatedBy(userID *uuid.UUID) {
	b.CreatedBy = userID
}
