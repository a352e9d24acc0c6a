package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User represents an account within a tenant.
// TenantID leads the unique username index so usernames only collide within
// a tenant.
type User struct {
	shared.BaseEntity
	TenantID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_username,priority:1"`
	CreatedBy    *uuid.UUID  `gorm:"type:uuid"`
	Username     string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_users_tenant_username,priority:2"`
	DisplayName  string      `gorm:"type:varchar(200)"`
	Email        string      `gorm:"type:varchar(200);index"`
	PasswordHash string      `gorm:"type:varchar(255);not null"`
	Role         shared.Role `gorm:"type:varchar(20);not null;default:'driver'"`
	Status       UserStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	BranchID     *uuid.UUID  `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user within a tenant
func NewUser(tenantID uuid.UUID, username, passwordHash string, role shared.Role) (*User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		Username:     username,
		Role:         role,
		PasswordHash: passwordHash,
		Status:       UserStatusActive,
	}, nil
}

// GetTenantID returns the owning tenant ID
func (u *User) GetTenantID() uuid.UUID {
	return u.TenantID
}

// SetTenantID stamps the owning tenant ID
func (u *User) SetTenantID(tenantID uuid.UUID) {
	u.TenantID = tenantID
}

// SetCreatedBy records the user that created this account
func (u *User) SetCreatedBy(userID *uuid.UUID) {
	u.CreatedBy = userID
}

// AssignBranch attaches the user to a branch
func (u *User) AssignBranch(branchID uuid.UUID) {
	u.BranchID = &branchID
}

// Disable marks the user account as disabled
func (u *User) Disable() {
	u.Status = UserStatusDisabled
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
