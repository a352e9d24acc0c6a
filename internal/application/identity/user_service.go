package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/identity"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
	"gorm.io/gorm"
)

// UserService manages user accounts and branches within a tenant.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUserRequest carries the fields for a new account.
type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required"`
	Password    string     `json:"password" binding:"required,min=8"`
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Role        string     `json:"role" binding:"required,oneof=admin manager driver agent"`
	BranchID    *uuid.UUID `json:"branchId"`
}

// UserResponse is the external representation of a user account.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	BranchID    *uuid.UUID `json:"branchId,omitempty"`
}

func toUserResponse(u *identity.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        string(u.Role),
		Status:      string(u.Status),
		BranchID:    u.BranchID,
	}
}

// CreateUser creates an account in the acting user's tenant. Admin only.
func (s *UserService) CreateUser(ctx context.Context, tctx shared.TenantContext, req CreateUserRequest) (*UserResponse, error) {
	if tctx.Role() != shared.RoleAdmin {
		return nil, shared.ErrForbidden
	}
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	users, err := scope.NewRepository[identity.User](sc, scope.KindUser)
	if err != nil {
		return nil, err
	}

	count, err := users.Count(ctx, "username = ?", strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(tctx.TenantID(), req.Username, hash, shared.Role(req.Role))
	if err != nil {
		return nil, err
	}
	user.DisplayName = req.DisplayName
	user.Email = req.Email
	if req.BranchID != nil {
		user.AssignBranch(*req.BranchID)
	}

	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// GetUser returns one account within the tenant.
func (s *UserService) GetUser(ctx context.Context, tctx shared.TenantContext, userID uuid.UUID) (*UserResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	users, err := scope.NewRepository[identity.User](sc, scope.KindUser)
	if err != nil {
		return nil, err
	}
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ListUsers lists the tenant's accounts.
func (s *UserService) ListUsers(ctx context.Context, tctx shared.TenantContext, filter shared.Filter) ([]UserResponse, int64, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := scope.NewRepository[identity.User](sc, scope.KindUser)
	if err != nil {
		return nil, 0, err
	}

	list, err := users.FindMany(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *toUserResponse(&list[i]))
	}
	return responses, total, nil
}

// DisableUser marks an account as disabled. Admin only.
func (s *UserService) DisableUser(ctx context.Context, tctx shared.TenantContext, userID uuid.UUID) error {
	if tctx.Role() != shared.RoleAdmin {
		return shared.ErrForbidden
	}
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return err
	}
	users, err := scope.NewRepository[identity.User](sc, scope.KindUser)
	if err != nil {
		return err
	}
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Disable()
	return users.Update(ctx, user)
}

// CreateBranchRequest carries the fields for a new branch.
type CreateBranchRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// BranchResponse is the external representation of a branch.
type BranchResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Active  bool      `json:"active"`
}

func toBranchResponse(b *identity.Branch) *BranchResponse {
	return &BranchResponse{
		ID:      b.ID,
		Code:    b.Code,
		Name:    b.Name,
		Address: b.Address,
		Phone:   b.Phone,
		Active:  b.Active,
	}
}

// CreateBranch creates a branch in the acting user's tenant. Admin only.
func (s *UserService) CreateBranch(ctx context.Context, tctx shared.TenantContext, req CreateBranchRequest) (*BranchResponse, error) {
	if tctx.Role() != shared.RoleAdmin {
		return nil, shared.ErrForbidden
	}
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	branches, err := scope.NewRepository[identity.Branch](sc, scope.KindBranch)
	if err != nil {
		return nil, err
	}

	branch, err := identity.NewBranch(tctx.TenantID(), req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	count, err := branches.Count(ctx, "code = ?", branch.Code)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch with this code already exists")
	}
	branch.Address = req.Address
	branch.Phone = req.Phone

	if err := branches.Create(ctx, branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// ListBranches lists the tenant's branches.
func (s *UserService) ListBranches(ctx context.Context, tctx shared.TenantContext, filter shared.Filter) ([]BranchResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	branches, err := scope.NewRepository[identity.Branch](sc, scope.KindBranch)
	if err != nil {
		return nil, err
	}
	list, err := branches.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]BranchResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *toBranchResponse(&list[i]))
	}
	return responses, nil
}
