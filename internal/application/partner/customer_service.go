package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
	"gorm.io/gorm"
)

// CustomerService handles customer-related business operations.
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// CreateCustomerRequest carries the fields for a new customer.
type CreateCustomerRequest struct {
	Code        string           `json:"code" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	ContactName string           `json:"contactName"`
	Phone       string           `json:"phone"`
	Address     string           `json:"address"`
	Tier        string           `json:"tier" binding:"omitempty,oneof=standard wholesale key_partner"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
	Notes       string           `json:"notes"`
}

// UpdateCustomerRequest carries partial updates; nil fields stay unchanged.
type UpdateCustomerRequest struct {
	Name        *string          `json:"name"`
	ContactName *string          `json:"contactName"`
	Phone       *string          `json:"phone"`
	Address     *string          `json:"address"`
	Tier        *string          `json:"tier" binding:"omitempty,oneof=standard wholesale key_partner"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
	Notes       *string          `json:"notes"`
}

// CustomerResponse is the external representation of a customer.
type CustomerResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	ContactName string          `json:"contactName"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	Tier        string          `json:"tier"`
	Status      string          `json:"status"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Notes       string          `json:"notes"`
}

// CustomerListFilter narrows and pages the customer list.
type CustomerListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Tier     string `form:"tier" binding:"omitempty,oneof=standard wholesale key_partner"`
}

func toCustomerResponse(c *partner.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Address:     c.Address,
		Tier:        string(c.Tier),
		Status:      string(c.Status),
		CreditLimit: c.CreditLimit,
		Notes:       c.Notes,
	}
}

func (s *CustomerService) repo(tctx shared.TenantContext) (*scope.Repository[partner.Customer], error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	return scope.NewRepository[partner.Customer](sc, scope.KindCustomer)
}

// Create creates a new customer.
func (s *CustomerService) Create(ctx context.Context, tctx shared.TenantContext, req CreateCustomerRequest) (*CustomerResponse, error) {
	repo, err := s.repo(tctx)
	if err != nil {
		return nil, err
	}

	customer, err := partner.NewCustomer(tctx.TenantID(), req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	count, err := repo.Count(ctx, "code = ?", customer.Code)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer.ContactName = req.ContactName
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.Notes = req.Notes
	if req.Tier != "" {
		if err := customer.SetTier(partner.PricingTier(req.Tier)); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
		}
		customer.CreditLimit = *req.CreditLimit
	}

	if err := repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID retrieves a customer by ID.
func (s *CustomerService) GetByID(ctx context.Context, tctx shared.TenantContext, customerID uuid.UUID) (*CustomerResponse, error) {
	repo, err := s.repo(tctx)
	if err != nil {
		return nil, err
	}
	customer, err := repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// List retrieves customers with filtering and pagination.
func (s *CustomerService) List(ctx context.Context, tctx shared.TenantContext, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	repo, err := s.repo(tctx)
	if err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Tier != "" {
		domainFilter.Filters["tier"] = filter.Tier
	}

	var conds []any
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = []any{"name LIKE ? OR code LIKE ?", pattern, pattern}
	}

	customers, err := repo.FindMany(ctx, domainFilter, conds...)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.Count(ctx, conds...)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, *toCustomerResponse(&customers[i]))
	}
	return responses, total, nil
}

// Update applies partial changes to a customer.
func (s *CustomerService) Update(ctx context.Context, tctx shared.TenantContext, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	repo, err := s.repo(tctx)
	if err != nil {
		return nil, err
	}
	customer, err := repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.ContactName != nil {
		customer.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.Tier != nil {
		if err := customer.SetTier(partner.PricingTier(*req.Tier)); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
		}
		customer.CreditLimit = *req.CreditLimit
	}

	if err := repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Deactivate marks a customer inactive. Existing orders are unaffected.
func (s *CustomerService) Deactivate(ctx context.Context, tctx shared.TenantContext, customerID uuid.UUID) error {
	repo, err := s.repo(tctx)
	if err != nil {
		return err
	}
	customer, err := repo.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	customer.Deactivate()
	return repo.Update(ctx, customer)
}
