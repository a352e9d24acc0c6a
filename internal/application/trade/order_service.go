package trade

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/domain/trade"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
	"gorm.io/gorm"
)

// OrderService handles order lifecycle operations.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// OrderLineRequest is one item position on a new order.
type OrderLineRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateOrderRequest carries the fields for a new order.
type CreateOrderRequest struct {
	CustomerID uuid.UUID          `json:"customerId" binding:"required"`
	Lines      []OrderLineRequest `json:"lines" binding:"required,min=1"`
	Notes      string             `json:"notes"`
}

// OrderLineResponse is one item position on an order.
type OrderLineResponse struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderResponse is the external representation of an order.
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	CustomerID  uuid.UUID           `json:"customerId"`
	BranchID    *uuid.UUID          `json:"branchId,omitempty"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Notes       string              `json:"notes,omitempty"`
	Lines       []OrderLineResponse `json:"lines,omitempty"`
}

// OrderListFilter narrows and pages the order list.
type OrderListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"pageSize"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft confirmed delivered cancelled"`
	CustomerID *uuid.UUID `form:"customerId"`
}

func toOrderResponse(o *trade.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		BranchID:    o.BranchID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			SKU:       l.SKU,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		})
	}
	return resp
}

// Create creates and confirms an order for an active customer.
func (s *OrderService) Create(ctx context.Context, tctx shared.TenantContext, req CreateOrderRequest) (*OrderResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}

	var response *OrderResponse
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		customers, err := scope.NewRepository[partner.Customer](tx, scope.KindCustomer)
		if err != nil {
			return err
		}
		customer, err := customers.FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer.Status != partner.CustomerStatusActive {
			return shared.NewDomainError("CUSTOMER_INACTIVE", "Cannot create an order for an inactive customer")
		}

		order, err := trade.NewOrder(tx.TenantID(), req.CustomerID, newOrderNumber())
		if err != nil {
			return err
		}
		order.BranchID = tx.BranchID()
		order.Notes = req.Notes
		for _, line := range req.Lines {
			sku := strings.ToUpper(strings.TrimSpace(line.SKU))
			if err := order.AddLine(sku, line.Name, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		if err := order.Confirm(); err != nil {
			return err
		}

		orders, err := scope.NewRepository[trade.Order](tx, scope.KindOrder)
		if err != nil {
			return err
		}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		response = toOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetByID retrieves an order with its lines.
func (s *OrderService) GetByID(ctx context.Context, tctx shared.TenantContext, orderID uuid.UUID) (*OrderResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	orders, err := scope.NewRepository[trade.Order](sc, scope.KindOrder)
	if err != nil {
		return nil, err
	}
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// order lines carry no tenant column; they are reached through the order
	lines, err := scope.NewPassThrough[trade.OrderLine](sc, scope.KindOrderLine)
	if err != nil {
		return nil, err
	}
	order.Lines, err = lines.FindMany(ctx, "order_id = ?", order.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// List retrieves orders with filtering and pagination.
func (s *OrderService) List(ctx context.Context, tctx shared.TenantContext, filter OrderListFilter) ([]OrderResponse, int64, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, 0, err
	}
	orders, err := scope.NewRepository[trade.Order](sc, scope.KindOrder)
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
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	list, err := orders.FindMany(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := orders.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *toOrderResponse(&list[i]))
	}
	return responses, total, nil
}

// MarkDelivered completes a confirmed order and records the sale movements
// against the delivering vehicle's stock.
func (s *OrderService) MarkDelivered(ctx context.Context, tctx shared.TenantContext, orderID uuid.UUID, vehicleID *uuid.UUID) (*OrderResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}

	var response *OrderResponse
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		orders, err := scope.NewRepository[trade.Order](tx, scope.KindOrder)
		if err != nil {
			return err
		}
		order, err := orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		lines, err := scope.NewPassThrough[trade.OrderLine](tx, scope.KindOrderLine)
		if err != nil {
			return err
		}
		order.Lines, err = lines.FindMany(ctx, "order_id = ?", order.ID)
		if err != nil {
			return err
		}

		if err := order.MarkDelivered(); err != nil {
			return err
		}
		if err := orders.Update(ctx, order); err != nil {
			return err
		}

		if vehicleID != nil {
			if err := s.deductVehicleStock(ctx, tx, order, *vehicleID); err != nil {
				return err
			}
		}

		response = toOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Cancel cancels an undelivered order.
func (s *OrderService) Cancel(ctx context.Context, tctx shared.TenantContext, orderID uuid.UUID) (*OrderResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	orders, err := scope.NewRepository[trade.Order](sc, scope.KindOrder)
	if err != nil {
		return nil, err
	}
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	if err := orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// deductVehicleStock removes each delivered line from the vehicle and writes
// sale entries to the movement ledger.
func (s *OrderService) deductVehicleStock(ctx context.Context, tx *scope.Scope, order *trade.Order, vehicleID uuid.UUID) error {
	vehicleStock, err := scope.NewRepository[inventory.VehicleStockItem](tx, scope.KindVehicleStockItem)
	if err != nil {
		return err
	}
	ledger, err := scope.NewRepository[inventory.InventoryTransaction](tx, scope.KindInventoryTransaction)
	if err != nil {
		return err
	}

	for _, line := range order.Lines {
		loaded, err := vehicleStock.FindOne(ctx, "vehicle_id = ? AND sku = ?", vehicleID, line.SKU)
		if err != nil {
			return err
		}
		if err := loaded.Adjust(line.Quantity.Neg()); err != nil {
			return err
		}
		if err := vehicleStock.Update(ctx, loaded); err != nil {
			return err
		}

		movement, err := inventory.NewInventoryTransaction(tx.TenantID(), inventory.TransactionSale, line.SKU, line.Quantity)
		if err != nil {
			return err
		}
		movement.VehicleID = &vehicleID
		orderID := order.ID
		movement.OrderID = &orderID
		movement.Reference = order.OrderNumber
		if err := ledger.Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func newOrderNumber() string {
	return "SO-" + strings.ToUpper(uuid.NewString()[:8])
}
