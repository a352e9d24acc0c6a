package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/domain/trade"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
)

// HandlerFunc executes one capability against a tenant scope. Arguments have
// already passed schema validation; handlers still coerce and re-check values
// they depend on.
type HandlerFunc func(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error)

// Executor maps capability names to their handlers. All data access goes
// through the scoped repositories, so a handler cannot reach outside the
// tenant no matter what arguments it receives.
type Executor struct {
	handlers map[string]HandlerFunc
}

// NewExecutor builds the executor with the default capability handlers.
func NewExecutor() *Executor {
	e := &Executor{handlers: make(map[string]HandlerFunc)}
	e.handlers[CapListCustomers] = listCustomers
	e.handlers[CapGetInventory] = getInventory
	e.handlers[CapGetVehicleStock] = getVehicleStock
	e.handlers[CapListOrders] = listOrders
	e.handlers[CapCreateOrder] = createOrder
	e.handlers[CapAdjustInventory] = adjustInventory
	e.handlers[CapPullStock] = pullStock
	return e
}

// Supports reports whether a handler is registered for the capability.
func (e *Executor) Supports(name string) bool {
	_, ok := e.handlers[name]
	return ok
}

// Execute runs the named capability under the given scope.
func (e *Executor) Execute(ctx context.Context, sc *scope.Scope, name string, args map[string]any) (any, error) {
	handler, ok := e.handlers[name]
	if !ok {
		return nil, fmt.Errorf("no handler registered for capability %q", name)
	}
	return handler(ctx, sc, args)
}

type customerView struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Tier   string    `json:"tier"`
	Status string    `json:"status"`
	Phone  string    `json:"phone,omitempty"`
}

type stockView struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

type orderView struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  uuid.UUID       `json:"customerId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func listCustomers(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	repo, err := scope.NewRepository[partner.Customer](sc, scope.KindCustomer)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.Page = intArg(args, "page", filter.Page)
	filter.PageSize = intArg(args, "pageSize", filter.PageSize)
	if status, ok := stringArg(args, "status"); ok {
		filter.Filters = map[string]any{"status": status}
	}

	var conds []any
	if search, ok := stringArg(args, "search"); ok {
		pattern := "%" + search + "%"
		conds = []any{"name LIKE ? OR code LIKE ?", pattern, pattern}
	}

	customers, err := repo.FindMany(ctx, filter, conds...)
	if err != nil {
		return nil, err
	}

	views := make([]customerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, customerView{
			ID:     c.ID,
			Code:   c.Code,
			Name:   c.Name,
			Tier:   string(c.Tier),
			Status: string(c.Status),
			Phone:  c.Phone,
		})
	}
	return map[string]any{"customers": views, "count": len(views)}, nil
}

func getInventory(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	repo, err := scope.NewRepository[inventory.InventoryItem](sc, scope.KindInventoryItem)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters = map[string]any{}

	branchID, err := branchArg(sc, args)
	if err != nil {
		return nil, err
	}
	if branchID != nil {
		filter.Filters["branch_id"] = *branchID
	}
	if sku, ok := stringArg(args, "sku"); ok {
		filter.Filters["sku"] = normalizeSKU(sku)
	}

	items, err := repo.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	type inventoryView struct {
		stockView
		BranchID     uuid.UUID       `json:"branchId"`
		ReorderLevel decimal.Decimal `json:"reorderLevel"`
		BelowReorder bool            `json:"belowReorder"`
	}
	views := make([]inventoryView, 0, len(items))
	for _, item := range items {
		views = append(views, inventoryView{
			stockView:    stockView{SKU: item.SKU, Name: item.Name, Quantity: item.Quantity},
			BranchID:     item.BranchID,
			ReorderLevel: item.ReorderLevel,
			BelowReorder: item.BelowReorderLevel(),
		})
	}
	return map[string]any{"items": views, "count": len(views)}, nil
}

func getVehicleStock(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	vehicleID, err := uuidArg(args, "vehicleId")
	if err != nil {
		return nil, err
	}

	repo, err := scope.NewRepository[inventory.VehicleStockItem](sc, scope.KindVehicleStockItem)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters = map[string]any{"vehicle_id": vehicleID}

	items, err := repo.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]stockView, 0, len(items))
	for _, item := range items {
		views = append(views, stockView{SKU: item.SKU, Name: item.Name, Quantity: item.Quantity})
	}
	return map[string]any{"vehicleId": vehicleID, "items": views, "count": len(views)}, nil
}

func listOrders(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	repo, err := scope.NewRepository[trade.Order](sc, scope.KindOrder)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.Page = intArg(args, "page", filter.Page)
	filter.PageSize = intArg(args, "pageSize", filter.PageSize)
	filter.Filters = map[string]any{}
	if status, ok := stringArg(args, "status"); ok {
		filter.Filters["status"] = status
	}
	if customerID, err := uuidArg(args, "customerId"); err == nil {
		filter.Filters["customer_id"] = customerID
	}

	orders, err := repo.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			CustomerID:  o.CustomerID,
			Status:      string(o.Status),
			TotalAmount: o.TotalAmount,
			CreatedAt:   o.CreatedAt,
		})
	}
	return map[string]any{"orders": views, "count": len(views)}, nil
}

func createOrder(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	customerID, err := uuidArg(args, "customerId")
	if err != nil {
		return nil, err
	}
	rawLines, ok := args["lines"].([]any)
	if !ok || len(rawLines) == 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENTS", "Order lines are required")
	}

	var view orderView
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		customers, err := scope.NewRepository[partner.Customer](tx, scope.KindCustomer)
		if err != nil {
			return err
		}
		customer, err := customers.FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer.Status != partner.CustomerStatusActive {
			return shared.NewDomainError("CUSTOMER_INACTIVE", "Cannot create an order for an inactive customer")
		}

		order, err := trade.NewOrder(tx.TenantID(), customerID, newOrderNumber())
		if err != nil {
			return err
		}
		order.BranchID = tx.BranchID()
		if notes, ok := stringArg(args, "notes"); ok {
			order.Notes = notes
		}

		for _, raw := range rawLines {
			lineArgs, ok := raw.(map[string]any)
			if !ok {
				return shared.NewDomainError("INVALID_ARGUMENTS", "Order line must be an object")
			}
			sku, _ := stringArg(lineArgs, "sku")
			name, _ := stringArg(lineArgs, "name")
			quantity, err := decimalArg(lineArgs, "quantity")
			if err != nil {
				return err
			}
			unitPrice, err := decimalArg(lineArgs, "unitPrice")
			if err != nil {
				return err
			}
			if err := order.AddLine(normalizeSKU(sku), name, quantity, unitPrice); err != nil {
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

		view = orderView{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			Status:      string(order.Status),
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func adjustInventory(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	sku, ok := stringArg(args, "sku")
	if !ok {
		return nil, shared.NewDomainError("INVALID_ARGUMENTS", "SKU is required")
	}
	sku = normalizeSKU(sku)
	delta, err := decimalArg(args, "delta")
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_ARGUMENTS", "Delta cannot be zero")
	}
	branchID, err := requiredBranchArg(sc, args)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		items, err := scope.NewRepository[inventory.InventoryItem](tx, scope.KindInventoryItem)
		if err != nil {
			return err
		}
		item, err := items.FindOne(ctx, "branch_id = ? AND sku = ?", branchID, sku)
		if err != nil {
			return err
		}
		if err := item.Adjust(delta); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return err
		}

		movement, err := inventory.NewInventoryTransaction(tx.TenantID(), inventory.TransactionAdjustment, sku, delta)
		if err != nil {
			return err
		}
		movement.BranchID = &branchID
		if reason, ok := stringArg(args, "reason"); ok {
			movement.Reference = reason
		}
		ledger, err := scope.NewRepository[inventory.InventoryTransaction](tx, scope.KindInventoryTransaction)
		if err != nil {
			return err
		}
		if err := ledger.Create(ctx, movement); err != nil {
			return err
		}

		result = map[string]any{
			"sku":          sku,
			"branchId":     branchID,
			"delta":        delta,
			"quantity":     item.Quantity,
			"belowReorder": item.BelowReorderLevel(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func pullStock(ctx context.Context, sc *scope.Scope, args map[string]any) (any, error) {
	vehicleID, err := uuidArg(args, "vehicleId")
	if err != nil {
		return nil, err
	}
	sku, ok := stringArg(args, "sku")
	if !ok {
		return nil, shared.NewDomainError("INVALID_ARGUMENTS", "SKU is required")
	}
	sku = normalizeSKU(sku)
	quantity, err := decimalArg(args, "quantity")
	if err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_ARGUMENTS", "Quantity must be positive")
	}
	branchID, err := requiredBranchArg(sc, args)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		items, err := scope.NewRepository[inventory.InventoryItem](tx, scope.KindInventoryItem)
		if err != nil {
			return err
		}
		item, err := items.FindOne(ctx, "branch_id = ? AND sku = ?", branchID, sku)
		if err != nil {
			return err
		}
		if err := item.Adjust(quantity.Neg()); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return err
		}

		vehicleStock, err := scope.NewRepository[inventory.VehicleStockItem](tx, scope.KindVehicleStockItem)
		if err != nil {
			return err
		}
		loaded, err := vehicleStock.FindOne(ctx, "vehicle_id = ? AND sku = ?", vehicleID, sku)
		switch {
		case err == nil:
			if err := loaded.Adjust(quantity); err != nil {
				return err
			}
			if err := vehicleStock.Update(ctx, loaded); err != nil {
				return err
			}
		case errIsNotFound(err):
			loaded, err = inventory.NewVehicleStockItem(tx.TenantID(), vehicleID, sku, item.Name, quantity)
			if err != nil {
				return err
			}
			if err := vehicleStock.Create(ctx, loaded); err != nil {
				return err
			}
		default:
			return err
		}

		movement, err := inventory.NewInventoryTransaction(tx.TenantID(), inventory.TransactionLoad, sku, quantity)
		if err != nil {
			return err
		}
		movement.BranchID = &branchID
		movement.VehicleID = &vehicleID
		ledger, err := scope.NewRepository[inventory.InventoryTransaction](tx, scope.KindInventoryTransaction)
		if err != nil {
			return err
		}
		if err := ledger.Create(ctx, movement); err != nil {
			return err
		}

		result = map[string]any{
			"sku":            sku,
			"branchId":       branchID,
			"vehicleId":      vehicleID,
			"quantity":       quantity,
			"branchRemains":  item.Quantity,
			"vehicleCarries": loaded.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newOrderNumber() string {
	return "SO-" + strings.ToUpper(uuid.NewString()[:8])
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func errIsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func uuidArg(args map[string]any, key string) (uuid.UUID, error) {
	raw, ok := stringArg(args, key)
	if !ok {
		return uuid.Nil, shared.NewDomainError("INVALID_ARGUMENTS", fmt.Sprintf("%s is required", key))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_ARGUMENTS", fmt.Sprintf("%s is not a valid UUID", key))
	}
	return id, nil
}

// decimalArg accepts JSON numbers and numeric strings. JSON decoding hands
// numbers over as float64, so monetary values round-trip through decimal's
// float constructor.
func decimalArg(args map[string]any, key string) (decimal.Decimal, error) {
	switch v := args[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, shared.NewDomainError("INVALID_ARGUMENTS", fmt.Sprintf("%s is not a valid number", key))
		}
		return d, nil
	}
	return decimal.Zero, shared.NewDomainError("INVALID_ARGUMENTS", fmt.Sprintf("%s is required", key))
}

// branchArg resolves an optional branch: explicit argument first, the acting
// user's branch as the default, nil when neither is present.
func branchArg(sc *scope.Scope, args map[string]any) (*uuid.UUID, error) {
	if _, present := args["branchId"]; present {
		id, err := uuidArg(args, "branchId")
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return sc.BranchID(), nil
}

func requiredBranchArg(sc *scope.Scope, args map[string]any) (uuid.UUID, error) {
	branchID, err := branchArg(sc, args)
	if err != nil {
		return uuid.Nil, err
	}
	if branchID == nil {
		return uuid.Nil, shared.NewDomainError("INVALID_ARGUMENTS", "branchId is required when the acting user has no branch")
	}
	return *branchID, nil
}
