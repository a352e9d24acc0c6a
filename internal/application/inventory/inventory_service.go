package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/persistence/scope"
	"gorm.io/gorm"
)

// InventoryService manages branch stock, vehicle stock and the movement
// ledger. Every stock mutation writes a ledger entry in the same transaction.
type InventoryService struct {
	db *gorm.DB
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// CreateItemRequest carries the fields for a new branch stock record.
type CreateItemRequest struct {
	BranchID     uuid.UUID        `json:"branchId" binding:"required"`
	SKU          string           `json:"sku" binding:"required"`
	Name         string           `json:"name" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	ReorderLevel *decimal.Decimal `json:"reorderLevel"`
}

// ItemResponse is the external representation of a branch stock record.
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	BranchID     uuid.UUID       `json:"branchId"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
	BelowReorder bool            `json:"belowReorder"`
}

// VehicleStockResponse is the external representation of loaded stock.
type VehicleStockResponse struct {
	VehicleID uuid.UUID       `json:"vehicleId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	BranchID  *uuid.UUID      `json:"branchId,omitempty"`
	VehicleID *uuid.UUID      `json:"vehicleId,omitempty"`
	OrderID   *uuid.UUID      `json:"orderId,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

func toItemResponse(i *inventory.InventoryItem) *ItemResponse {
	return &ItemResponse{
		ID:           i.ID,
		BranchID:     i.BranchID,
		SKU:          i.SKU,
		Name:         i.Name,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
		ReorderLevel: i.ReorderLevel,
		BelowReorder: i.BelowReorderLevel(),
	}
}

// CreateItem registers a product's stock at a branch.
func (s *InventoryService) CreateItem(ctx context.Context, tctx shared.TenantContext, req CreateItemRequest) (*ItemResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	items, err := scope.NewRepository[inventory.InventoryItem](sc, scope.KindInventoryItem)
	if err != nil {
		return nil, err
	}

	item, err := inventory.NewInventoryItem(tctx.TenantID(), req.BranchID, req.SKU, req.Name, req.Quantity)
	if err != nil {
		return nil, err
	}
	count, err := items.Count(ctx, "branch_id = ? AND sku = ?", req.BranchID, item.SKU)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item already exists at this branch")
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}

	if err := items.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// ListItems lists branch stock, optionally for one branch.
func (s *InventoryService) ListItems(ctx context.Context, tctx shared.TenantContext, branchID *uuid.UUID, filter shared.Filter) ([]ItemResponse, int64, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, 0, err
	}
	items, err := scope.NewRepository[inventory.InventoryItem](sc, scope.KindInventoryItem)
	if err != nil {
		return nil, 0, err
	}

	if branchID != nil {
		if filter.Filters == nil {
			filter.Filters = map[string]any{}
		}
		filter.Filters["branch_id"] = *branchID
	}
	list, err := items.FindMany(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	var conds []any
	if branchID != nil {
		conds = []any{"branch_id = ?", *branchID}
	}
	total, err := items.Count(ctx, conds...)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *toItemResponse(&list[i]))
	}
	return responses, total, nil
}

// AdjustRequest carries a signed stock correction.
type AdjustRequest struct {
	BranchID uuid.UUID       `json:"branchId" binding:"required"`
	SKU      string          `json:"sku" binding:"required"`
	Delta    decimal.Decimal `json:"delta" binding:"required"`
	Reason   string          `json:"reason"`
}

// Adjust applies a signed quantity correction and writes an adjustment entry
// to the ledger.
func (s *InventoryService) Adjust(ctx context.Context, tctx shared.TenantContext, req AdjustRequest) (*ItemResponse, error) {
	if tctx.Role() != shared.RoleAdmin && tctx.Role() != shared.RoleManager {
		return nil, shared.ErrForbidden
	}
	if req.Delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Delta cannot be zero")
	}
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}

	var response *ItemResponse
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		items, err := scope.NewRepository[inventory.InventoryItem](tx, scope.KindInventoryItem)
		if err != nil {
			return err
		}
		item, err := items.FindOne(ctx, "branch_id = ? AND sku = ?", req.BranchID, normalizeSKU(req.SKU))
		if err != nil {
			return err
		}
		if err := item.Adjust(req.Delta); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return err
		}

		movement, err := inventory.NewInventoryTransaction(tx.TenantID(), inventory.TransactionAdjustment, item.SKU, req.Delta)
		if err != nil {
			return err
		}
		movement.BranchID = &req.BranchID
		movement.Reference = req.Reason
		ledger, err := scope.NewRepository[inventory.InventoryTransaction](tx, scope.KindInventoryTransaction)
		if err != nil {
			return err
		}
		if err := ledger.Create(ctx, movement); err != nil {
			return err
		}

		response = toItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// LoadRequest moves stock between a branch and a vehicle.
type LoadRequest struct {
	BranchID  uuid.UUID       `json:"branchId" binding:"required"`
	VehicleID uuid.UUID       `json:"vehicleId" binding:"required"`
	SKU       string          `json:"sku" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// LoadVehicle moves stock from a branch onto a vehicle.
func (s *InventoryService) LoadVehicle(ctx context.Context, tctx shared.TenantContext, req LoadRequest) (*VehicleStockResponse, error) {
	return s.move(ctx, tctx, req, inventory.TransactionLoad)
}

// UnloadVehicle returns stock from a vehicle to a branch.
func (s *InventoryService) UnloadVehicle(ctx context.Context, tctx shared.TenantContext, req LoadRequest) (*VehicleStockResponse, error) {
	return s.move(ctx, tctx, req, inventory.TransactionUnload)
}

func (s *InventoryService) move(ctx context.Context, tctx shared.TenantContext, req LoadRequest, direction inventory.TransactionType) (*VehicleStockResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	sku := normalizeSKU(req.SKU)
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}

	var response *VehicleStockResponse
	err = sc.Transaction(ctx, func(tx *scope.Scope) error {
		items, err := scope.NewRepository[inventory.InventoryItem](tx, scope.KindInventoryItem)
		if err != nil {
			return err
		}
		vehicleStock, err := scope.NewRepository[inventory.VehicleStockItem](tx, scope.KindVehicleStockItem)
		if err != nil {
			return err
		}

		item, err := items.FindOne(ctx, "branch_id = ? AND sku = ?", req.BranchID, sku)
		if err != nil {
			return err
		}
		loaded, err := vehicleStock.FindOne(ctx, "vehicle_id = ? AND sku = ?", req.VehicleID, sku)
		if errors.Is(err, shared.ErrNotFound) {
			if direction == inventory.TransactionUnload {
				return shared.ErrInsufficientStock
			}
			loaded, err = inventory.NewVehicleStockItem(tx.TenantID(), req.VehicleID, sku, item.Name, decimal.Zero)
			if err != nil {
				return err
			}
			if err := vehicleStock.Create(ctx, loaded); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		branchDelta, vehicleDelta := req.Quantity.Neg(), req.Quantity
		if direction == inventory.TransactionUnload {
			branchDelta, vehicleDelta = req.Quantity, req.Quantity.Neg()
		}
		if err := item.Adjust(branchDelta); err != nil {
			return err
		}
		if err := loaded.Adjust(vehicleDelta); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return err
		}
		if err := vehicleStock.Update(ctx, loaded); err != nil {
			return err
		}

		movement, err := inventory.NewInventoryTransaction(tx.TenantID(), direction, sku, req.Quantity)
		if err != nil {
			return err
		}
		movement.BranchID = &req.BranchID
		movement.VehicleID = &req.VehicleID
		ledger, err := scope.NewRepository[inventory.InventoryTransaction](tx, scope.KindInventoryTransaction)
		if err != nil {
			return err
		}
		if err := ledger.Create(ctx, movement); err != nil {
			return err
		}

		response = &VehicleStockResponse{
			VehicleID: loaded.VehicleID,
			SKU:       loaded.SKU,
			Name:      loaded.Name,
			Quantity:  loaded.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ListVehicleStock lists the stock loaded on one vehicle.
func (s *InventoryService) ListVehicleStock(ctx context.Context, tctx shared.TenantContext, vehicleID uuid.UUID) ([]VehicleStockResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	vehicleStock, err := scope.NewRepository[inventory.VehicleStockItem](sc, scope.KindVehicleStockItem)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters["vehicle_id"] = vehicleID
	list, err := vehicleStock.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]VehicleStockResponse, 0, len(list))
	for _, v := range list {
		responses = append(responses, VehicleStockResponse{
			VehicleID: v.VehicleID,
			SKU:       v.SKU,
			Name:      v.Name,
			Quantity:  v.Quantity,
		})
	}
	return responses, nil
}

// ListMovements lists the movement ledger, newest first.
func (s *InventoryService) ListMovements(ctx context.Context, tctx shared.TenantContext, filter shared.Filter) ([]MovementResponse, error) {
	sc, err := scope.New(s.db, tctx)
	if err != nil {
		return nil, err
	}
	ledger, err := scope.NewRepository[inventory.InventoryTransaction](sc, scope.KindInventoryTransaction)
	if err != nil {
		return nil, err
	}
	list, err := ledger.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		responses = append(responses, MovementResponse{
			ID:        m.ID,
			Type:      string(m.Type),
			SKU:       m.SKU,
			Quantity:  m.Quantity,
			BranchID:  m.BranchID,
			VehicleID: m.VehicleID,
			OrderID:   m.OrderID,
			Reference: m.Reference,
		})
	}
	return responses, nil
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
