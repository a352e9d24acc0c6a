package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinventory "github.com/vansales/backend/internal/application/inventory"
	"github.com/vansales/backend/internal/domain/shared"
)

// InventoryHandler exposes branch stock, vehicle stock and the movement
// ledger.
type InventoryHandler struct {
	BaseHandler
	inventory *appinventory.InventoryService
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(inventory *appinventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type listItemsQuery struct {
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
	BranchID *uuid.UUID `form:"branchId"`
}

// CreateItem handles POST /api/v1/inventory/items.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appinventory.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	created, err := h.inventory.CreateItem(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ListItems handles GET /api/v1/inventory/items.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var query listItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	items, total, err := h.inventory.ListItems(c.Request.Context(), tctx, query.BranchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Adjust handles POST /api/v1/inventory/adjust.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appinventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	adjusted, err := h.inventory.Adjust(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, adjusted)
}

// LoadVehicle handles POST /api/v1/inventory/load.
func (h *InventoryHandler) LoadVehicle(c *gin.Context) {
	h.move(c, h.inventory.LoadVehicle)
}

// UnloadVehicle handles POST /api/v1/inventory/unload.
func (h *InventoryHandler) UnloadVehicle(c *gin.Context) {
	h.move(c, h.inventory.UnloadVehicle)
}

type moveFunc func(ctx context.Context, tctx shared.TenantContext, req appinventory.LoadRequest) (*appinventory.VehicleStockResponse, error)

func (h *InventoryHandler) move(c *gin.Context, op moveFunc) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appinventory.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	moved, err := op(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, moved)
}

// ListVehicleStock handles GET /api/v1/inventory/vehicles/:id/stock.
func (h *InventoryHandler) ListVehicleStock(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vehicle ID")
		return
	}

	stock, err := h.inventory.ListVehicleStock(c.Request.Context(), tctx, vehicleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListMovements handles GET /api/v1/inventory/movements.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var query listItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	movements, err := h.inventory.ListMovements(c.Request.Context(), tctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}
