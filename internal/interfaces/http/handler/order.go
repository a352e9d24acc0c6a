package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/vansales/backend/internal/application/trade"
)

// OrderHandler exposes sales order operations.
type OrderHandler struct {
	BaseHandler
	orders *apptrade.OrderService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// deliverRequest optionally names the vehicle whose stock covers the order.
type deliverRequest struct {
	VehicleID *uuid.UUID `json:"vehicleId"`
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req apptrade.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	created, err := h.orders.Create(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), tctx, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), tctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Deliver handles POST /api/v1/orders/:id/deliver. When a vehicle is named,
// delivered quantities are deducted from its stock in the same transaction.
func (h *OrderHandler) Deliver(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req deliverRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BindingError(c, err)
		return
	}

	delivered, err := h.orders.MarkDelivered(c.Request.Context(), tctx, orderID, req.VehicleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, delivered)
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	cancelled, err := h.orders.Cancel(c.Request.Context(), tctx, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cancelled)
}
