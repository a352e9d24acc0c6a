package handler

import (
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appagent "github.com/vansales/backend/internal/application/agent"
	domainagent "github.com/vansales/backend/internal/domain/agent"
)

// AgentHandler exposes the agent action pipeline: dispatching tool calls,
// deciding proposed actions and browsing the capability catalog.
type AgentHandler struct {
	BaseHandler
	dispatch     *appagent.DispatchService
	confirmation *appagent.ConfirmationService
	registry     *domainagent.Registry
}

// NewAgentHandler creates an AgentHandler.
func NewAgentHandler(dispatch *appagent.DispatchService, confirmation *appagent.ConfirmationService, registry *domainagent.Registry) *AgentHandler {
	return &AgentHandler{dispatch: dispatch, confirmation: confirmation, registry: registry}
}

// Dispatch handles POST /api/v1/agent/dispatch.
func (h *AgentHandler) Dispatch(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appagent.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.dispatch.Dispatch(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Confirm handles POST /api/v1/agent/actions/:id/confirm.
func (h *AgentHandler) Confirm(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid action ID")
		return
	}

	view, err := h.confirmation.Confirm(c.Request.Context(), tctx, actionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Cancel handles POST /api/v1/agent/actions/:id/cancel.
func (h *AgentHandler) Cancel(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid action ID")
		return
	}

	view, err := h.confirmation.Cancel(c.Request.Context(), tctx, actionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Get handles GET /api/v1/agent/actions/:id.
func (h *AgentHandler) Get(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid action ID")
		return
	}

	view, err := h.confirmation.Get(c.Request.Context(), tctx, actionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListByConversation handles GET /api/v1/agent/conversations/:id/actions.
func (h *AgentHandler) ListByConversation(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	views, err := h.confirmation.ListByConversation(c.Request.Context(), tctx, conversationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Capabilities handles GET /api/v1/agent/capabilities.
func (h *AgentHandler) Capabilities(c *gin.Context) {
	catalog := h.registry.Catalog()
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })
	h.Success(c, catalog)
}
