package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/vansales/backend/internal/application/identity"
	"github.com/vansales/backend/internal/domain/shared"
)

// IdentityHandler exposes user account and branch administration.
type IdentityHandler struct {
	BaseHandler
	users *appidentity.UserService
}

// NewIdentityHandler creates an IdentityHandler.
func NewIdentityHandler(users *appidentity.UserService) *IdentityHandler {
	return &IdentityHandler{users: users}
}

type pagingQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

func (q pagingQuery) filter() shared.Filter {
	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	return filter
}

// CreateUser handles POST /api/v1/users.
func (h *IdentityHandler) CreateUser(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appidentity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	created, err := h.users.CreateUser(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetUser handles GET /api/v1/users/:id.
func (h *IdentityHandler) GetUser(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), tctx, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ListUsers handles GET /api/v1/users.
func (h *IdentityHandler) ListUsers(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var query pagingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	filter := query.filter()

	users, total, err := h.users.ListUsers(c.Request.Context(), tctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// DisableUser handles DELETE /api/v1/users/:id.
func (h *IdentityHandler) DisableUser(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.users.DisableUser(c.Request.Context(), tctx, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateBranch handles POST /api/v1/branches.
func (h *IdentityHandler) CreateBranch(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appidentity.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	created, err := h.users.CreateBranch(c.Request.Context(), tctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ListBranches handles GET /api/v1/branches.
func (h *IdentityHandler) ListBranches(c *gin.Context) {
	tctx, ok := h.tenant(c)
	if !ok {
		return
	}
	var query pagingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	branches, err := h.users.ListBranches(c.Request.Context(), tctx, query.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branches)
}
