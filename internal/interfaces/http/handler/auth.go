package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/vansales/backend/internal/application/identity"
	"github.com/vansales/backend/internal/interfaces/http/middleware"
)

// AuthHandler exposes login and logout.
type AuthHandler struct {
	BaseHandler
	auth *appidentity.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout handles POST /api/v1/auth/logout. The presented token is revoked
// for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.GetRawToken(c)
	if !ok {
		h.NoContent(c)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
