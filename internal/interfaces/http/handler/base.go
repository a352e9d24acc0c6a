// Package handler contains the HTTP handlers. Handlers bind and validate
// input, delegate to application services and translate domain errors into
// the response envelope; business rules live below this layer.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"github.com/vansales/backend/internal/interfaces/http/dto"
	"github.com/vansales/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides response helpers shared by all handlers.
type BaseHandler struct{}

// Success writes a 200 with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 with the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 validation error.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.CodeValidationError, message, h.requestID(c)))
}

// BindingError writes a 400 for a failed request binding. Validator errors
// carry per-field details; anything else degrades to a plain message.
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(validationErrors, h.requestID(c)))
		return
	}
	h.BadRequest(c, "Malformed request body")
}

// HandleError translates an error into an HTTP response. Domain errors map
// to their status by code; anything else is an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message, h.requestID(c)))
		return
	}

	logger.L(c.Request.Context()).Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.CodeInternalError, "An internal error occurred", h.requestID(c)))
}

// tenant returns the request's tenant context or writes a 403 and reports
// failure. Handlers behind the tenant middleware should never hit the
// failure path.
func (h *BaseHandler) tenant(c *gin.Context) (shared.TenantContext, bool) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusForbidden,
			dto.NewErrorResponse("CONFIGURATION_ERROR", "Tenant context is missing", h.requestID(c)))
		return shared.TenantContext{}, false
	}
	return tctx, true
}

func (h *BaseHandler) requestID(c *gin.Context) string {
	return c.GetString(middleware.ContextKeyRequestID)
}
