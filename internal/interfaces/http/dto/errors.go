package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the interface layer itself. Domain codes come from
// the domain packages and are mapped to HTTP statuses below.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeNotFound        = "NOT_FOUND"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
var errorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"UNKNOWN_CAPABILITY":   http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"ACTION_CONFLICT":      http.StatusConflict,
	"ACTION_EXPIRED":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"AUTHORIZATION_DENIED": http.StatusForbidden,
	"CONFIGURATION_ERROR":  http.StatusForbidden,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"CUSTOMER_INACTIVE":    http.StatusUnprocessableEntity,
	"EMPTY_ORDER":          http.StatusUnprocessableEntity,
	"VALIDATION_ERROR":     http.StatusBadRequest,
	"INVALID_ARGUMENTS":    http.StatusBadRequest,
	"INTERNAL_ERROR":       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes with an
// INVALID_ prefix default to 400; anything unrecognized is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
