package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin middleware when tracing is enabled, otherwise a
// pass-through. Span names follow "METHOD route" per otelgin.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(serviceName)
}

// TraceIdentity annotates the active span with the identity stamped on the
// request context. Must run after JWTAuth so the claims are resolved.
func TraceIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			ctx := c.Request.Context()
			if id := logger.GetRequestID(ctx); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := logger.GetTenantID(ctx); id != "" {
				span.SetAttributes(attribute.String("tenant_id", id))
			}
			if id := logger.GetUserID(ctx); id != "" {
				span.SetAttributes(attribute.String("user_id", id))
			}
		}
		c.Next()
	}
}
