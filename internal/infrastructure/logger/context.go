package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyRequestID
	ctxKeyTenantID
	ctxKeyUserID
)

// WithContext attaches a logger to the context.
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, log)
}

// FromContext returns the logger attached to the context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(ctxKeyLogger).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// stamp stores an identity value on the context and returns the context with
// a logger that carries it as a field.
func stamp(ctx context.Context, key ctxKey, field, value string, log *zap.Logger) (context.Context, *zap.Logger) {
	log = log.With(zap.String(field, value))
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, log), log
}

// WithRequestID stamps the request id onto the context and logger.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return stamp(ctx, ctxKeyRequestID, "request_id", requestID, log)
}

// WithTenantID stamps the tenant id onto the context and logger.
func WithTenantID(ctx context.Context, log *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	return stamp(ctx, ctxKeyTenantID, "tenant_id", tenantID, log)
}

// WithUserID stamps the user id onto the context and logger.
func WithUserID(ctx context.Context, log *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return stamp(ctx, ctxKeyUserID, "user_id", userID, log)
}

func ctxString(ctx context.Context, key ctxKey) string {
	value, _ := ctx.Value(key).(string)
	return value
}

// GetRequestID returns the request id stamped on the context, if any.
func GetRequestID(ctx context.Context) string { return ctxString(ctx, ctxKeyRequestID) }

// GetTenantID returns the tenant id stamped on the context, if any.
func GetTenantID(ctx context.Context) string { return ctxString(ctx, ctxKeyTenantID) }

// GetUserID returns the user id stamped on the context, if any.
func GetUserID(ctx context.Context) string { return ctxString(ctx, ctxKeyUserID) }

// identityFields collects the identity values stamped on the context as zap
// fields, skipping absent ones.
func identityFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTenantID(ctx); id != "" {
		fields = append(fields, zap.String("tenant_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	return fields
}

// ContextLogger defers field resolution until the log call so entries always
// carry whatever identity the context holds at that point.
type ContextLogger struct {
	ctx  context.Context
	base *zap.Logger
}

// L returns a ContextLogger for the given context.
//
//	logger.L(ctx).Info("stock adjusted", zap.String("sku", sku))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx)}
}

// With returns a child ContextLogger carrying extra fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.base.With(fields...)}
}

func (cl *ContextLogger) resolve() *zap.Logger {
	log := cl.base
	if log == nil {
		log = zap.NewNop()
	}
	if fields := identityFields(cl.ctx); len(fields) > 0 {
		log = log.With(fields...)
	}
	return log
}

// Debug logs at debug level with the context identity fields.
func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.resolve().Debug(msg, fields...)
}

// Info logs at info level with the context identity fields.
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.resolve().Info(msg, fields...)
}

// Warn logs at warn level with the context identity fields.
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.resolve().Warn(msg, fields...)
}

// Error logs at error level with the context identity fields.
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.resolve().Error(msg, fields...)
}
