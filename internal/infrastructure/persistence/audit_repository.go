package persistence

import (
	"context"
	"fmt"

	"github.com/vansales/backend/internal/domain/agent"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditRepositoryImpl implements agent.AuditRepository using GORM.
// audit_entries is append-only; no update or delete path exists.
type AuditRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepositoryImpl {
	return &AuditRepositoryImpl{db: db}
}

// Append inserts an audit entry
func (r *AuditRepositoryImpl) Append(ctx context.Context, entry *agent.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

var _ agent.AuditRepository = (*AuditRepositoryImpl)(nil)

// BestEffortAuditLogger wraps an AuditRepository so that audit write failures
// never fail the operation being audited. Failures are logged and swallowed.
type BestEffortAuditLogger struct {
	repo agent.AuditRepository
}

// NewBestEffortAuditLogger creates an audit logger over the given repository
func NewBestEffortAuditLogger(repo agent.AuditRepository) *BestEffortAuditLogger {
	return &BestEffortAuditLogger{repo: repo}
}

// Record appends the entry, logging and swallowing any failure
func (l *BestEffortAuditLogger) Record(ctx context.Context, entry *agent.AuditEntry) {
	if err := l.repo.Append(ctx, entry); err != nil {
		logger.L(ctx).Warn("audit write failed",
			zap.String("entity_type", entry.EntityType),
			zap.String("verb", entry.Verb),
			zap.Error(err),
		)
	}
}

var _ agent.AuditLogger = (*BestEffortAuditLogger)(nil)
