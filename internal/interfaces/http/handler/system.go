package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vansales/backend/internal/interfaces/http/dto"
	"gorm.io/gorm"
)

// SystemHandler exposes health and readiness probes.
type SystemHandler struct {
	BaseHandler
	db *gorm.DB
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health handles GET /health. Liveness only; no dependencies are checked.
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Ready handles GET /ready. Reports unavailable when the database cannot be
// reached.
func (h *SystemHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse("DATABASE_UNAVAILABLE", "Database is not reachable", h.requestID(c)))
		return
	}
	h.Success(c, gin.H{"status": "ready"})
}
