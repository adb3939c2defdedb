package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger func(ctx context.Context) error

// HealthHandler reports service liveness
type HealthHandler struct {
	db  Pinger
	log *zap.Logger
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db Pinger, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{db: db, log: log}
}

// RegisterRoutes mounts GET /health
func (h *HealthHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
}

// Health answers 200 when the database responds, 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
