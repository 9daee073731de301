package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// PingFunc reports whether the store is reachable.
type PingFunc func(ctx context.Context) error

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	log  *logger.Logger
	ping PingFunc
}

// NewHealthHandler answers "ok" while ping succeeds. A nil ping only checks
// that the process serves requests.
func NewHealthHandler(log *logger.Logger, ping PingFunc) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), ping: ping}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.log.Warn("health check: store unreachable", "error", err)
			c.String(http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
