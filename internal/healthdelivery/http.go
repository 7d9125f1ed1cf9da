// Package healthdelivery reports service liveness and database connectivity.
package healthdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

const pingTimeout = 2 * time.Second

// Pinger checks the connection to a dependency, *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler facilitates health delivery layer logic.
type Handler struct {
	db Pinger
}

// NewHandler returns health handler.
func NewHandler(db Pinger) Handler {
	return Handler{db: db}
}

// Response is the body of a health check.
type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Version  string `json:"version,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Check handles http request to check service health.
func (h *Handler) Check(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	ctx, cancel := context.WithTimeout(gctx.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		l.Error().Err(err).Msg("health check failed")
		gctx.JSON(http.StatusServiceUnavailable, Response{
			Status: "unhealthy",
			Detail: "database unavailable",
		})

		return
	}

	gctx.JSON(http.StatusOK, Response{
		Status:   "healthy",
		Database: "connected",
		Version:  Version,
	})
}
