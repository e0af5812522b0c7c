package http

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves /healthz with database and optional Redis checks.
type HealthHandler struct {
	DB    Pinger
	Redis redis.UniversalClient
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if err := h.DB.PingContext(ctx); err != nil {
		checks["database"] = "down: " + err.Error()
		allOK = false
	} else {
		checks["database"] = "ok"
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
			allOK = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !allOK {
		middleware.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Checks: checks})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
