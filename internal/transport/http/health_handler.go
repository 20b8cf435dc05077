package http

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler serves liveness and version endpoints
type HealthHandler struct {
	logger    *slog.Logger
	version   string
	buildTime string
	startedAt time.Time
	dataCheck func() error
}

// NewHealthHandler creates a new health handler. dataCheck reports whether
// the data file is currently loadable and may be nil.
func NewHealthHandler(logger *slog.Logger, version, buildTime string, dataCheck func() error) *HealthHandler {
	return &HealthHandler{
		logger:    logger.With(slog.String("handler", "health")),
		version:   version,
		buildTime: buildTime,
		startedAt: time.Now(),
		dataCheck: dataCheck,
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}
	if h.dataCheck != nil {
		if err := h.dataCheck(); err != nil {
			status = "degraded"
			checks["data_file"] = err.Error()
		} else {
			checks["data_file"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	render.Status(r, code)
	render.JSON(w, r, map[string]interface{}{
		"status":    status,
		"uptime":    time.Since(h.startedAt).String(),
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	})
}
