package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const (
	statusOK       = "ok"
	statusDegraded = "unavailable"
)

// Check проверяет одну зависимость (Postgres, Mongo, Redis)
type Check func(ctx context.Context) error

type Logger interface {
	Warn(format string, v ...interface{})
}

// Response ответ health эндпоинтов
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	checks  map[string]Check
	timeout time.Duration
	logger  Logger
}

func NewHandler(checks map[string]Check, timeout time.Duration, logger Logger) *Handler {
	return &Handler{
		checks:  checks,
		timeout: timeout,
		logger:  logger,
	}
}

// Live GET /health/live
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, &Response{Status: statusOK})
}

// Ready GET /health/ready
// Возвращает 503, если хотя бы одна зависимость не отвечает
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := &Response{Status: statusOK, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("GET /health/ready - %s check failed: %v", name, err)
			resp.Checks[name] = statusDegraded
			resp.Status = statusDegraded
			continue
		}
		resp.Checks[name] = statusOK
	}

	code := http.StatusOK
	if resp.Status != statusOK {
		code = http.StatusServiceUnavailable
	}
	handlers.RespondJSON(w, code, resp)
}
