package http

import (
	"net/http"
	"time"

	"github.com/cjjwisniewski/seeker-functions/pkg/health"
	"github.com/cjjwisniewski/seeker-functions/pkg/httputil"
)

// StatusHandler reports component health for the frontend status page.
type StatusHandler struct {
	checks    map[string]health.Checker
	startedAt time.Time
}

// NewStatusHandler creates a status handler over the given component checks.
func NewStatusHandler(checks map[string]health.Checker) *StatusHandler {
	return &StatusHandler{
		checks:    checks,
		startedAt: time.Now().UTC(),
	}
}

// StatusResponse is the JSON body returned by GET /api/status.
type StatusResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components"`
}

// Get handles GET /api/status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:     "ok",
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Components: make(map[string]string, len(h.checks)),
	}

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			resp.Components[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: resp})
}
