package http

import (
	"log/slog"
	"net/http"

	"github.com/cjjwisniewski/seeker-functions/internal/service"
	"github.com/cjjwisniewski/seeker-functions/pkg/httputil"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
)

// AccountHandler handles account lifecycle endpoints.
type AccountHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: svc,
		logger:  logger,
	}
}

// Delete handles DELETE /api/account: it removes the authenticated user's
// account along with their seeking list and scan freshness. Responds 404 when
// the account is already gone.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "account deleted",
	}})
}
