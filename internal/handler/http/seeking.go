package http

import (
	"log/slog"
	"net/http"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/service"
	"github.com/cjjwisniewski/seeker-functions/pkg/httputil"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
	"github.com/cjjwisniewski/seeker-functions/pkg/validator"
)

// SeekingHandler handles HTTP requests for the seeking-list endpoints.
type SeekingHandler struct {
	service *service.SeekingService
	logger  *slog.Logger
}

// NewSeekingHandler creates a new seeking-list HTTP handler.
func NewSeekingHandler(svc *service.SeekingService, logger *slog.Logger) *SeekingHandler {
	return &SeekingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddSeekingRequest is the JSON request body for adding a card to the
// seeking list. The id is the Scryfall print id.
type AddSeekingRequest struct {
	ScryfallID      string `json:"id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	SetCode         string `json:"set_code" validate:"required"`
	CollectorNumber string `json:"collector_number" validate:"required"`
	Language        string `json:"language" validate:"required"`
	Finish          string `json:"finish" validate:"required,oneof=nonfoil foil etched"`
	OracleID        string `json:"oracle_id" validate:"omitempty"`
	ImageURI        string `json:"image_uri" validate:"omitempty,url"`
}

// DeleteSeekingRequest is the JSON request body for removing a card from the
// seeking list, addressed by its table coordinates.
type DeleteSeekingRequest struct {
	SetCode string `json:"set_code" validate:"required"`
	RowKey  string `json:"row_key" validate:"required"`
}

// --- Handlers ---

// Add handles POST /api/seeking
func (h *SeekingHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddSeekingRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item := &domain.SeekingItem{
		UserID:          middleware.UserIDFromContext(r.Context()),
		ScryfallID:      req.ScryfallID,
		Name:            req.Name,
		SetCode:         req.SetCode,
		CollectorNumber: req.CollectorNumber,
		Language:        req.Language,
		Finish:          req.Finish,
		OracleID:        req.OracleID,
		ImageURI:        req.ImageURI,
	}

	if err := h.service.AddItem(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// Delete handles DELETE /api/seeking
func (h *SeekingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req DeleteSeekingRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if err := h.service.DeleteItem(r.Context(), userID, req.SetCode, req.RowKey); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "card removed from seeking list",
	}})
}

// List handles GET /api/seeking
//
// Admins may pass ?targetUserId= to read another user's list; for everyone
// else the query parameter is ignored.
func (h *SeekingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if target := r.URL.Query().Get("targetUserId"); target != "" && middleware.IsAdminFromContext(r.Context()) {
		userID = target
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// ListUsers handles GET /api/seeking/users (admin only)
func (h *SeekingHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListUserIDs(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"user_ids": ids,
	}})
}
