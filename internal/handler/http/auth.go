package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/cjjwisniewski/seeker-functions/internal/auth"
	"github.com/cjjwisniewski/seeker-functions/internal/discord"
	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/repository"
	"github.com/cjjwisniewski/seeker-functions/pkg/httputil"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
	"github.com/cjjwisniewski/seeker-functions/pkg/validator"
)

// OAuthStateStore persists short-lived OAuth state tokens between the login
// redirect and the callback.
type OAuthStateStore interface {
	SaveOAuthState(ctx context.Context, state string) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}

// DiscordGateway is the slice of the Discord API the auth flow needs.
type DiscordGateway interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*discord.User, error)
	CheckMembership(ctx context.Context, accessToken string) (bool, error)
	RevokeToken(ctx context.Context, accessToken string) error
}

// AuthHandler handles the Discord OAuth login flow and session endpoints.
type AuthHandler struct {
	discord     DiscordGateway
	states      OAuthStateStore
	users       repository.UserRepository
	tokens      *auth.JWTManager
	isAdmin     func(userID string) bool
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(
	dc DiscordGateway,
	states OAuthStateStore,
	users repository.UserRepository,
	tokens *auth.JWTManager,
	isAdmin func(userID string) bool,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		discord:     dc,
		states:      states,
		users:       users,
		tokens:      tokens,
		isAdmin:     isAdmin,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// LogoutRequest is the JSON request body for logging out. The Discord access
// token, when the frontend still holds one, gets revoked best-effort.
type LogoutRequest struct {
	DiscordAccessToken string `json:"discord_access_token" validate:"omitempty"`
}

// Login handles GET /auth/login: it generates a state token and redirects the
// browser to the Discord authorization page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	if err := h.states.SaveOAuthState(r.Context(), state); err != nil {
		httputil.WriteError(w, r, fmt.Errorf("save oauth state: %w", err), h.logger)
		return
	}

	http.Redirect(w, r, h.discord.AuthorizeURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback: Discord redirects here with a code and
// the state token. A valid code from a guild member with the required role
// yields a signed session token, delivered to the frontend via redirect.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "missing code or state parameter"},
		})
		return
	}

	ok, err := h.states.ConsumeOAuthState(r.Context(), state)
	if err != nil {
		httputil.WriteError(w, r, fmt.Errorf("consume oauth state: %w", err), h.logger)
		return
	}
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "unknown or expired oauth state"},
		})
		return
	}

	token, err := h.discord.ExchangeCode(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.discord.FetchUser(r.Context(), token.AccessToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	member, err := h.discord.CheckMembership(r.Context(), token.AccessToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !member {
		h.logger.WarnContext(r.Context(), "login rejected, not a guild member",
			slog.String("user_id", user.ID),
		)
		httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "guild membership required"},
		})
		return
	}

	if err := h.users.Upsert(r.Context(), &domain.User{ID: user.ID, Username: user.Username}); err != nil {
		httputil.WriteError(w, r, fmt.Errorf("upsert user: %w", err), h.logger)
		return
	}

	session, err := h.tokens.GenerateSessionToken(user.ID, user.Username, h.isAdmin(user.ID))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	http.Redirect(w, r, fmt.Sprintf("%s/auth/callback?token=%s", h.frontendURL, url.QueryEscape(session)), http.StatusFound)
}

// Logout handles POST /auth/logout. Session tokens are stateless, so logout
// only revokes the Discord access token when the client hands one over.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LogoutRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	if req.DiscordAccessToken != "" {
		if err := h.discord.RevokeToken(r.Context(), req.DiscordAccessToken); err != nil {
			h.logger.WarnContext(r.Context(), "discord token revocation failed",
				slog.String("error", err.Error()),
			)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "logged out",
	}})
}

// UserInfo handles GET /auth/me: it echoes the identity baked into the
// session token.
func (h *AuthHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: middleware.Session{
		UserID:   middleware.UserIDFromContext(r.Context()),
		Username: middleware.UsernameFromContext(r.Context()),
		IsAdmin:  middleware.IsAdminFromContext(r.Context()),
	}})
}
