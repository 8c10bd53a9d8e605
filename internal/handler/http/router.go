package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cjjwisniewski/seeker-functions/internal/auth"
	"github.com/cjjwisniewski/seeker-functions/pkg/health"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
)

// NewRouter creates a chi router with all seeker routes registered.
func NewRouter(
	seekingHandler *SeekingHandler,
	accountHandler *AccountHandler,
	authHandler *AuthHandler,
	statusHandler *StatusHandler,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofAllowedCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("seeker"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if len(pprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, pprofAllowedCIDRs, logger)
	}

	// Discord OAuth endpoints (public)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(jwtManager.ValidateSessionToken))
			r.Get("/me", authHandler.UserInfo)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)

		// Account lifecycle (auth required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(jwtManager.ValidateSessionToken))
			r.Delete("/account", accountHandler.Delete)
		})

		// Seeking list endpoints (auth required)
		r.Route("/seeking", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(jwtManager.ValidateSessionToken))

			r.Get("/", seekingHandler.List)
			r.Post("/", seekingHandler.Add)
			r.Delete("/", seekingHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/users", seekingHandler.ListUsers)
			})
		})
	})

	return r
}

// ContentTypeJSON rejects bodied requests that do not declare a JSON content
// type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && ct != "application/json" && ct != "application/json; charset=utf-8" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
