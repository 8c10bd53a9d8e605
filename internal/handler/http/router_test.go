package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/service"
	"github.com/cjjwisniewski/seeker-functions/pkg/health"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
)

func newTestRouter(seekingRepo *mockSeekingRepository, userRepo *mockUserRepository) http.Handler {
	logger := testLogger()
	mgr := testJWTManager()

	seekingHandler := NewSeekingHandler(service.NewSeekingService(seekingRepo, userRepo, logger), logger)
	accountHandler := NewAccountHandler(service.NewAccountService(userRepo, new(mockCheckStateRepository), logger), logger)
	authHandler := newAuthHandler(new(mockDiscordGateway), new(mockStateStore), userRepo)
	statusHandler := NewStatusHandler(map[string]health.Checker{
		"postgres": func(ctx context.Context) error { return nil },
	})

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error { return nil })

	return NewRouter(seekingHandler, accountHandler, authHandler, statusHandler, mgr, healthHandler, logger, middleware.DefaultCORSConfig(), nil)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSeekingRequiresAuth(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/seeking", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterSeekingAuthorized(t *testing.T) {
	seekingRepo := new(mockSeekingRepository)
	seekingRepo.On("ListByUser", mock.Anything, "u1").Return([]domain.SeekingItem{}, nil)
	router := newTestRouter(seekingRepo, new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/seeking", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, testJWTManager(), "u1", "gandalf", false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	seekingRepo.AssertExpectations(t)
}

func TestRouterAdminRouteForbidden(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/seeking/users", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, testJWTManager(), "u1", "gandalf", false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterStatusEndpointPublic(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsWrongContentType(t *testing.T) {
	router := newTestRouter(new(mockSeekingRepository), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/seeking", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, testJWTManager(), "u1", "gandalf", false))
	req.ContentLength = 12
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
