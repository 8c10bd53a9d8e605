package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cjjwisniewski/seeker-functions/internal/discord"
	"github.com/cjjwisniewski/seeker-functions/internal/domain"
)

const testFrontendURL = "http://localhost:5173"

func newAuthHandler(dc *mockDiscordGateway, states *mockStateStore, users *mockUserRepository, admins ...string) *AuthHandler {
	isAdmin := func(userID string) bool {
		for _, id := range admins {
			if id == userID {
				return true
			}
		}
		return false
	}
	return NewAuthHandler(dc, states, users, testJWTManager(), isAdmin, testFrontendURL, testLogger())
}

func TestAuthHandlerLoginRedirects(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	handler := newAuthHandler(dc, states, new(mockUserRepository))

	states.On("SaveOAuthState", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	dc.On("AuthorizeURL", mock.AnythingOfType("string")).Return("https://discord.com/oauth2/authorize?state=xyz")

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://discord.com/oauth2/authorize?state=xyz", rec.Header().Get("Location"))
	states.AssertExpectations(t)
}

func TestAuthHandlerLoginStateStoreDown(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	handler := newAuthHandler(dc, states, new(mockUserRepository))

	states.On("SaveOAuthState", mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandlerCallback(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	users := new(mockUserRepository)
	handler := newAuthHandler(dc, states, users, "42")

	states.On("ConsumeOAuthState", mock.Anything, "state-1").Return(true, nil)
	dc.On("ExchangeCode", mock.Anything, "code-1").Return(&discord.TokenResponse{AccessToken: "at-1"}, nil)
	dc.On("FetchUser", mock.Anything, "at-1").Return(&discord.User{ID: "42", Username: "gandalf"}, nil)
	dc.On("CheckMembership", mock.Anything, "at-1").Return(true, nil)
	users.On("Upsert", mock.Anything, &domain.User{ID: "42", Username: "gandalf"}).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1&state=state-1", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, testFrontendURL+"/auth/callback", loc.Scheme+"://"+loc.Host+loc.Path)

	// The redirect carries a session token the server itself accepts.
	sess, err := testJWTManager().ValidateSessionToken(loc.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "42", sess.UserID)
	assert.Equal(t, "gandalf", sess.Username)
	assert.True(t, sess.IsAdmin)

	users.AssertExpectations(t)
}

func TestAuthHandlerCallbackUnknownState(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	handler := newAuthHandler(dc, states, new(mockUserRepository))

	states.On("ConsumeOAuthState", mock.Anything, "stale").Return(false, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1&state=stale", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	dc.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
}

func TestAuthHandlerCallbackMissingParams(t *testing.T) {
	handler := newAuthHandler(new(mockDiscordGateway), new(mockStateStore), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerCallbackNotAMember(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	users := new(mockUserRepository)
	handler := newAuthHandler(dc, states, users)

	states.On("ConsumeOAuthState", mock.Anything, "state-1").Return(true, nil)
	dc.On("ExchangeCode", mock.Anything, "code-1").Return(&discord.TokenResponse{AccessToken: "at-1"}, nil)
	dc.On("FetchUser", mock.Anything, "at-1").Return(&discord.User{ID: "99", Username: "saruman"}, nil)
	dc.On("CheckMembership", mock.Anything, "at-1").Return(false, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1&state=state-1", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	users.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAuthHandlerCallbackExchangeFails(t *testing.T) {
	dc := new(mockDiscordGateway)
	states := new(mockStateStore)
	handler := newAuthHandler(dc, states, new(mockUserRepository))

	states.On("ConsumeOAuthState", mock.Anything, "state-1").Return(true, nil)
	dc.On("ExchangeCode", mock.Anything, "bad-code").Return(nil, errors.New("discord token exchange failed: status 400"))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=bad-code&state=state-1", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandlerLogoutRevokesToken(t *testing.T) {
	dc := new(mockDiscordGateway)
	handler := newAuthHandler(dc, new(mockStateStore), new(mockUserRepository))

	dc.On("RevokeToken", mock.Anything, "at-1").Return(nil)

	body := `{"discord_access_token": "at-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	dc.AssertExpectations(t)
}

func TestAuthHandlerLogoutNoBody(t *testing.T) {
	dc := new(mockDiscordGateway)
	handler := newAuthHandler(dc, new(mockStateStore), new(mockUserRepository))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	dc.AssertNotCalled(t, "RevokeToken", mock.Anything, mock.Anything)
}

func TestAuthHandlerLogoutRevocationFailureStillSucceeds(t *testing.T) {
	dc := new(mockDiscordGateway)
	handler := newAuthHandler(dc, new(mockStateStore), new(mockUserRepository))

	dc.On("RevokeToken", mock.Anything, "at-1").Return(errors.New("circuit breaker is open"))

	body := `{"discord_access_token": "at-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandlerUserInfo(t *testing.T) {
	handler := newAuthHandler(new(mockDiscordGateway), new(mockStateStore), new(mockUserRepository))
	mgr := testJWTManager()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, mgr, "u1", "gandalf", true))
	rec := httptest.NewRecorder()

	authed(mgr, handler.UserInfo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, rec.Body.String(), `"username":"gandalf"`)
	assert.Contains(t, rec.Body.String(), `"is_admin":true`)
}
