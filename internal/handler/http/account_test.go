package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cjjwisniewski/seeker-functions/internal/service"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

func newAccountHandler(users *mockUserRepository, checkStates *mockCheckStateRepository) *AccountHandler {
	svc := service.NewAccountService(users, checkStates, testLogger())
	return NewAccountHandler(svc, testLogger())
}

func TestAccountHandlerDelete(t *testing.T) {
	users := new(mockUserRepository)
	checkStates := new(mockCheckStateRepository)
	handler := newAccountHandler(users, checkStates)
	mgr := testJWTManager()

	users.On("Delete", mock.Anything, "u1").Return(nil)
	checkStates.On("Delete", mock.Anything, "u1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/account", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, mgr, "u1", "gandalf", false))
	rec := httptest.NewRecorder()

	authed(mgr, handler.Delete).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "account deleted")
	users.AssertExpectations(t)
	checkStates.AssertExpectations(t)
}

func TestAccountHandlerDeleteAlreadyGone(t *testing.T) {
	users := new(mockUserRepository)
	checkStates := new(mockCheckStateRepository)
	handler := newAccountHandler(users, checkStates)
	mgr := testJWTManager()

	users.On("Delete", mock.Anything, "ghost").Return(apperrors.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/account", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, mgr, "ghost", "wraith", false))
	rec := httptest.NewRecorder()

	authed(mgr, handler.Delete).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	checkStates.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAccountHandlerDeleteRequiresAuth(t *testing.T) {
	handler := newAccountHandler(new(mockUserRepository), new(mockCheckStateRepository))
	mgr := testJWTManager()

	req := httptest.NewRequest(http.MethodDelete, "/api/account", nil)
	rec := httptest.NewRecorder()

	authed(mgr, handler.Delete).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
