package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/pkg/logger"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFreshness(users *mockUserRepository, states *mockCheckStateRepository) *FreshnessService {
	return NewFreshnessService(users, states, 24*time.Hour, logger.New("freshness-test", "error"))
}

func TestSelectNextUser_NeverScannedBeatsScanned(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	users.On("ListIDs", mock.Anything).Return([]string{"u1", "u2", "u3"}, nil)
	// u1 scanned long ago and is eligible, u3 is fresh, u2 has no record.
	states.On("List", mock.Anything).Return([]domain.CheckState{
		{UserID: "u1", LastChecked: testNow.Add(-48 * time.Hour)},
		{UserID: "u3", LastChecked: testNow.Add(-time.Hour)},
	}, nil)

	selected, ok, err := svc.SelectNextUser(context.Background(), testNow)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u2", selected)
}

func TestSelectNextUser_OldestFirst(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	users.On("ListIDs", mock.Anything).Return([]string{"u1", "u2"}, nil)
	states.On("List", mock.Anything).Return([]domain.CheckState{
		{UserID: "u1", LastChecked: testNow.Add(-30 * time.Hour)},
		{UserID: "u2", LastChecked: testNow.Add(-50 * time.Hour)},
	}, nil)

	selected, ok, err := svc.SelectNextUser(context.Background(), testNow)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u2", selected)
}

func TestSelectNextUser_RecentlyCheckedExcluded(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	users.On("ListIDs", mock.Anything).Return([]string{"u1", "u2"}, nil)
	states.On("List", mock.Anything).Return([]domain.CheckState{
		{UserID: "u1", LastChecked: testNow.Add(-time.Hour)},
		{UserID: "u2", LastChecked: testNow.Add(-23 * time.Hour)},
	}, nil)

	_, ok, err := svc.SelectNextUser(context.Background(), testNow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectNextUser_TiesBreakByUserID(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	stale := testNow.Add(-48 * time.Hour)
	users.On("ListIDs", mock.Anything).Return([]string{"u1", "u2", "u3"}, nil)
	states.On("List", mock.Anything).Return([]domain.CheckState{
		{UserID: "u1", LastChecked: stale},
		{UserID: "u2", LastChecked: stale},
		{UserID: "u3", LastChecked: stale},
	}, nil)

	selected, ok, err := svc.SelectNextUser(context.Background(), testNow)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", selected)
}

func TestSelectNextUser_NoUsers(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	users.On("ListIDs", mock.Anything).Return([]string{}, nil)

	_, ok, err := svc.SelectNextUser(context.Background(), testNow)
	require.NoError(t, err)
	assert.False(t, ok)
	states.AssertNotCalled(t, "List", mock.Anything)
}

func TestSelectNextUser_StateLoadError(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	users.On("ListIDs", mock.Anything).Return([]string{"u1"}, nil)
	states.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

	_, ok, err := svc.SelectNextUser(context.Background(), testNow)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMarkScanned(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	states.On("Upsert", mock.Anything, "u1", testNow).Return(nil)

	require.NoError(t, svc.MarkScanned(context.Background(), "u1", testNow))
	states.AssertExpectations(t)
}

func TestMarkScanned_WriteFailureReturned(t *testing.T) {
	users := new(mockUserRepository)
	states := new(mockCheckStateRepository)
	svc := newFreshness(users, states)

	states.On("Upsert", mock.Anything, "u1", testNow).Return(errors.New("write failed"))

	err := svc.MarkScanned(context.Background(), "u1", testNow)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mark user u1 scanned")
}
