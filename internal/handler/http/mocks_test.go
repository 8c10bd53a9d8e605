package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cjjwisniewski/seeker-functions/internal/discord"
	"github.com/cjjwisniewski/seeker-functions/internal/domain"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockSeekingRepository struct {
	mock.Mock
}

func (m *mockSeekingRepository) Create(ctx context.Context, item *domain.SeekingItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockSeekingRepository) Get(ctx context.Context, userID, setCode, rowKey string) (*domain.SeekingItem, error) {
	args := m.Called(ctx, userID, setCode, rowKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeekingItem), args.Error(1)
}

func (m *mockSeekingRepository) ListByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeekingItem), args.Error(1)
}

func (m *mockSeekingRepository) ListInStockByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeekingItem), args.Error(1)
}

func (m *mockSeekingRepository) Delete(ctx context.Context, userID, setCode, rowKey string) error {
	args := m.Called(ctx, userID, setCode, rowKey)
	return args.Error(0)
}

func (m *mockSeekingRepository) UpdateMarketplaceState(ctx context.Context, userID, setCode, rowKey string, state domain.MarketplaceState) error {
	args := m.Called(ctx, userID, setCode, rowKey, state)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockCheckStateRepository struct {
	mock.Mock
}

func (m *mockCheckStateRepository) List(ctx context.Context) ([]domain.CheckState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckState), args.Error(1)
}

func (m *mockCheckStateRepository) Upsert(ctx context.Context, userID string, lastChecked time.Time) error {
	args := m.Called(ctx, userID, lastChecked)
	return args.Error(0)
}

func (m *mockCheckStateRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// ============================================================================
// Mock Discord gateway and OAuth state store
// ============================================================================

type mockDiscordGateway struct {
	mock.Mock
}

func (m *mockDiscordGateway) AuthorizeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockDiscordGateway) ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discord.TokenResponse), args.Error(1)
}

func (m *mockDiscordGateway) FetchUser(ctx context.Context, accessToken string) (*discord.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discord.User), args.Error(1)
}

func (m *mockDiscordGateway) CheckMembership(ctx context.Context, accessToken string) (bool, error) {
	args := m.Called(ctx, accessToken)
	return args.Bool(0), args.Error(1)
}

func (m *mockDiscordGateway) RevokeToken(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

type mockStateStore struct {
	mock.Mock
}

func (m *mockStateStore) SaveOAuthState(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}
