package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
)

// --- Mock repositories ---

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

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) FindByName(ctx context.Context, setCode, name string) ([]domain.CatalogEntry, error) {
	args := m.Called(ctx, setCode, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogEntry), args.Error(1)
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

// --- Mock marketplace client ---

type mockStockQuerier struct {
	mock.Mock
}

func (m *mockStockQuerier) QueryStock(ctx context.Context, blueprintID int64, language, finish string) (domain.StockResult, error) {
	args := m.Called(ctx, blueprintID, language, finish)
	return args.Get(0).(domain.StockResult), args.Error(1)
}
