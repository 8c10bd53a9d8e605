package repository

import (
	"context"
	"time"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
)

// SeekingRepository defines persistence for per-user seeking lists.
type SeekingRepository interface {
	// Create inserts a new seeking item. Returns ErrAlreadyExists if the
	// (user, set code, row key) address is already taken.
	Create(ctx context.Context, item *domain.SeekingItem) error

	// Get retrieves one item by its partition/row-key address.
	Get(ctx context.Context, userID, setCode, rowKey string) (*domain.SeekingItem, error)

	// ListByUser returns all items on a user's seeking list, ordered by set
	// code then row key.
	ListByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error)

	// ListInStockByUser returns the user's items currently marked in stock.
	ListInStockByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error)

	// Delete removes one item. Returns ErrNotFound if no row matched.
	Delete(ctx context.Context, userID, setCode, rowKey string) error

	// UpdateMarketplaceState merges the stock/price/blueprint triple onto an
	// existing item without touching its descriptive fields.
	UpdateMarketplaceState(ctx context.Context, userID, setCode, rowKey string, state domain.MarketplaceState) error
}

// CatalogRepository reads the locally harvested Cardtrader blueprint catalog.
type CatalogRepository interface {
	// FindByName returns all catalog entries matching the set code and exact
	// display name, ordered by blueprint id.
	FindByName(ctx context.Context, setCode, name string) ([]domain.CatalogEntry, error)
}

// CheckStateRepository persists per-user scan freshness.
type CheckStateRepository interface {
	// List returns the full freshness table.
	List(ctx context.Context) ([]domain.CheckState, error)

	// Upsert replaces the user's last-checked timestamp unconditionally.
	Upsert(ctx context.Context, userID string, lastChecked time.Time) error

	// Delete removes a user's freshness record; absent records are not an
	// error.
	Delete(ctx context.Context, userID string) error
}

// UserRepository persists provisioned user accounts.
type UserRepository interface {
	// Upsert creates the user row on first login and refreshes the username
	// on subsequent logins.
	Upsert(ctx context.Context, user *domain.User) error

	// Get retrieves a user by id.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Delete removes the user row, cascading their seeking list. Returns
	// ErrNotFound if the account is already gone.
	Delete(ctx context.Context, id string) error

	// ListIDs returns all known user ids, sorted.
	ListIDs(ctx context.Context) ([]string, error)
}
