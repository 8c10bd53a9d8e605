package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/pkg/database"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

// SeekingRepository implements repository.SeekingRepository using PostgreSQL.
// Items are addressed by (user_id, set_code, row_key); the row key is stored
// denormalized alongside its collector number / language / finish parts.
type SeekingRepository struct {
	pool database.DBTX
}

// NewSeekingRepository creates a new PostgreSQL-backed seeking repository.
func NewSeekingRepository(pool database.DBTX) *SeekingRepository {
	return &SeekingRepository{pool: pool}
}

const seekingColumns = `user_id, scryfall_id, name, set_code, collector_number, language, finish,
		oracle_id, image_uri, cardtrader_stock, cardtrader_low_price_cents, cardtrader_blueprint_id,
		created_at, updated_at`

func scanSeekingItem(row pgx.Row) (*domain.SeekingItem, error) {
	var (
		item     domain.SeekingItem
		rawStock *string
		rawPrice *float64
	)
	err := row.Scan(
		&item.UserID,
		&item.ScryfallID,
		&item.Name,
		&item.SetCode,
		&item.CollectorNumber,
		&item.Language,
		&item.Finish,
		&item.OracleID,
		&item.ImageURI,
		&rawStock,
		&rawPrice,
		&item.BlueprintID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Legacy rows store the stock flag as text and the price as a float;
	// normalize to the tri-state boolean and integer cents on read.
	item.Stock = domain.NormalizeStock(rawStock)
	item.LowPriceCents = domain.NormalizePriceCents(rawPrice)
	return &item, nil
}

// Create inserts a new seeking item.
func (r *SeekingRepository) Create(ctx context.Context, item *domain.SeekingItem) error {
	query := `
		INSERT INTO seeking_items (` + seekingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, query,
		item.UserID,
		item.ScryfallID,
		item.Name,
		item.SetCode,
		item.CollectorNumber,
		item.Language,
		item.Finish,
		item.OracleID,
		item.ImageURI,
		fmt.Sprintf("%t", item.Stock),
		nil,
		nil,
		now,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("create seeking item: %w", err)
	}
	return nil
}

// Get retrieves one item by its partition/row-key address.
func (r *SeekingRepository) Get(ctx context.Context, userID, setCode, rowKey string) (*domain.SeekingItem, error) {
	cn, lang, finish, err := domain.ParseRowKey(rowKey)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	query := `
		SELECT ` + seekingColumns + `
		FROM seeking_items
		WHERE user_id = $1 AND set_code = $2 AND collector_number = $3 AND language = $4 AND finish = $5`

	item, err := scanSeekingItem(r.pool.QueryRow(ctx, query, userID, setCode, cn, lang, finish))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get seeking item: %w", err)
	}
	return item, nil
}

// ListByUser returns all items on a user's seeking list.
func (r *SeekingRepository) ListByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error) {
	query := `
		SELECT ` + seekingColumns + `
		FROM seeking_items
		WHERE user_id = $1
		ORDER BY set_code, collector_number, language, finish`

	return r.listItems(ctx, query, userID)
}

// ListInStockByUser returns the user's items currently marked in stock.
func (r *SeekingRepository) ListInStockByUser(ctx context.Context, userID string) ([]domain.SeekingItem, error) {
	query := `
		SELECT ` + seekingColumns + `
		FROM seeking_items
		WHERE user_id = $1 AND cardtrader_stock = 'true'
		ORDER BY set_code, collector_number, language, finish`

	return r.listItems(ctx, query, userID)
}

func (r *SeekingRepository) listItems(ctx context.Context, query string, args ...any) ([]domain.SeekingItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list seeking items: %w", err)
	}
	defer rows.Close()

	var items []domain.SeekingItem
	for rows.Next() {
		item, err := scanSeekingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seeking item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seeking items: %w", err)
	}
	return items, nil
}

// Delete removes one item.
func (r *SeekingRepository) Delete(ctx context.Context, userID, setCode, rowKey string) error {
	cn, lang, finish, err := domain.ParseRowKey(rowKey)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	query := `
		DELETE FROM seeking_items
		WHERE user_id = $1 AND set_code = $2 AND collector_number = $3 AND language = $4 AND finish = $5`

	tag, err := r.pool.Exec(ctx, query, userID, setCode, cn, lang, finish)
	if err != nil {
		return fmt.Errorf("delete seeking item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateMarketplaceState merges the stock/price/blueprint triple onto an
// existing item. Descriptive fields are left untouched (partial update).
func (r *SeekingRepository) UpdateMarketplaceState(ctx context.Context, userID, setCode, rowKey string, state domain.MarketplaceState) error {
	cn, lang, finish, err := domain.ParseRowKey(rowKey)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	query := `
		UPDATE seeking_items
		SET cardtrader_stock = $6,
		    cardtrader_low_price_cents = $7,
		    cardtrader_blueprint_id = $8,
		    updated_at = $9
		WHERE user_id = $1 AND set_code = $2 AND collector_number = $3 AND language = $4 AND finish = $5`

	var price *float64
	if state.LowPriceCents != nil {
		f := float64(*state.LowPriceCents)
		price = &f
	}

	tag, err := r.pool.Exec(ctx, query,
		userID, setCode, cn, lang, finish,
		fmt.Sprintf("%t", state.Stock),
		price,
		state.BlueprintID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update marketplace state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
