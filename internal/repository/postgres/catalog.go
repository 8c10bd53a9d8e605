package postgres

import (
	"context"
	"fmt"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/pkg/database"
)

// CatalogRepository reads the harvested Cardtrader blueprint catalog. The
// harvest job writes these rows out of band; the resolver only queries them.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// FindByName returns all catalog entries matching the set code and exact
// display name. Ordering by blueprint id keeps the "first match" choice for
// ambiguous names deterministic across runs.
func (r *CatalogRepository) FindByName(ctx context.Context, setCode, name string) ([]domain.CatalogEntry, error) {
	query := `
		SELECT set_code, name, collector_number, blueprint_id, harvested_at
		FROM catalog_blueprints
		WHERE set_code = $1 AND name = $2
		ORDER BY blueprint_id`

	rows, err := r.pool.Query(ctx, query, setCode, name)
	if err != nil {
		return nil, fmt.Errorf("find catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.SetCode, &e.Name, &e.CollectorNumber, &e.BlueprintID, &e.HarvestedAt); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}
	return entries, nil
}
