package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/pkg/database"
)

// CheckStateRepository persists per-user scan freshness.
type CheckStateRepository struct {
	pool database.DBTX
}

// NewCheckStateRepository creates a new PostgreSQL-backed check-state repository.
func NewCheckStateRepository(pool database.DBTX) *CheckStateRepository {
	return &CheckStateRepository{pool: pool}
}

// List returns the full freshness table.
func (r *CheckStateRepository) List(ctx context.Context) ([]domain.CheckState, error) {
	query := `
		SELECT user_id, last_checked
		FROM user_check_state
		ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list check states: %w", err)
	}
	defer rows.Close()

	var states []domain.CheckState
	for rows.Next() {
		var s domain.CheckState
		if err := rows.Scan(&s.UserID, &s.LastChecked); err != nil {
			return nil, fmt.Errorf("scan check state: %w", err)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check states: %w", err)
	}
	return states, nil
}

// Delete removes a user's freshness record. Deleting an absent record is not
// an error.
func (r *CheckStateRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM user_check_state WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete check state: %w", err)
	}
	return nil
}

// Upsert replaces the user's last-checked timestamp unconditionally.
func (r *CheckStateRepository) Upsert(ctx context.Context, userID string, lastChecked time.Time) error {
	query := `
		INSERT INTO user_check_state (user_id, last_checked)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_checked = EXCLUDED.last_checked`

	if _, err := r.pool.Exec(ctx, query, userID, lastChecked.UTC()); err != nil {
		return fmt.Errorf("upsert check state: %w", err)
	}
	return nil
}
