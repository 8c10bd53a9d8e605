package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/repository"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

// StockQuerier is the marketplace call the reconciler drives. Satisfied by
// *cardtrader.Client; the client paces itself, so the reconciler just calls
// sequentially.
type StockQuerier interface {
	QueryStock(ctx context.Context, blueprintID int64, language, finish string) (domain.StockResult, error)
}

// Reconciler runs one full stock scan over one user's seeking list, diffing
// live marketplace state against the stored triples and writing back only on
// change.
type Reconciler struct {
	seeking  repository.SeekingRepository
	resolver *Resolver
	logger   *slog.Logger
}

// NewReconciler creates a reconciliation engine.
func NewReconciler(seeking repository.SeekingRepository, resolver *Resolver, logger *slog.Logger) *Reconciler {
	return &Reconciler{seeking: seeking, resolver: resolver, logger: logger}
}

// ScanUser scans every item on the user's list, one at a time. A single bad
// item never aborts the scan; the only abort is the marketplace's rate-limit
// rejection, and even then ScanUser returns normally so the caller still
// marks freshness. The returned error is only for failures to load the list
// at all.
func (r *Reconciler) ScanUser(ctx context.Context, userID string, client StockQuerier) (domain.ScanSummary, error) {
	var summary domain.ScanSummary

	items, err := r.seeking.ListByUser(ctx, userID)
	if err != nil {
		return summary, fmt.Errorf("load seeking list for %s: %w", userID, err)
	}

	for i := range items {
		item := &items[i]
		summary.ItemsSeen++

		if item.CollectorNumber == "" || item.Language == "" || item.Finish == "" {
			r.logger.WarnContext(ctx, "skipping item with malformed key",
				slog.String("user_id", userID),
				slog.String("set_code", item.SetCode),
				slog.String("row_key", item.RowKey()),
			)
			continue
		}

		rateLimited, err := r.reconcileItem(ctx, item, client, &summary)
		if err != nil {
			// Per-item failures are logged and skipped; the item keeps its
			// previous state until the next scan.
			r.logger.ErrorContext(ctx, "item reconciliation failed",
				slog.String("user_id", userID),
				slog.String("set_code", item.SetCode),
				slog.String("row_key", item.RowKey()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rateLimited {
			r.logger.WarnContext(ctx, "marketplace rate limit hit, aborting scan",
				slog.String("user_id", userID),
				slog.Int("items_seen", summary.ItemsSeen),
				slog.Int("items_remaining", len(items)-summary.ItemsSeen),
			)
			summary.RateLimited = true
			break
		}
	}

	r.logger.InfoContext(ctx, "user scan complete",
		slog.String("user_id", userID),
		slog.Int("items_seen", summary.ItemsSeen),
		slog.Int("api_calls", summary.APICalls),
		slog.Int("items_updated", summary.ItemsUpdated),
		slog.Bool("rate_limited", summary.RateLimited),
	)
	return summary, nil
}

// reconcileItem handles one item. The bool result reports a rate-limit
// rejection, which aborts the remaining items.
func (r *Reconciler) reconcileItem(ctx context.Context, item *domain.SeekingItem, client StockQuerier, summary *domain.ScanSummary) (bool, error) {
	blueprintID, ok, err := r.resolver.Resolve(ctx, item.SetCode, item.Name)
	if err != nil {
		return false, err
	}

	if !ok {
		// No catalog match: clear the stored triple, but only if it is not
		// already cleared. No marketplace call is made.
		if item.MarketplaceState().Cleared() {
			return false, nil
		}
		if err := r.seeking.UpdateMarketplaceState(ctx, item.UserID, item.SetCode, item.RowKey(), domain.MarketplaceState{}); err != nil {
			return false, err
		}
		summary.ItemsUpdated++
		return false, nil
	}

	summary.APICalls++
	result, err := client.QueryStock(ctx, blueprintID, item.Language, item.Finish)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateLimited) {
			return true, nil
		}
		return false, err
	}

	desired := domain.MarketplaceState{
		Stock:         result.InStock,
		LowPriceCents: result.LowPriceCents,
		BlueprintID:   &blueprintID,
	}
	if desired.Equal(item.MarketplaceState()) {
		return false, nil
	}

	if err := r.seeking.UpdateMarketplaceState(ctx, item.UserID, item.SetCode, item.RowKey(), desired); err != nil {
		return false, err
	}
	summary.ItemsUpdated++
	return false, nil
}
