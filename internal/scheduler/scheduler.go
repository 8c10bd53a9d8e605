// Package scheduler drives the periodic stock-check tick: pick the stalest
// user, scan their seeking list, mark them checked.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/service"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

var (
	stockScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_scans_total",
			Help: "Total number of stock-check ticks by outcome",
		},
		[]string{"outcome"},
	)

	stockItemsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_items_updated_total",
			Help: "Total number of seeking items whose marketplace state changed",
		},
	)

	stockAPICalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_marketplace_calls_total",
			Help: "Total number of marketplace stock queries issued",
		},
	)
)

// FreshnessSelector picks the next user and records scan completion.
type FreshnessSelector interface {
	SelectNextUser(ctx context.Context, now time.Time) (string, bool, error)
	MarkScanned(ctx context.Context, userID string, t time.Time) error
}

// Scanner runs one user's reconciliation scan.
type Scanner interface {
	ScanUser(ctx context.Context, userID string, client service.StockQuerier) (domain.ScanSummary, error)
}

// Locker is the advisory single-flight lock around one tick.
type Locker interface {
	AcquireStockCheckLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseStockCheckLock(ctx context.Context) error
}

// UserGetter checks that the selected user still exists when the scan opens.
type UserGetter interface {
	Get(ctx context.Context, id string) (*domain.User, error)
}

// StockChecker is the tick entry point. No error escapes Run: every failure
// becomes a log line plus a skip/abort decision, since a timer trigger has no
// caller to report to.
type StockChecker struct {
	freshness     FreshnessSelector
	scanner       Scanner
	locker        Locker
	users         UserGetter
	clientFactory func() service.StockQuerier
	lockTTL       time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewStockChecker creates the stock-check tick runner. clientFactory builds a
// fresh marketplace client per tick so the rate-limit pacer state never leaks
// across invocations.
func NewStockChecker(
	freshness FreshnessSelector,
	scanner Scanner,
	locker Locker,
	users UserGetter,
	clientFactory func() service.StockQuerier,
	lockTTL time.Duration,
	logger *slog.Logger,
) *StockChecker {
	return &StockChecker{
		freshness:     freshness,
		scanner:       scanner,
		locker:        locker,
		users:         users,
		clientFactory: clientFactory,
		lockTTL:       lockTTL,
		now:           time.Now,
		logger:        logger,
	}
}

// Run executes one tick.
func (c *StockChecker) Run(ctx context.Context) {
	acquired, err := c.locker.AcquireStockCheckLock(ctx, c.lockTTL)
	if err != nil {
		c.logger.ErrorContext(ctx, "stock check lock acquisition failed", slog.String("error", err.Error()))
		stockScansTotal.WithLabelValues("lock_error").Inc()
		return
	}
	if !acquired {
		c.logger.InfoContext(ctx, "stock check already running, skipping tick")
		stockScansTotal.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := c.locker.ReleaseStockCheckLock(ctx); err != nil {
			c.logger.ErrorContext(ctx, "stock check lock release failed", slog.String("error", err.Error()))
		}
	}()

	now := c.now()
	userID, ok, err := c.freshness.SelectNextUser(ctx, now)
	if err != nil {
		c.logger.ErrorContext(ctx, "user selection failed", slog.String("error", err.Error()))
		stockScansTotal.WithLabelValues("selection_error").Inc()
		return
	}
	if !ok {
		stockScansTotal.WithLabelValues("none_eligible").Inc()
		return
	}

	c.logger.InfoContext(ctx, "stock check selected user", slog.String("user_id", userID))

	if _, err := c.users.Get(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The account disappeared between selection and open; treat as a
			// completed empty scan so it stops winning selection.
			c.logger.WarnContext(ctx, "selected user no longer exists, marking checked",
				slog.String("user_id", userID))
			c.markScanned(ctx, userID)
			stockScansTotal.WithLabelValues("user_missing").Inc()
			return
		}
		c.logger.ErrorContext(ctx, "user lookup failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		stockScansTotal.WithLabelValues("storage_error").Inc()
		return
	}

	summary, err := c.scanner.ScanUser(ctx, userID, c.clientFactory())
	if err != nil {
		// The list could not be loaded at all; freshness is still advanced so
		// one broken user cannot monopolize the scheduler.
		c.logger.ErrorContext(ctx, "user scan failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		stockScansTotal.WithLabelValues("scan_error").Inc()
	} else {
		stockItemsUpdated.Add(float64(summary.ItemsUpdated))
		stockAPICalls.Add(float64(summary.APICalls))
		if summary.RateLimited {
			stockScansTotal.WithLabelValues("rate_limited").Inc()
		} else {
			stockScansTotal.WithLabelValues("completed").Inc()
		}
	}

	// Partial progress is accepted and not retried within the same tick.
	c.markScanned(ctx, userID)
}

func (c *StockChecker) markScanned(ctx context.Context, userID string) {
	if err := c.freshness.MarkScanned(ctx, userID, c.now()); err != nil {
		c.logger.ErrorContext(ctx, "freshness write failed, user will be retried next tick",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
