package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cjjwisniewski/seeker-functions/internal/repository"
)

// FreshnessService selects which user's seeking list to scan next and records
// scan completion. Selection is oldest-first: users without a check-state row
// have never been scanned and outrank every user that has one.
type FreshnessService struct {
	users       repository.UserRepository
	checkStates repository.CheckStateRepository
	interval    time.Duration
	logger      *slog.Logger
}

// NewFreshnessService creates a freshness service with the given minimum
// interval between scans of the same user.
func NewFreshnessService(
	users repository.UserRepository,
	checkStates repository.CheckStateRepository,
	interval time.Duration,
	logger *slog.Logger,
) *FreshnessService {
	return &FreshnessService{
		users:       users,
		checkStates: checkStates,
		interval:    interval,
		logger:      logger,
	}
}

// SelectNextUser returns the id of the stalest eligible user, or ok=false if
// every user has been checked within the interval. At most one user is
// returned per call, which bounds per-tick work regardless of how many users
// exist. Ties on equal staleness break by user id.
func (s *FreshnessService) SelectNextUser(ctx context.Context, now time.Time) (string, bool, error) {
	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		return "", false, fmt.Errorf("enumerate users: %w", err)
	}
	if len(userIDs) == 0 {
		return "", false, nil
	}

	states, err := s.checkStates.List(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load check states: %w", err)
	}
	lastChecked := make(map[string]time.Time, len(states))
	for _, st := range states {
		lastChecked[st.UserID] = st.LastChecked
	}

	cutoff := now.Add(-s.interval)

	var (
		selected string
		oldest   time.Time
		found    bool
	)
	// userIDs arrive sorted, so keeping the first winner makes ties
	// deterministic by user id. A missing row reads as the zero time, which
	// sorts before any real timestamp.
	for _, id := range userIDs {
		ts := lastChecked[id]
		if ts.After(cutoff) {
			continue
		}
		if !found || ts.Before(oldest) {
			selected = id
			oldest = ts
			found = true
		}
	}

	if !found {
		s.logger.InfoContext(ctx, "no user eligible for stock check",
			slog.Int("users", len(userIDs)),
			slog.Duration("interval", s.interval),
		)
		return "", false, nil
	}
	return selected, true, nil
}

// MarkScanned upserts the user's last-checked timestamp unconditionally. The
// caller logs failures and continues; a stale record just means the user is
// retried next tick.
func (s *FreshnessService) MarkScanned(ctx context.Context, userID string, t time.Time) error {
	if err := s.checkStates.Upsert(ctx, userID, t); err != nil {
		return fmt.Errorf("mark user %s scanned: %w", userID, err)
	}
	return nil
}
