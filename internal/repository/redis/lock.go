// Package redis holds the Redis-backed coordination primitives: the advisory
// single-flight lock for the stock-check tick and the OAuth state store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockCheckLockKey = "seeker:stock_check:lock"
	oauthStatePrefix  = "seeker:oauth_state:"
	oauthStateTTL     = 10 * time.Minute
)

// Coordinator wraps the Redis client for scheduler locking and OAuth state.
type Coordinator struct {
	client *redis.Client
}

// NewCoordinator creates a new Redis coordinator.
func NewCoordinator(client *redis.Client) *Coordinator {
	return &Coordinator{client: client}
}

// AcquireStockCheckLock takes the advisory single-flight lock for one tick.
// Returns false if another tick currently holds it. The TTL bounds lock
// leakage if a tick dies mid-scan; the lock is advisory, so an expired lock
// at worst allows a benign double scan.
func (c *Coordinator) AcquireStockCheckLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, stockCheckLockKey, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire stock check lock: %w", err)
	}
	return ok, nil
}

// ReleaseStockCheckLock drops the advisory lock after a tick completes.
func (c *Coordinator) ReleaseStockCheckLock(ctx context.Context) error {
	if err := c.client.Del(ctx, stockCheckLockKey).Err(); err != nil {
		return fmt.Errorf("release stock check lock: %w", err)
	}
	return nil
}

// SaveOAuthState stores a login-flow state token for later callback
// verification.
func (c *Coordinator) SaveOAuthState(ctx context.Context, state string) error {
	if err := c.client.Set(ctx, oauthStatePrefix+state, 1, oauthStateTTL).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState verifies and deletes a state token. Returns false for an
// unknown or already-used token.
func (c *Coordinator) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	deleted, err := c.client.Del(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("consume oauth state: %w", err)
	}
	return deleted > 0, nil
}
