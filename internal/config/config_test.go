package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "seeker", cfg.PostgresDB)
	assert.InDelta(t, 24.0, cfg.CheckIntervalHours, 0.0001)
	assert.InDelta(t, 1.1, cfg.RateLimitSeconds, 0.0001)
	assert.Equal(t, "https://api.cardtrader.com/api/v2", cfg.CardtraderBaseURL)
	assert.Equal(t, []string{"http://localhost:5173", "https://seeker.cityoftraitors.com"}, cfg.AllowedOrigins)
}

func TestLoad_IntervalHelpers(t *testing.T) {
	t.Setenv("CHECK_INTERVAL_HOURS", "12")
	t.Setenv("RATE_LIMIT_SECONDS", "2.5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.CheckInterval())
	assert.Equal(t, 2500*time.Millisecond, cfg.RateLimit())
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_ZeroCheckInterval(t *testing.T) {
	t.Setenv("CHECK_INTERVAL_HOURS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK_INTERVAL_HOURS must be > 0")
}

func TestLoad_NegativeRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_SECONDS", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_SECONDS must be > 0")
}

func TestIsAdmin(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "111,222")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.IsAdmin("111"))
	assert.True(t, cfg.IsAdmin("222"))
	assert.False(t, cfg.IsAdmin("333"))
	assert.False(t, cfg.IsAdmin(""))
}
