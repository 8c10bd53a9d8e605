package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/cjjwisniewski/seeker-functions/pkg/config"
)

// Config holds all configuration for the seeker service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"seeker"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"seeker_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"seeker"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (sessions, scheduler lock)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cardtrader marketplace API
	CardtraderAPIKey  string `env:"CARDTRADER_API_KEY"`
	CardtraderBaseURL string `env:"CARDTRADER_BASE_URL" envDefault:"https://api.cardtrader.com/api/v2"`

	// Stock check scheduling
	CheckIntervalHours float64 `env:"CHECK_INTERVAL_HOURS" envDefault:"24"`
	RateLimitSeconds   float64 `env:"RATE_LIMIT_SECONDS" envDefault:"1.1"`
	StockCheckSchedule string  `env:"STOCK_CHECK_SCHEDULE" envDefault:"*/5 * * * *"`

	// Stock digest
	DigestSchedule   string `env:"STOCK_DIGEST_SCHEDULE" envDefault:"0 16 * * *"`
	DigestWebhookURL string `env:"STOCK_DIGEST_DISCORD_WEBHOOK_URL"`

	// Discord OAuth
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI"`
	DiscordGuildID      string `env:"DISCORD_GUILD_ID"`
	DiscordRoleID       string `env:"DISCORD_ROLE_ID"`

	// Frontend URL the OAuth callback redirects back to
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// Sessions
	JWTSecret       string        `env:"JWT_SECRET"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"168h"`

	// Admin user ids (Discord snowflakes), comma separated
	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,https://seeker.cityoftraitors.com" envSeparator:","`

	// pprof endpoints are only reachable from these CIDRs; empty disables them
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load seeker config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.CardtraderBaseURL == "" {
		return fmt.Errorf("CARDTRADER_BASE_URL is required")
	}
	if c.CheckIntervalHours <= 0 {
		return fmt.Errorf("CHECK_INTERVAL_HOURS must be > 0, got %v", c.CheckIntervalHours)
	}
	if c.RateLimitSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_SECONDS must be > 0, got %v", c.RateLimitSeconds)
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be > 0, got %v", c.SessionLifetime)
	}
	return nil
}

// CheckInterval returns the minimum time between stock scans for one user.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalHours * float64(time.Hour))
}

// RateLimit returns the minimum spacing between marketplace API calls.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// IsAdmin reports whether the given Discord user id is configured as an admin.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
