package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/cjjwisniewski/seeker-functions/internal/auth"
	"github.com/cjjwisniewski/seeker-functions/internal/cardtrader"
	"github.com/cjjwisniewski/seeker-functions/internal/config"
	"github.com/cjjwisniewski/seeker-functions/internal/digest"
	"github.com/cjjwisniewski/seeker-functions/internal/discord"
	handler "github.com/cjjwisniewski/seeker-functions/internal/handler/http"
	"github.com/cjjwisniewski/seeker-functions/internal/repository/postgres"
	redisrepo "github.com/cjjwisniewski/seeker-functions/internal/repository/redis"
	"github.com/cjjwisniewski/seeker-functions/internal/scheduler"
	"github.com/cjjwisniewski/seeker-functions/internal/service"
	"github.com/cjjwisniewski/seeker-functions/migrations"
	"github.com/cjjwisniewski/seeker-functions/pkg/database"
	"github.com/cjjwisniewski/seeker-functions/pkg/health"
	"github.com/cjjwisniewski/seeker-functions/pkg/middleware"
)

// stockCheckLockTTL bounds how long a crashed scan can block the next tick.
const stockCheckLockTTL = 10 * time.Minute

// App wires together all dependencies and runs the seeker service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	redisClient *redis.Client
	cron        *cron.Cron
	httpServer  *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "seeker")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis (scheduler lock, OAuth state).
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost))

	// Build the dependency graph.
	coordinator := redisrepo.NewCoordinator(redisClient)
	seekingRepo := postgres.NewSeekingRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	checkStateRepo := postgres.NewCheckStateRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionLifetime)
	discordClient := discord.NewClient(discord.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectURI,
		GuildID:      cfg.DiscordGuildID,
		RoleID:       cfg.DiscordRoleID,
	}, logger)

	seekingService := service.NewSeekingService(seekingRepo, userRepo, logger)
	accountService := service.NewAccountService(userRepo, checkStateRepo, logger)
	freshness := service.NewFreshnessService(userRepo, checkStateRepo, cfg.CheckInterval(), logger)
	resolver := service.NewResolver(catalogRepo, logger)
	reconciler := service.NewReconciler(seekingRepo, resolver, logger)

	// A fresh Cardtrader client per tick keeps the rate-limit pacer scoped
	// to one scan.
	clientFactory := func() service.StockQuerier {
		return cardtrader.NewClient(cfg.CardtraderBaseURL, cfg.CardtraderAPIKey, cfg.RateLimit(), logger)
	}
	stockChecker := scheduler.NewStockChecker(
		freshness, reconciler, coordinator, userRepo, clientFactory, stockCheckLockTTL, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// Cron jobs: stock reconciliation plus the daily in-stock digest.
	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc(cfg.StockCheckSchedule, func() {
		stockChecker.Run(context.Background())
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schedule stock check %q: %w", cfg.StockCheckSchedule, err)
	}
	if cfg.DigestWebhookURL != "" {
		digestJob := digest.NewJob(userRepo, seekingRepo, discord.NewWebhookSender(cfg.DigestWebhookURL, logger), logger)
		if _, err := cronRunner.AddFunc(cfg.DigestSchedule, func() {
			digestJob.Run(context.Background())
		}); err != nil {
			pool.Close()
			return nil, fmt.Errorf("schedule stock digest %q: %w", cfg.DigestSchedule, err)
		}
	} else {
		logger.Info("stock digest disabled, no webhook configured")
	}

	// HTTP router.
	seekingHandler := handler.NewSeekingHandler(seekingService, logger)
	accountHandler := handler.NewAccountHandler(accountService, logger)
	authHandler := handler.NewAuthHandler(
		discordClient, coordinator, userRepo, jwtManager, cfg.IsAdmin, cfg.FrontendURL, logger,
	)
	statusHandler := handler.NewStatusHandler(map[string]health.Checker{
		"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(
		seekingHandler, accountHandler, authHandler, statusHandler, jwtManager, healthHandler, logger, corsConfig, cfg.PprofAllowedCIDRs,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redisClient: redisClient,
		cron:        cronRunner,
		httpServer:  httpServer,
	}, nil
}

// Run starts the cron scheduler and HTTP server, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()
	a.logger.Info("cron scheduler started",
		slog.String("stock_check_schedule", a.cfg.StockCheckSchedule),
		slog.String("digest_schedule", a.cfg.DigestSchedule),
	)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components:
// 1. Cron scheduler (let a running scan finish)
// 2. HTTP server (drain in-flight requests)
// 3. Redis client
// 4. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Stop scheduling new ticks and wait for a running job to finish.
	cronCtx := a.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		a.logger.Warn("cron jobs still running at shutdown deadline")
	}

	// 2. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 3. Close Redis client.
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
