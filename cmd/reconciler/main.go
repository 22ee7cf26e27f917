package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/config"
	"github.com/buxdao/nft-ownership-sync/internal/identity"
	"github.com/buxdao/nft-ownership-sync/internal/lock"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/metrics"
	"github.com/buxdao/nft-ownership-sync/internal/providers/helius"
	"github.com/buxdao/nft-ownership-sync/internal/ratelimit"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Reconciler", zap.Bool("dry_run", cfg.Reconcile.DryRun))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	// Connect to Redis for the shared rate limit and the collection locks
	var redisClient adapter.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = adapter.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create Redis client", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WarnCtx(ctx, "Redis is not reachable, the rate limiter falls back to local pacing", zap.Error(err))
		}
	} else {
		logger.WarnCtx(ctx, "Redis not configured, rate limit and locks are process local")
	}

	// Initialize indexer client
	pacer := ratelimit.NewPacer(ratelimit.Config{
		Name:              "helius",
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		RedisKeyPrefix:    cfg.RateLimit.RedisKeyPrefix,
	}, redisClient, clock)
	httpClient := adapter.NewHTTPClient(cfg.Helius.HTTPTimeout, adapter.DefaultBackoff)
	heliusClient := helius.NewClient(httpClient, pacer, cfg.Helius.RPCURL, cfg.Helius.APIURL, cfg.Helius.APIKey)

	// Initialize collection locker
	var locker lock.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Reconcile.LockTTL)
	} else {
		locker = lock.NewLocalLocker()
	}

	// Initialize reconciliation orchestrator
	escrows := cfg.EscrowSet()
	resolver := identity.NewResolver(dataStore, escrows, cfg.Reconcile.IdentityCacheTTL, clock)
	orchestrator := reconcile.NewOrchestrator(
		reconcile.Config{
			Collections: config.DomainCollections(cfg.Collections),
			Escrows:     escrows,
			TxWindow:    cfg.Reconcile.TxWindow,
			DryRun:      cfg.Reconcile.DryRun,
		},
		reconcile.NewSnapshotFetcher(heliusClient, cfg.Reconcile.PageSize),
		heliusClient,
		dataStore,
		reconcile.NewBurnChecker(heliusClient, cfg.Reconcile.BurnCheckWorkers),
		reconcile.NewApplier(dataStore, resolver, escrows, clock),
		locker,
		clock,
	)

	// Initialize reconcile sweeper
	reconcileSweeper := sweeper.NewReconcileSweeper(sweeper.ReconcileSweeperConfig{
		Interval: cfg.Reconcile.Interval,
	}, orchestrator, clock)

	logger.InfoCtx(ctx, "Initialized reconcile sweeper",
		zap.Duration("interval", cfg.Reconcile.Interval),
		zap.Int("collections", len(cfg.Collections)),
		zap.Int("tx_window", cfg.Reconcile.TxWindow),
	)

	// Expose metrics
	metricsServer := metrics.NewServer(cfg.Metrics.ListenAddress)
	if metricsServer != nil {
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorCtx(ctx, fmt.Errorf("metrics server failed: %w", err))
			}
		}()
	}

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := reconcileSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := reconcileSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
}
