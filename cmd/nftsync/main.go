package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/cli"
	"github.com/buxdao/nft-ownership-sync/internal/config"
	"github.com/buxdao/nft-ownership-sync/internal/identity"
	"github.com/buxdao/nft-ownership-sync/internal/lock"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/providers/helius"
	"github.com/buxdao/nft-ownership-sync/internal/ratelimit"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/store"
)

func main() {
	config.ChdirRepoRoot()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.NewRootCommand(cli.Dependencies{
		Orchestrator: buildOrchestrator,
		Store:        buildStore,
	})
	err := root.ExecuteContext(ctx)
	stop()

	logger.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func initLogger(debug bool, sentryDSN string) error {
	return logger.Initialize(logger.Config{
		Debug:     debug,
		SentryDSN: sentryDSN,
		Tags: map[string]string{
			"service": "nftsync",
		},
	})
}

func openStore(dbCfg config.DatabaseConfig) (store.Store, func(), error) {
	db, err := gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.ConfigureConnectionPool(db, dbCfg.MaxOpenConns, dbCfg.MaxIdleConns, dbCfg.ConnMaxLifetime, dbCfg.ConnMaxIdleTime); err != nil {
		return nil, nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return store.NewPGStore(db), cleanup, nil
}

func buildStore(opts *cli.RootOptions) (store.Store, func(), error) {
	cfg, err := config.LoadStoreConfig(opts.ConfigFile, opts.EnvPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogger(cfg.Debug, cfg.SentryDSN); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return openStore(cfg.Database)
}

func buildOrchestrator(opts *cli.RootOptions, dryRun bool) (reconcile.Orchestrator, func(), error) {
	cfg, err := config.LoadReconcilerConfig(opts.ConfigFile, opts.EnvPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogger(cfg.Debug, cfg.SentryDSN); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dataStore, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := closeStore

	clock := adapter.NewClock()

	// A one-off run shares the rate limit and the collection locks with the reconciler service
	var redisClient adapter.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = adapter.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		cleanup = func() {
			_ = redisClient.Close()
			closeStore()
		}
	}

	pacer := ratelimit.NewPacer(ratelimit.Config{
		Name:              "helius",
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		RedisKeyPrefix:    cfg.RateLimit.RedisKeyPrefix,
	}, redisClient, clock)
	heliusClient := helius.NewClient(adapter.NewHTTPClient(cfg.Helius.HTTPTimeout, adapter.DefaultBackoff), pacer, cfg.Helius.RPCURL, cfg.Helius.APIURL, cfg.Helius.APIKey)

	var locker lock.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Reconcile.LockTTL)
	} else {
		locker = lock.NewLocalLocker()
	}

	escrows := cfg.EscrowSet()
	orchestrator := reconcile.NewOrchestrator(
		reconcile.Config{
			Collections: config.DomainCollections(cfg.Collections),
			Escrows:     escrows,
			TxWindow:    cfg.Reconcile.TxWindow,
			DryRun:      dryRun || cfg.Reconcile.DryRun,
		},
		reconcile.NewSnapshotFetcher(heliusClient, cfg.Reconcile.PageSize),
		heliusClient,
		dataStore,
		reconcile.NewBurnChecker(heliusClient, cfg.Reconcile.BurnCheckWorkers),
		reconcile.NewApplier(dataStore, identity.NewResolver(dataStore, escrows, cfg.Reconcile.IdentityCacheTTL, clock), escrows, clock),
		locker,
		clock,
	)

	logger.Debug("Built reconciliation orchestrator",
		zap.Int("collections", len(cfg.Collections)),
		zap.Bool("dry_run", dryRun || cfg.Reconcile.DryRun),
	)

	return orchestrator, cleanup, nil
}
