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

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/config"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/metrics"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/providers/discord"
	temporal "github.com/buxdao/nft-ownership-sync/internal/providers/temporal"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/sweeper"
	"github.com/buxdao/nft-ownership-sync/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadDispatcherConfig(*configFile, *envPath)
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
			"service": "dispatcher",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Dispatcher", zap.Bool("use_temporal", cfg.Dispatcher.UseTemporal))

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

	// Initialize discord delivery
	httpClient := adapter.NewHTTPClient(cfg.Discord.HTTPTimeout, adapter.DefaultBackoff)
	discordClient := discord.NewClient(httpClient, cfg.Discord.APIURL, cfg.Discord.BotToken)
	notifier := notification.NewDiscordNotifier(discordClient, cfg.Discord.ActivityChannelID, notification.NewFormatter(cfg.Discord.SiteBaseURL))
	deliverer := notification.NewDeliverer(dataStore, notifier, cfg.Dispatcher.MaxAttempts)

	var temporalClient client.Client
	var temporalWorker worker.Worker
	if cfg.Dispatcher.UseTemporal {
		// Connect to Temporal with logger integration
		temporalClient, err = client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
		})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
		}
		defer temporalClient.Close()
		logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

		// Create Temporal worker
		temporalWorker = worker.New(
			temporalClient,
			cfg.Temporal.NotificationTaskQueue,
			worker.Options{
				MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
				WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
				Interceptors: []interceptor.WorkerInterceptor{
					temporal.NewSentryActivityInterceptor(),
				},
			})
		logger.InfoCtx(ctx, "Created Temporal worker", zap.String("taskQueue", cfg.Temporal.NotificationTaskQueue))

		executor := workflows.NewExecutor(dataStore, deliverer, adapter.NewActivity())
		workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfig{
			MaxDeliveryAttempts:  cfg.Dispatcher.MaxAttempts,
			RetryInitialInterval: cfg.Dispatcher.RetryInitialInterval,
			RetryMaximumInterval: cfg.Dispatcher.RetryMaximumInterval,
		})

		// Register workflows
		temporalWorker.RegisterWorkflow(workerCore.DeliverNotification)
		logger.InfoCtx(ctx, "Registered workflows")

		// Register activities
		temporalWorker.RegisterActivity(executor.DeliverNotification)
		logger.InfoCtx(ctx, "Registered activities")

		if err := temporalWorker.Start(); err != nil {
			logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Worker started and listening for tasks")
	}

	// Initialize outbox sweeper
	var orchestrator temporal.TemporalOrchestrator
	if temporalClient != nil {
		orchestrator = temporalClient
	}
	outboxSweeper := sweeper.NewOutboxSweeper(sweeper.OutboxSweeperConfig{
		PollInterval:    cfg.Dispatcher.PollInterval,
		BatchSize:       cfg.Dispatcher.BatchSize,
		WorkerPoolSize:  cfg.Dispatcher.Worker.WorkerPoolSize,
		ProcessingLease: cfg.Dispatcher.ProcessingLease,
		UseTemporal:     cfg.Dispatcher.UseTemporal,
		TaskQueue:       cfg.Temporal.NotificationTaskQueue,
	}, dataStore, deliverer, orchestrator, clock)

	logger.InfoCtx(ctx, "Initialized outbox sweeper",
		zap.Duration("poll_interval", cfg.Dispatcher.PollInterval),
		zap.Int("batch_size", cfg.Dispatcher.BatchSize),
		zap.Int("max_attempts", cfg.Dispatcher.MaxAttempts),
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
		if err := outboxSweeper.Start(ctx); err != nil {
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Let the sweeper finish its claimed batch before canceling the root context
	if err := outboxSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	cancel()
	if temporalWorker != nil {
		temporalWorker.Stop()
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.InfoCtx(shutdownCtx, "Dispatcher stopped")
}
