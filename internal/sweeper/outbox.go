package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/metrics"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/providers/temporal"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
	"github.com/buxdao/nft-ownership-sync/internal/workflows"
)

// OutboxSweeperConfig holds configuration for the outbox sweeper
type OutboxSweeperConfig struct {
	PollInterval    time.Duration // Time to sleep when the outbox is empty
	BatchSize       int           // Entries claimed per cycle
	WorkerPoolSize  int           // Concurrent deliveries in direct mode
	ProcessingLease time.Duration // Age after which a processing entry is claimed again
	UseTemporal     bool          // Hand entries to delivery workflows instead of posting directly
	TaskQueue       string        // Task queue of the delivery workflows
}

// outboxSweeper claims pending outbox entries, oldest first, and delivers them
type outboxSweeper struct {
	*lifecycle
	config       OutboxSweeperConfig
	store        store.Store
	deliverer    notification.Deliverer
	orchestrator temporal.TemporalOrchestrator
	pool         pond.Pool
}

// NewOutboxSweeper creates a new outbox sweeper. orchestrator may be nil when UseTemporal is false.
func NewOutboxSweeper(
	config OutboxSweeperConfig,
	st store.Store,
	deliverer notification.Deliverer,
	orchestrator temporal.TemporalOrchestrator,
	clock adapter.Clock,
) Sweeper {
	if config.BatchSize <= 0 {
		config.BatchSize = 1
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	s := &outboxSweeper{
		config:       config,
		store:        st,
		deliverer:    deliverer,
		orchestrator: orchestrator,
	}
	s.lifecycle = newLifecycle(s.Name(), clock)
	return s
}

// Name returns the sweeper's name
func (s *outboxSweeper) Name() string {
	return "outbox-sweeper"
}

// Start drains the outbox until the context is canceled or Stop is called
func (s *outboxSweeper) Start(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	logger.InfoCtx(ctx, "Starting outbox sweeper",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("processing_lease", s.config.ProcessingLease),
		zap.Bool("use_temporal", s.config.UseTemporal),
	)

	s.pool = s.newPool()
	defer func() {
		s.pool.StopAndWait()
	}()

	for {
		if s.stopped(ctx) {
			logger.InfoCtx(ctx, "Outbox sweeper exiting")
			return nil
		}

		claimed, err := s.runCycle(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		// Workflows retry on their own, so keep draining while full batches come back.
		// Direct deliveries requeue failures as pending and wait for the next poll.
		if err == nil && s.config.UseTemporal && claimed == s.config.BatchSize {
			continue
		}

		if !s.sleep(ctx, s.config.PollInterval) {
			logger.InfoCtx(ctx, "Outbox sweeper exiting")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper, letting in-flight deliveries finish
func (s *outboxSweeper) Stop(ctx context.Context) error {
	return s.stop(ctx)
}

// newPool is not bound to the sweeper context so a claimed batch always runs to completion
func (s *outboxSweeper) newPool() pond.Pool {
	return pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
	)
}

// runCycle claims one batch and hands it off. Returns the number of claimed entries.
func (s *outboxSweeper) runCycle(ctx context.Context) (int, error) {
	entries, err := s.store.ClaimPendingOutboxEntries(ctx, s.config.BatchSize, s.config.ProcessingLease)
	if err != nil {
		return 0, fmt.Errorf("failed to claim outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	metrics.OutboxClaimed.Add(float64(len(entries)))
	logger.InfoCtx(ctx, "Claimed outbox entries", zap.Int("count", len(entries)))

	if s.config.UseTemporal {
		s.startWorkflows(ctx, entries)
		return len(entries), nil
	}

	s.deliverDirect(ctx, entries)
	return len(entries), nil
}

// startWorkflows starts one delivery workflow per entry (fire-and-forget)
func (s *outboxSweeper) startWorkflows(ctx context.Context, entries []schema.NotificationOutbox) {
	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{})

	for _, entry := range entries {
		workflowOptions := client.StartWorkflowOptions{
			ID:                    workflows.NotificationWorkflowID(entry.ID),
			TaskQueue:             s.config.TaskQueue,
			WorkflowRunTimeout:    1 * time.Hour, // Allow time for all retries
			WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		}

		run, err := s.orchestrator.ExecuteWorkflow(ctx, workflowOptions, w.DeliverNotification, entry.ID)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to start notification workflow: %w", err),
				zap.Uint64("outbox_id", entry.ID))
			// Hand the entry back so the next cycle picks it up again
			if err := s.store.RequeueOutboxEntry(context.WithoutCancel(ctx), entry.ID); err != nil {
				logger.ErrorCtx(ctx, err, zap.Uint64("outbox_id", entry.ID))
			}
			continue
		}

		if run == nil {
			continue
		}
		if err := s.store.SetOutboxWorkflow(ctx, entry.ID, run.GetID(), run.GetRunID()); err != nil {
			logger.WarnCtx(ctx, "Failed to record notification workflow",
				zap.Uint64("outbox_id", entry.ID),
				zap.Error(err))
		}
	}
}

// deliverDirect posts the batch through the worker pool and waits for it.
// Claimed entries are delivered and recorded even when ctx is canceled mid-batch,
// otherwise they would stay processing until their lease runs out.
func (s *outboxSweeper) deliverDirect(ctx context.Context, entries []schema.NotificationOutbox) {
	var sent, retry, failed atomic.Int32
	deliveryCtx := context.WithoutCancel(ctx)

	for _, entry := range entries {
		s.pool.Submit(func() {
			status, _ := s.deliverer.Deliver(deliveryCtx, entry, schema.OutboxStatusPending)
			metrics.OutboxDeliveries.WithLabelValues(string(status)).Inc()
			switch status {
			case schema.OutboxStatusSent:
				sent.Add(1)
			case schema.OutboxStatusFailed:
				failed.Add(1)
			default:
				retry.Add(1)
			}
		})
	}

	// Wait for the batch, then recreate the pool for the next cycle
	s.pool.StopAndWait()
	s.pool = s.newPool()

	logger.InfoCtx(ctx, "Outbox batch delivered",
		zap.Int32("sent", sent.Load()),
		zap.Int32("retry", retry.Load()),
		zap.Int32("failed", failed.Load()),
	)
}
