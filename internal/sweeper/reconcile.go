package sweeper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
)

// ReconcileSweeperConfig holds configuration for the reconcile sweeper
type ReconcileSweeperConfig struct {
	Interval    time.Duration // Time to sleep between passes
	Collections []string      // Symbols to reconcile, all configured collections when empty
}

// reconcileSweeper runs a reconciliation pass at start and then on every interval
type reconcileSweeper struct {
	*lifecycle
	config       ReconcileSweeperConfig
	orchestrator reconcile.Orchestrator
}

// NewReconcileSweeper creates a new reconcile sweeper
func NewReconcileSweeper(config ReconcileSweeperConfig, orchestrator reconcile.Orchestrator, clock adapter.Clock) Sweeper {
	s := &reconcileSweeper{
		config:       config,
		orchestrator: orchestrator,
	}
	s.lifecycle = newLifecycle(s.Name(), clock)
	return s
}

// Name returns the sweeper's name
func (s *reconcileSweeper) Name() string {
	return "reconcile-sweeper"
}

// Start runs passes until the context is canceled or Stop is called
func (s *reconcileSweeper) Start(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	logger.InfoCtx(ctx, "Starting reconcile sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Strings("collections", s.config.Collections),
	)

	for {
		if s.stopped(ctx) {
			logger.InfoCtx(ctx, "Reconcile sweeper exiting")
			return nil
		}

		s.runPass(ctx)

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Reconcile sweeper exiting")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper, letting the running pass finish
func (s *reconcileSweeper) Stop(ctx context.Context) error {
	return s.stop(ctx)
}

// runPass runs one pass. Failures are logged and retried on the next interval.
func (s *reconcileSweeper) runPass(ctx context.Context) {
	summary, err := s.orchestrator.Run(ctx, s.config.Collections...)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}
		return
	}

	if failed := summary.Failed(); len(failed) > 0 {
		logger.WarnCtx(ctx, "Reconcile pass finished with failed collections",
			zap.String("run_id", summary.RunID),
			zap.Strings("failed", failed),
		)
	}
}
