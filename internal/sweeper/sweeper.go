package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
)

// Sweeper defines the interface for sweeper implementations
// Sweepers are long-running background loops that reconcile collections or drain the outbox
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start begins the sweeper's main loop
	// This is a blocking call that runs until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper
	// This waits for the in-progress cycle to complete
	Stop(ctx context.Context) error

	// Name returns the sweeper's name for logging and identification
	Name() string
}

// lifecycle holds the start and stop state shared by the sweepers
type lifecycle struct {
	name      string
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

func newLifecycle(name string, clock adapter.Clock) *lifecycle {
	return &lifecycle{
		name:      name,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// begin marks the sweeper running and returns the function to call when the loop exits
func (l *lifecycle) begin() (func(), error) {
	if !l.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s already running", l.name)
	}
	return func() {
		l.running.Store(false)
		close(l.stoppedCh) // Signal that we've stopped
	}, nil
}

// stop signals the loop and waits for it to exit, respecting ctx
func (l *lifecycle) stop(ctx context.Context) error {
	if !l.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping sweeper", zap.String("sweeper", l.name))
	close(l.stopChan)

	select {
	case <-l.stoppedCh:
		logger.InfoCtx(ctx, "Sweeper stopped gracefully", zap.String("sweeper", l.name))
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Sweeper stop interrupted by context timeout", zap.String("sweeper", l.name))
		return ctx.Err()
	}
}

// stopped reports whether ctx is done or a stop was requested
func (l *lifecycle) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-l.stopChan:
		return true
	default:
		return false
	}
}

// sleep sleeps for the given duration but can be interrupted by context cancellation or Stop
// Returns true if sleep completed normally
func (l *lifecycle) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-l.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-l.stopChan:
		return false
	}
}
