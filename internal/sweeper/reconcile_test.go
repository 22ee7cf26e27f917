package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/sweeper"
)

// testReconcileMocks contains all the mocks needed for testing the reconcile sweeper
type testReconcileMocks struct {
	ctrl         *gomock.Controller
	orchestrator *mocks.MockOrchestrator
	clock        *mocks.MockClock
	sweeper      sweeper.Sweeper
}

func setupReconcileSweeper(t *testing.T, collections ...string) *testReconcileMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testReconcileMocks{
		ctrl:         ctrl,
		orchestrator: mocks.NewMockOrchestrator(ctrl),
		clock:        mocks.NewMockClock(ctrl),
	}
	tm.sweeper = sweeper.NewReconcileSweeper(sweeper.ReconcileSweeperConfig{
		Interval:    15 * time.Minute,
		Collections: collections,
	}, tm.orchestrator, tm.clock)

	return tm
}

// sleepThenIdle makes the first `ticks` sleeps complete at once and stops the sweeper
// when it goes to sleep after that
func sleepThenIdle(clock *mocks.MockClock, sw sweeper.Sweeper, ticks int) {
	var mu sync.Mutex
	calls := 0
	idle := make(chan struct{})

	clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++

		ch := make(chan time.Time, 1)
		if calls <= ticks {
			ch <- time.Now()
			return ch
		}
		if calls == ticks+1 {
			close(idle)
		}
		return ch
	}).AnyTimes()

	go func() {
		<-idle
		_ = sw.Stop(context.Background())
	}()
}

func TestReconcileSweeper_Name(t *testing.T) {
	m := setupReconcileSweeper(t)
	defer m.ctrl.Finish()

	assert.Equal(t, "reconcile-sweeper", m.sweeper.Name())
}

func TestReconcileSweeper_RunsAtStartAndOnInterval(t *testing.T) {
	m := setupReconcileSweeper(t, "CelebCatz", "MM")
	defer m.ctrl.Finish()

	m.orchestrator.EXPECT().
		Run(gomock.Any(), "CelebCatz", "MM").
		Return(&reconcile.RunSummary{RunID: "run"}, nil).
		Times(2)

	sleepThenIdle(m.clock, m.sweeper, 1)

	require.NoError(t, m.sweeper.Start(context.Background()))
}

func TestReconcileSweeper_FailedPassKeepsRunning(t *testing.T) {
	m := setupReconcileSweeper(t)
	defer m.ctrl.Finish()

	gomock.InOrder(
		m.orchestrator.EXPECT().Run(gomock.Any()).Return(nil, errors.New("database unavailable")),
		m.orchestrator.EXPECT().Run(gomock.Any()).Return(&reconcile.RunSummary{
			RunID: "run",
			Collections: []reconcile.CollectionSummary{
				{Symbol: "MM", Error: "helius returned 500"},
			},
		}, nil),
	)

	sleepThenIdle(m.clock, m.sweeper, 1)

	require.NoError(t, m.sweeper.Start(context.Background()))
}

func TestReconcileSweeper_CanceledBeforeStart(t *testing.T) {
	m := setupReconcileSweeper(t)
	defer m.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No pass runs once the context is done
	require.NoError(t, m.sweeper.Start(ctx))
}

func TestReconcileSweeper_StopBeforeStart(t *testing.T) {
	m := setupReconcileSweeper(t)
	defer m.ctrl.Finish()

	assert.NoError(t, m.sweeper.Stop(context.Background()))
}

func TestReconcileSweeper_DoubleStart(t *testing.T) {
	m := setupReconcileSweeper(t)
	defer m.ctrl.Finish()

	running := make(chan struct{})
	m.orchestrator.EXPECT().Run(gomock.Any()).Return(&reconcile.RunSummary{}, nil)
	m.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		close(running)
		return make(chan time.Time)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- m.sweeper.Start(context.Background())
	}()
	<-running

	err := m.sweeper.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, m.sweeper.Stop(context.Background()))
	require.NoError(t, <-errChan)
}
