package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/providers/helius"
)

// BurnStatus is the outcome of a direct asset lookup
type BurnStatus string

const (
	// BurnStatusBurnt means the indexer reports burnt: true
	BurnStatusBurnt BurnStatus = "burnt"
	// BurnStatusAlive means the asset exists and is not burnt
	BurnStatusAlive BurnStatus = "alive"
	// BurnStatusUnknown means the lookup failed; nothing may be concluded
	BurnStatusUnknown BurnStatus = "unknown"
)

// BurnChecker confirms burns with a direct asset lookup
//
//go:generate mockgen -source=burn.go -destination=../mocks/burn_checker.go -package=mocks -mock_names=BurnChecker=MockBurnChecker
type BurnChecker interface {
	// Check returns the burn status of every mint. Lookups run concurrently.
	Check(ctx context.Context, mints []string) map[string]BurnStatus
}

type burnChecker struct {
	client  helius.Client
	workers int
	retries uint64
}

// NewBurnChecker creates a checker running at most workers lookups at a time
func NewBurnChecker(client helius.Client, workers int) BurnChecker {
	if workers <= 0 {
		workers = 1
	}
	return &burnChecker{client: client, workers: workers, retries: 2}
}

func (c *burnChecker) Check(ctx context.Context, mints []string) map[string]BurnStatus {
	statuses := make(map[string]BurnStatus, len(mints))
	if len(mints) == 0 {
		return statuses
	}

	var mu sync.Mutex
	pool := pond.NewPool(c.workers, pond.WithContext(ctx))
	for _, mint := range mints {
		pool.Submit(func() {
			status := c.check(ctx, mint)
			mu.Lock()
			statuses[mint] = status
			mu.Unlock()
		})
	}
	pool.StopAndWait()

	// Tasks dropped by a canceled context never reported
	for _, mint := range mints {
		if _, ok := statuses[mint]; !ok {
			statuses[mint] = BurnStatusUnknown
		}
	}

	return statuses
}

// check looks up a single mint, retrying transport failures
func (c *burnChecker) check(ctx context.Context, mint string) BurnStatus {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	var asset *domain.ChainAsset
	operation := func() error {
		var err error
		asset, err = c.client.GetAsset(ctx, mint)
		if errors.Is(err, domain.ErrIndexerResponse) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx))
	if err != nil {
		logger.WarnCtx(ctx, "Burn confirmation lookup failed",
			zap.String("mint", mint),
			zap.Error(fmt.Errorf("failed to get asset: %w", err)),
		)
		return BurnStatusUnknown
	}

	if asset.Burnt {
		return BurnStatusBurnt
	}
	return BurnStatusAlive
}
