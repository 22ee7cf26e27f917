// Package reconcile diffs the on-chain ownership of a collection against the
// stored records and applies the classified changes.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/providers/helius"
)

// SnapshotFetcher retrieves the complete chain snapshot of a collection
//
//go:generate mockgen -source=snapshot.go -destination=../mocks/snapshot_fetcher.go -package=mocks -mock_names=SnapshotFetcher=MockSnapshotFetcher
type SnapshotFetcher interface {
	// FetchCollection returns every asset of the collection. Any failed page fails the whole fetch.
	FetchCollection(ctx context.Context, collection domain.Collection) ([]domain.ChainAsset, error)
}

type snapshotFetcher struct {
	client   helius.Client
	pageSize int
}

// NewSnapshotFetcher creates a fetcher requesting pageSize assets per page.
// Pacing between pages is done by the client.
func NewSnapshotFetcher(client helius.Client, pageSize int) SnapshotFetcher {
	if pageSize <= 0 || pageSize > domain.MAX_ASSETS_PAGE_SIZE {
		pageSize = domain.MAX_ASSETS_PAGE_SIZE
	}
	return &snapshotFetcher{client: client, pageSize: pageSize}
}

func (f *snapshotFetcher) FetchCollection(ctx context.Context, collection domain.Collection) ([]domain.ChainAsset, error) {
	var assets []domain.ChainAsset

	for page := 1; ; page++ {
		items, err := f.client.GetAssetsByGroup(ctx, collection.Address, page, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of %s: %w", page, collection.Symbol, err)
		}

		skipped := 0
		for _, item := range items {
			if item.MintAddress == "" {
				skipped++
				continue
			}
			assets = append(assets, item)
		}

		logger.DebugCtx(ctx, "Fetched collection page",
			zap.String("collection", collection.Symbol),
			zap.Int("page", page),
			zap.Int("items", len(items)),
			zap.Int("skipped", skipped),
		)

		// End of results is decided on the raw page length
		if len(items) < f.pageSize {
			break
		}
	}

	return assets, nil
}
