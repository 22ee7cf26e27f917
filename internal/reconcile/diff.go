package reconcile

import (
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// Change is a stored record whose chain owner differs from the stored owner
type Change struct {
	Record schema.NFTMetadata
	Asset  domain.ChainAsset
}

// NewOwner returns the owner of the chain asset, nil for burnt or ownerless assets
func (c Change) NewOwner() *string {
	return chainOwner(c.Asset)
}

// DiffResult partitions the mints of a chain snapshot and a stored snapshot.
// Every mint lands in exactly one partition.
type DiffResult struct {
	// New assets are on chain only and have an owner
	New []domain.ChainAsset
	// Ownerless assets are on chain only and report no owner; they cannot be inserted
	Ownerless []domain.ChainAsset
	// Missing records are stored only and are burn candidates
	Missing []schema.NFTMetadata
	// Changed records are in both snapshots with different owners
	Changed []Change
	// Unchanged records are in both snapshots with the same owner
	Unchanged []schema.NFTMetadata
}

// Total returns the number of distinct mints in the result
func (d DiffResult) Total() int {
	return len(d.New) + len(d.Ownerless) + len(d.Missing) + len(d.Changed) + len(d.Unchanged)
}

// chainOwner treats burnt assets as ownerless
func chainOwner(asset domain.ChainAsset) *string {
	if asset.Burnt || asset.Owner == nil || *asset.Owner == "" {
		return nil
	}
	return asset.Owner
}

// Diff partitions chain and db by mint address. Only the owner is compared,
// metadata drift is ignored. Duplicate mints keep their first occurrence.
func Diff(chain []domain.ChainAsset, db []schema.NFTMetadata) DiffResult {
	var result DiffResult

	stored := make(map[string]schema.NFTMetadata, len(db))
	order := make([]string, 0, len(db))
	for _, record := range db {
		if _, dup := stored[record.MintAddress]; dup {
			continue
		}
		stored[record.MintAddress] = record
		order = append(order, record.MintAddress)
	}

	seen := make(map[string]struct{}, len(chain))
	for _, asset := range chain {
		if _, dup := seen[asset.MintAddress]; dup {
			continue
		}
		seen[asset.MintAddress] = struct{}{}

		owner := chainOwner(asset)
		record, ok := stored[asset.MintAddress]
		switch {
		case !ok && owner == nil:
			result.Ownerless = append(result.Ownerless, asset)
		case !ok:
			result.New = append(result.New, asset)
		case owner == nil || *owner != record.OwnerWallet:
			result.Changed = append(result.Changed, Change{Record: record, Asset: asset})
		default:
			result.Unchanged = append(result.Unchanged, record)
		}
	}

	for _, mint := range order {
		if _, ok := seen[mint]; !ok {
			result.Missing = append(result.Missing, stored[mint])
		}
	}

	return result
}
