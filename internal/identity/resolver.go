// Package identity maps wallets to the discord accounts linked to them.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/cache"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/store"
)

// Identity is the discord account of a wallet. Both fields are nil for unlinked wallets.
type Identity struct {
	DiscordID   *string
	DiscordName *string
}

// DisplayName returns the discord name, or the shortened wallet, or "Unknown"
func (i Identity) DisplayName(wallet string) string {
	if i.DiscordName != nil && *i.DiscordName != "" {
		return *i.DiscordName
	}
	if wallet != "" {
		return "`" + domain.ShortenAddress(wallet) + "`"
	}
	return domain.MARKETPLACE_UNKNOWN
}

// Resolver defines the interface for identity lookups to enable mocking
//
//go:generate mockgen -source=resolver.go -destination=../mocks/identity_resolver.go -package=mocks -mock_names=Resolver=MockIdentityResolver
type Resolver interface {
	// Resolve returns the identity linked to wallet
	Resolve(ctx context.Context, wallet string) (Identity, error)
}

type resolver struct {
	store   store.Store
	escrows domain.EscrowSet
	cache   *cache.TTL[string, Identity]
}

// NewResolver creates a resolver caching lookups for ttl. Escrow wallets never resolve.
func NewResolver(st store.Store, escrows domain.EscrowSet, ttl time.Duration, clock adapter.Clock) Resolver {
	return &resolver{
		store:   st,
		escrows: escrows,
		cache:   cache.NewTTL[string, Identity](ttl, clock),
	}
}

// Resolve returns the identity linked to wallet
func (r *resolver) Resolve(ctx context.Context, wallet string) (Identity, error) {
	if wallet == "" || r.escrows.Contains(&wallet) {
		return Identity{}, nil
	}

	if identity, ok := r.cache.Get(wallet); ok {
		return identity, nil
	}

	linked, err := r.store.GetDiscordIdentityByWallet(ctx, wallet)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve identity: %w", err)
	}

	var identity Identity
	if linked != nil {
		id := linked.DiscordID
		identity.DiscordID = &id
		identity.DiscordName = linked.DiscordName
	}

	r.cache.Set(wallet, identity)
	return identity, nil
}
