package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/identity"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// RunContext identifies the pass an ownership change belongs to
type RunContext struct {
	RunID      string
	Collection domain.Collection
}

// Applier persists classified changes
//
//go:generate mockgen -source=applier.go -destination=../mocks/applier.go -package=mocks -mock_names=Applier=MockApplier
type Applier interface {
	// ApplyChange writes ev against record together with its journal row and notification
	ApplyChange(ctx context.Context, run RunContext, record schema.NFTMetadata, ev domain.ClassifiedEvent, rule string) (*store.ApplyResult, error)

	// InsertNew inserts a first seen asset as an unlisted record
	InsertNew(ctx context.Context, run RunContext, asset domain.ChainAsset) (*store.ApplyResult, error)
}

type applier struct {
	store    store.Store
	resolver identity.Resolver
	escrows  domain.EscrowSet
	clock    adapter.Clock
}

// NewApplier creates an applier
func NewApplier(st store.Store, resolver identity.Resolver, escrows domain.EscrowSet, clock adapter.Clock) Applier {
	return &applier{
		store:    st,
		resolver: resolver,
		escrows:  escrows,
		clock:    clock,
	}
}

// journalMeta is stored with the journal row
type journalMeta struct {
	Rule   string  `json:"rule,omitempty"`
	Buyer  *string `json:"buyer,omitempty"`
	Seller *string `json:"seller,omitempty"`
}

func (a *applier) ApplyChange(ctx context.Context, run RunContext, record schema.NFTMetadata, ev domain.ClassifiedEvent, rule string) (*store.ApplyResult, error) {
	input := store.ApplyOwnershipChangeInput{
		MintAddress: record.MintAddress,
		Symbol:      record.Symbol,
	}

	var from notification.Party
	var to *notification.Party

	switch ev.Type {
	case domain.EventTypeListed:
		if ev.NewOwner == nil {
			return nil, fmt.Errorf("listed event without new owner for %s", record.MintAddress)
		}
		lister := derefOr(ev.Seller, ev.PreviousOwner)
		listerID := a.resolve(ctx, lister)
		from = notification.Party{Wallet: lister, DiscordName: listerID.DiscordName}

		input.Kind = store.MutationUpdate
		input.Update = &store.NFTOwnershipUpdate{
			OwnerWallet:       *ev.NewOwner,
			IsListed:          true,
			ListPrice:         ev.Price,
			Marketplace:       strPtr(a.listingMarketplace(ev)),
			OriginalLister:    strPtr(lister),
			ListerDiscordName: listerID.DiscordName,
		}

	case domain.EventTypeDelisted, domain.EventTypeSold, domain.EventTypeTransfer:
		if ev.NewOwner == nil {
			return nil, fmt.Errorf("%s event without new owner for %s", ev.Type, record.MintAddress)
		}
		owner := *ev.NewOwner
		ownerID := a.resolve(ctx, owner)

		fromWallet := ev.PreviousOwner
		toWallet := owner
		switch ev.Type {
		case domain.EventTypeDelisted:
			if record.OriginalLister != nil {
				fromWallet = *record.OriginalLister
			}
		case domain.EventTypeSold:
			fromWallet = derefOr(ev.Seller, ev.PreviousOwner)
			toWallet = derefOr(ev.Buyer, owner)
		}

		from = a.party(ctx, fromWallet)
		to = &notification.Party{Wallet: toWallet, DiscordName: ownerID.DiscordName}
		if toWallet != owner {
			p := a.party(ctx, toWallet)
			to = &p
		}

		input.Kind = store.MutationUpdate
		input.Update = &store.NFTOwnershipUpdate{
			OwnerWallet:          owner,
			RefreshOwnerIdentity: true,
			OwnerDiscordID:       ownerID.DiscordID,
			OwnerName:            ownerID.DiscordName,
		}
		if ev.Type == domain.EventTypeSold {
			input.Update.LastSalePrice = ev.Price
		}

	case domain.EventTypeBurned:
		lastOwner := record.OwnerWallet
		if record.IsListed && record.OriginalLister != nil {
			lastOwner = *record.OriginalLister
		}
		from = a.party(ctx, lastOwner)
		input.Kind = store.MutationDelete

	default:
		return nil, fmt.Errorf("cannot apply %s event to %s", ev.Type, record.MintAddress)
	}

	payload := notification.NewPayload(ev, nftInfo(record), from, to)
	dedupKey, err := notification.DedupKeyWithBasis(payload, stateBasis(record))
	if err != nil {
		return nil, err
	}

	meta, err := json.Marshal(journalMeta{Rule: rule, Buyer: ev.Buyer, Seller: ev.Seller})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journal meta: %w", err)
	}

	eventID := ulid.MustNewDefault(a.clock.Now()).String()
	input.Event = store.OwnershipEventInput{
		EventID:       eventID,
		DedupKey:      dedupKey,
		RunID:         run.RunID,
		EventType:     string(ev.Type),
		PreviousOwner: strPtr(ev.PreviousOwner),
		NewOwner:      ev.NewOwner,
		Marketplace:   ev.Marketplace,
		Price:         ev.Price,
		Signature:     strPtr(ev.Signature),
		Meta:          meta,
		OccurredAt:    ev.Timestamp,
	}

	if ev.Type.Notifiable() {
		data, err := payload.Marshal()
		if err != nil {
			return nil, err
		}
		input.Notification = &store.OutboxInput{
			EventID:   eventID,
			DedupKey:  dedupKey,
			EventType: string(ev.Type),
			Payload:   data,
		}
	}

	result, err := a.store.ApplyOwnershipChange(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s to %s: %w", ev.Type, record.MintAddress, err)
	}

	return result, nil
}

func (a *applier) InsertNew(ctx context.Context, run RunContext, asset domain.ChainAsset) (*store.ApplyResult, error) {
	owner := chainOwner(asset)
	if owner == nil {
		return nil, fmt.Errorf("cannot insert %s without owner", asset.MintAddress)
	}

	ownerID := a.resolve(ctx, *owner)
	record := &schema.NFTMetadata{
		MintAddress:    asset.MintAddress,
		Name:           asset.Name,
		Symbol:         run.Collection.Symbol,
		OwnerWallet:    *owner,
		ImageURL:       asset.ImageURL,
		Attributes:     datatypes.JSON(asset.Attributes),
		OwnerDiscordID: ownerID.DiscordID,
		OwnerName:      ownerID.DiscordName,
	}

	now := a.clock.Now()
	ev := domain.ClassifiedEvent{
		Type:        domain.EventTypeNew,
		MintAddress: asset.MintAddress,
		NewOwner:    owner,
		Timestamp:   now,
	}
	payload := notification.NewPayload(ev, nftInfo(*record), notification.Party{}, &notification.Party{Wallet: *owner})
	dedupKey, err := notification.DedupKey(payload)
	if err != nil {
		return nil, err
	}

	result, err := a.store.ApplyOwnershipChange(ctx, store.ApplyOwnershipChangeInput{
		Kind:        store.MutationInsert,
		MintAddress: asset.MintAddress,
		Symbol:      run.Collection.Symbol,
		Record:      record,
		Event: store.OwnershipEventInput{
			EventID:    ulid.MustNewDefault(now).String(),
			DedupKey:   dedupKey,
			RunID:      run.RunID,
			EventType:  string(domain.EventTypeNew),
			NewOwner:   owner,
			OccurredAt: now,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", asset.MintAddress, err)
	}

	return result, nil
}

// resolve looks up the identity of wallet. A failed lookup only costs the display name.
func (a *applier) resolve(ctx context.Context, wallet string) identity.Identity {
	id, err := a.resolver.Resolve(ctx, wallet)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to resolve wallet identity",
			zap.String("wallet", wallet),
			zap.Error(err),
		)
		return identity.Identity{}
	}
	return id
}

func (a *applier) party(ctx context.Context, wallet string) notification.Party {
	return notification.Party{Wallet: wallet, DiscordName: a.resolve(ctx, wallet).DiscordName}
}

// listingMarketplace falls back to the escrow identity, then to "Unknown"
func (a *applier) listingMarketplace(ev domain.ClassifiedEvent) string {
	if ev.Marketplace != nil && *ev.Marketplace != "" {
		return *ev.Marketplace
	}
	if ev.NewOwner != nil {
		if name, ok := a.escrows.Marketplace(*ev.NewOwner); ok {
			return name
		}
	}
	return domain.MARKETPLACE_UNKNOWN
}

func nftInfo(record schema.NFTMetadata) notification.NFTInfo {
	return notification.NFTInfo{
		Name:       record.Name,
		Symbol:     record.Symbol,
		ImageURL:   record.ImageURL,
		RarityRank: record.RarityRank,
	}
}

// stateBasis identifies the stored state a change was observed against
func stateBasis(record schema.NFTMetadata) string {
	return record.OwnerWallet + "@" + record.UpdatedAt.UTC().Format(time.RFC3339Nano)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
