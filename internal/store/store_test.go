package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

const (
	testSymbol = "CelebCatz"
	alice      = "3x9az88Dkbxa6tkKByxqEn7jBTJCJCD4dVvou49L24ET"
	bob        = "9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6"
	mint1      = "C9cAPKjWG8dsujybrn6LhXnTxAx3Y6Z9HVtrfQ1Cn8Hy"
	mint2      = "F8vsfPTWA8ZsibyQHwRubvgn4MwZhFKdyjTTQ96KB6ay"
	mint3      = "5WkEHzkWSKnQ3nSobYX4xMFd4KUX7J2Ko73Ez6W9jpB2"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func strPtr(s string) *string {
	return &s
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// buildInsertInput creates the input of a first sighting
func buildInsertInput(mint, owner string) ApplyOwnershipChangeInput {
	return ApplyOwnershipChangeInput{
		Kind:        MutationInsert,
		MintAddress: mint,
		Symbol:      testSymbol,
		Record: &schema.NFTMetadata{
			MintAddress: mint,
			Name:        "Celeb #" + mint[:4],
			Symbol:      testSymbol,
			OwnerWallet: owner,
			ImageURL:    strPtr("/images/" + mint[:4] + ".png"),
		},
		Event: OwnershipEventInput{
			EventID:    "01HZZZZZZZZZZZZZZZZZZZZ" + mint[:3],
			DedupKey:   "new-" + mint,
			RunID:      "run-1",
			EventType:  string(domain.EventTypeNew),
			NewOwner:   strPtr(owner),
			OccurredAt: time.Now().UTC(),
		},
	}
}

// buildListedInput creates the input of a listing with a notification
func buildListedInput(mint, lister, dedupKey string) ApplyOwnershipChangeInput {
	payload, _ := json.Marshal(map[string]string{"type": "listed", "mint_address": mint})
	return ApplyOwnershipChangeInput{
		Kind:        MutationUpdate,
		MintAddress: mint,
		Symbol:      testSymbol,
		Update: &NFTOwnershipUpdate{
			OwnerWallet:       domain.MAGIC_EDEN_ESCROW,
			IsListed:          true,
			ListPrice:         decPtr("12.5"),
			Marketplace:       strPtr(domain.MARKETPLACE_MAGIC_EDEN),
			OriginalLister:    strPtr(lister),
			ListerDiscordName: strPtr("alice#0001"),
		},
		Event: OwnershipEventInput{
			EventID:       "01HAAAAAAAAAAAAAAAAAAAA" + mint[:3],
			DedupKey:      dedupKey,
			RunID:         "run-1",
			EventType:     string(domain.EventTypeListed),
			PreviousOwner: strPtr(lister),
			NewOwner:      strPtr(domain.MAGIC_EDEN_ESCROW),
			Marketplace:   strPtr(domain.MARKETPLACE_MAGIC_EDEN),
			Price:         decPtr("12.5"),
			OccurredAt:    time.Now().UTC(),
		},
		Notification: &OutboxInput{
			EventID:   "01HAAAAAAAAAAAAAAAAAAAA" + mint[:3],
			DedupKey:  dedupKey,
			EventType: string(domain.EventTypeListed),
			Payload:   payload,
		},
	}
}

// buildSaleUpdate creates the update of a sale to buyer
func buildSaleUpdate(buyer string, price *decimal.Decimal) *NFTOwnershipUpdate {
	return &NFTOwnershipUpdate{
		OwnerWallet:          buyer,
		LastSalePrice:        price,
		RefreshOwnerIdentity: true,
		OwnerDiscordID:       strPtr("42"),
		OwnerName:            strPtr("bob"),
	}
}

func insertNFT(t *testing.T, store Store, mint, owner string) {
	_, err := store.ApplyOwnershipChange(context.Background(), buildInsertInput(mint, owner))
	require.NoError(t, err)
}

// =============================================================================
// Test: NFT records
// =============================================================================

func testInsertNFT(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("first sighting inserts an unlisted record", func(t *testing.T) {
		result, err := store.ApplyOwnershipChange(ctx, buildInsertInput(mint1, alice))
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.RowsAffected)
		assert.True(t, result.Journaled)
		assert.Zero(t, result.OutboxID)

		nft, err := store.GetNFTByMint(ctx, mint1)
		require.NoError(t, err)
		require.NotNil(t, nft)
		assert.Equal(t, alice, nft.OwnerWallet)
		assert.False(t, nft.IsListed)
		assert.Nil(t, nft.Marketplace)
		assert.Nil(t, nft.ListPrice)
		assert.Nil(t, nft.OriginalLister)
	})

	t.Run("inserting again is a no-op", func(t *testing.T) {
		result, err := store.ApplyOwnershipChange(ctx, buildInsertInput(mint1, bob))
		require.NoError(t, err)
		assert.Zero(t, result.RowsAffected)
		assert.False(t, result.Journaled)

		nft, err := store.GetNFTByMint(ctx, mint1)
		require.NoError(t, err)
		assert.Equal(t, alice, nft.OwnerWallet)
	})

	t.Run("missing record returns nil", func(t *testing.T) {
		nft, err := store.GetNFTByMint(ctx, mint3)
		require.NoError(t, err)
		assert.Nil(t, nft)
	})
}

func testGetNFTsBySymbol(t *testing.T, store Store) {
	ctx := context.Background()

	insertNFT(t, store, mint2, bob)
	insertNFT(t, store, mint1, alice)

	other := buildInsertInput(mint3, alice)
	other.Symbol = "MM"
	other.Record.Symbol = "MM"
	other.Event.DedupKey = "new-mm"
	_, err := store.ApplyOwnershipChange(ctx, other)
	require.NoError(t, err)

	nfts, err := store.GetNFTsBySymbol(ctx, testSymbol)
	require.NoError(t, err)
	require.Len(t, nfts, 2)
	assert.Equal(t, mint1, nfts[0].MintAddress)
	assert.Equal(t, mint2, nfts[1].MintAddress)

	nfts, err = store.GetNFTsBySymbol(ctx, "FCKEDCATZ")
	require.NoError(t, err)
	assert.Empty(t, nfts)
}

func testListingLifecycle(t *testing.T, store Store) {
	ctx := context.Background()
	insertNFT(t, store, mint1, alice)

	t.Run("listing sets the listing fields and enqueues a notification", func(t *testing.T) {
		result, err := store.ApplyOwnershipChange(ctx, buildListedInput(mint1, alice, "listed-1"))
		require.NoError(t, err)
		assert.True(t, result.Journaled)
		assert.NotZero(t, result.OutboxID)

		nft, err := store.GetNFTByMint(ctx, mint1)
		require.NoError(t, err)
		assert.Equal(t, domain.MAGIC_EDEN_ESCROW, nft.OwnerWallet)
		assert.True(t, nft.IsListed)
		require.NotNil(t, nft.ListPrice)
		assert.True(t, decimal.RequireFromString("12.5").Equal(*nft.ListPrice))
		assert.Equal(t, alice, *nft.OriginalLister)
		assert.Equal(t, "alice#0001", *nft.ListerDiscordName)

		entry, err := store.GetOutboxEntryByID(ctx, result.OutboxID)
		require.NoError(t, err)
		assert.Equal(t, schema.OutboxStatusPending, entry.Status)
		assert.Equal(t, "listed", entry.EventType)
	})

	t.Run("re-applying the same event creates no duplicate notification", func(t *testing.T) {
		result, err := store.ApplyOwnershipChange(ctx, buildListedInput(mint1, alice, "listed-1"))
		require.NoError(t, err)
		assert.False(t, result.Journaled)
		assert.Zero(t, result.OutboxID)

		entries, err := store.GetOutboxEntries(ctx, OutboxQueryFilter{})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("sale clears the listing fields together", func(t *testing.T) {
		_, err := store.ApplyOwnershipChange(ctx, ApplyOwnershipChangeInput{
			Kind:        MutationUpdate,
			MintAddress: mint1,
			Symbol:      testSymbol,
			Update:      buildSaleUpdate(bob, decPtr("12.5")),
			Event: OwnershipEventInput{
				EventID:   "01HBBBBBBBBBBBBBBBBBBBBBBB",
				DedupKey:  "sold-1",
				RunID:     "run-2",
				EventType: string(domain.EventTypeSold),
			},
		})
		require.NoError(t, err)

		nft, err := store.GetNFTByMint(ctx, mint1)
		require.NoError(t, err)
		assert.Equal(t, bob, nft.OwnerWallet)
		assert.False(t, nft.IsListed)
		assert.Nil(t, nft.ListPrice)
		assert.Nil(t, nft.Marketplace)
		assert.Nil(t, nft.OriginalLister)
		assert.Nil(t, nft.ListerDiscordName)
		require.NotNil(t, nft.LastSalePrice)
		assert.True(t, decimal.RequireFromString("12.5").Equal(*nft.LastSalePrice))
		assert.Equal(t, "42", *nft.OwnerDiscordID)
		assert.Equal(t, "bob", *nft.OwnerName)
	})

	t.Run("a sale without price keeps the last sale price", func(t *testing.T) {
		_, err := store.ApplyOwnershipChange(ctx, ApplyOwnershipChangeInput{
			Kind:        MutationUpdate,
			MintAddress: mint1,
			Symbol:      testSymbol,
			Update:      buildSaleUpdate(alice, nil),
			Event: OwnershipEventInput{
				EventID:   "01HCCCCCCCCCCCCCCCCCCCCCCC",
				DedupKey:  "sold-2",
				RunID:     "run-3",
				EventType: string(domain.EventTypeSold),
			},
		})
		require.NoError(t, err)

		nft, err := store.GetNFTByMint(ctx, mint1)
		require.NoError(t, err)
		assert.Equal(t, alice, nft.OwnerWallet)
		require.NotNil(t, nft.LastSalePrice)
		assert.True(t, decimal.RequireFromString("12.5").Equal(*nft.LastSalePrice))
	})

	t.Run("journal lists the events newest first", func(t *testing.T) {
		events, err := store.GetOwnershipEventsByMint(ctx, mint1, 10)
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, string(domain.EventTypeNew), events[len(events)-1].EventType)
	})
}

func testUpdateMissingNFTRollsBack(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.ApplyOwnershipChange(ctx, buildListedInput(mint2, alice, "listed-missing"))
	assert.ErrorIs(t, err, domain.ErrNFTNotFound)

	entries, err := store.GetOutboxEntries(ctx, OutboxQueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	events, err := store.GetOwnershipEventsByMint(ctx, mint2, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testListingConstraint(t *testing.T, store Store) {
	ctx := context.Background()
	insertNFT(t, store, mint1, alice)

	// Listed without a marketplace violates the listing consistency check
	input := buildListedInput(mint1, alice, "listed-bad")
	input.Update.Marketplace = nil

	_, err := store.ApplyOwnershipChange(ctx, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nft_metadata_listing_consistency")
}

func testBurnDeletesNFT(t *testing.T, store Store) {
	ctx := context.Background()
	insertNFT(t, store, mint1, alice)

	payload, _ := json.Marshal(map[string]string{"type": "burned"})
	result, err := store.ApplyOwnershipChange(ctx, ApplyOwnershipChangeInput{
		Kind:        MutationDelete,
		MintAddress: mint1,
		Symbol:      testSymbol,
		Event: OwnershipEventInput{
			EventID:       "01HDDDDDDDDDDDDDDDDDDDDDDD",
			DedupKey:      "burned-1",
			RunID:         "run-1",
			EventType:     string(domain.EventTypeBurned),
			PreviousOwner: strPtr(alice),
		},
		Notification: &OutboxInput{
			EventID:   "01HDDDDDDDDDDDDDDDDDDDDDDD",
			DedupKey:  "burned-1",
			EventType: string(domain.EventTypeBurned),
			Payload:   payload,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RowsAffected)
	assert.NotZero(t, result.OutboxID)

	nft, err := store.GetNFTByMint(ctx, mint1)
	require.NoError(t, err)
	assert.Nil(t, nft)
}

func testCollectionStats(t *testing.T, store Store) {
	ctx := context.Background()

	stats, err := store.GetCollectionStats(ctx, testSymbol)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.ListedPercent)
	assert.Nil(t, stats.FloorPrice)

	insertNFT(t, store, mint1, alice)
	insertNFT(t, store, mint2, bob)
	insertNFT(t, store, mint3, bob)
	_, err = store.ApplyOwnershipChange(ctx, buildListedInput(mint1, alice, "listed-stats"))
	require.NoError(t, err)

	stats, err = store.GetCollectionStats(ctx, testSymbol)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Listed)
	assert.InDelta(t, 33.33, stats.ListedPercent, 0.001)
	require.NotNil(t, stats.FloorPrice)
	assert.True(t, decimal.RequireFromString("12.5").Equal(*stats.FloorPrice))
}

// =============================================================================
// Test: Identity
// =============================================================================

func testDiscordIdentity(t *testing.T, store Store) {
	ctx := context.Background()
	db := store.(*pgStore).db

	require.NoError(t, db.Create(&schema.UserRole{DiscordID: "100", DiscordName: strPtr("alice")}).Error)
	require.NoError(t, db.Create(&schema.UserWallet{DiscordID: "100", WalletAddress: alice}).Error)
	require.NoError(t, db.Create(&schema.UserWallet{DiscordID: "200", WalletAddress: bob}).Error)

	t.Run("wallet with a profile", func(t *testing.T) {
		identity, err := store.GetDiscordIdentityByWallet(ctx, alice)
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, "100", identity.DiscordID)
		assert.Equal(t, "alice", *identity.DiscordName)
	})

	t.Run("wallet without a profile", func(t *testing.T) {
		identity, err := store.GetDiscordIdentityByWallet(ctx, bob)
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, "200", identity.DiscordID)
		assert.Nil(t, identity.DiscordName)
	})

	t.Run("unlinked wallet", func(t *testing.T) {
		identity, err := store.GetDiscordIdentityByWallet(ctx, domain.TENSOR_ESCROW)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})
}

// =============================================================================
// Test: Notification outbox
// =============================================================================

func testOutboxDelivery(t *testing.T, store Store) {
	ctx := context.Background()
	insertNFT(t, store, mint1, alice)
	insertNFT(t, store, mint2, alice)

	first, err := store.ApplyOwnershipChange(ctx, buildListedInput(mint1, alice, "listed-a"))
	require.NoError(t, err)
	second, err := store.ApplyOwnershipChange(ctx, buildListedInput(mint2, alice, "listed-b"))
	require.NoError(t, err)

	t.Run("claim marks entries as processing in order", func(t *testing.T) {
		claimed, err := store.ClaimPendingOutboxEntries(ctx, 1, time.Hour)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, first.OutboxID, claimed[0].ID)
		assert.Equal(t, schema.OutboxStatusProcessing, claimed[0].Status)

		claimed, err = store.ClaimPendingOutboxEntries(ctx, 10, time.Hour)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, second.OutboxID, claimed[0].ID)

		claimed, err = store.ClaimPendingOutboxEntries(ctx, 10, time.Hour)
		require.NoError(t, err)
		assert.Empty(t, claimed)
	})

	t.Run("stale processing entries are reclaimed after the lease", func(t *testing.T) {
		claimed, err := store.ClaimPendingOutboxEntries(ctx, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, claimed)

		time.Sleep(20 * time.Millisecond)

		claimed, err = store.ClaimPendingOutboxEntries(ctx, 10, 10*time.Millisecond)
		require.NoError(t, err)
		require.Len(t, claimed, 2)
		assert.Equal(t, first.OutboxID, claimed[0].ID)
		assert.Equal(t, second.OutboxID, claimed[1].ID)
		assert.Equal(t, schema.OutboxStatusProcessing, claimed[1].Status)

		claimed, err = store.ClaimPendingOutboxEntries(ctx, 10, time.Hour)
		require.NoError(t, err)
		assert.Empty(t, claimed)
	})

	t.Run("record results", func(t *testing.T) {
		require.NoError(t, store.SetOutboxWorkflow(ctx, first.OutboxID, "notification-1", "run-1"))
		require.NoError(t, store.UpdateOutboxStatus(ctx, UpdateOutboxStatusInput{
			ID:       first.OutboxID,
			Status:   schema.OutboxStatusSent,
			Attempts: 1,
		}))

		longError := make([]byte, 2000)
		for i := range longError {
			longError[i] = 'x'
		}
		require.NoError(t, store.UpdateOutboxStatus(ctx, UpdateOutboxStatusInput{
			ID:           second.OutboxID,
			Status:       schema.OutboxStatusFailed,
			Attempts:     5,
			ErrorMessage: string(longError),
		}))

		sent, err := store.GetOutboxEntryByID(ctx, first.OutboxID)
		require.NoError(t, err)
		assert.Equal(t, schema.OutboxStatusSent, sent.Status)
		assert.NotNil(t, sent.SentAt)
		assert.Equal(t, "notification-1", *sent.WorkflowID)

		failed, err := store.GetOutboxEntryByID(ctx, second.OutboxID)
		require.NoError(t, err)
		assert.Equal(t, schema.OutboxStatusFailed, failed.Status)
		assert.Equal(t, 5, failed.Attempts)
		assert.Len(t, failed.ErrorMessage, 1024)

		entries, err := store.GetOutboxEntries(ctx, OutboxQueryFilter{Statuses: []schema.OutboxStatus{schema.OutboxStatusFailed}})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, second.OutboxID, entries[0].ID)
	})

	t.Run("requeue", func(t *testing.T) {
		err := store.RequeueOutboxEntry(ctx, first.OutboxID)
		assert.ErrorIs(t, err, domain.ErrOutboxEntryNotRequeueable)

		err = store.RequeueOutboxEntry(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrOutboxEntryNotFound)

		count, err := store.RequeueFailedOutboxEntries(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		entry, err := store.GetOutboxEntryByID(ctx, second.OutboxID)
		require.NoError(t, err)
		assert.Equal(t, schema.OutboxStatusPending, entry.Status)
		assert.Zero(t, entry.Attempts)
		assert.Empty(t, entry.ErrorMessage)
	})

	t.Run("unknown entry", func(t *testing.T) {
		err := store.UpdateOutboxStatus(ctx, UpdateOutboxStatusInput{ID: 999999, Status: schema.OutboxStatusSent})
		assert.ErrorIs(t, err, domain.ErrOutboxEntryNotFound)

		err = store.UpdateOutboxStatus(ctx, UpdateOutboxStatusInput{ID: first.OutboxID, Status: "bogus"})
		assert.Error(t, err)
	})
}

// =============================================================================
// Test: Key-value store
// =============================================================================

func testKeyValueStore(t *testing.T, store Store) {
	ctx := context.Background()

	value, err := store.GetKeyValue(ctx, "reconcile:last_run:CelebCatz")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetKeyValue(ctx, "reconcile:last_run:CelebCatz", `{"errors":0}`))
	require.NoError(t, store.SetKeyValue(ctx, "reconcile:last_run:MM", `{"errors":1}`))
	require.NoError(t, store.SetKeyValue(ctx, "reconcile:last_run:CelebCatz", `{"errors":2}`))

	value, err = store.GetKeyValue(ctx, "reconcile:last_run:CelebCatz")
	require.NoError(t, err)
	assert.Equal(t, `{"errors":2}`, value)

	all, err := store.GetAllKeyValuesByPrefix(ctx, "reconcile:last_run:")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// RunStoreTests runs the store tests against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"InsertNFT", testInsertNFT},
		{"GetNFTsBySymbol", testGetNFTsBySymbol},
		{"ListingLifecycle", testListingLifecycle},
		{"UpdateMissingNFTRollsBack", testUpdateMissingNFTRollsBack},
		{"ListingConstraint", testListingConstraint},
		{"BurnDeletesNFT", testBurnDeletesNFT},
		{"CollectionStats", testCollectionStats},
		{"DiscordIdentity", testDiscordIdentity},
		{"OutboxDelivery", testOutboxDelivery},
		{"KeyValueStore", testKeyValueStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, initDB(t))
		})
	}
}
