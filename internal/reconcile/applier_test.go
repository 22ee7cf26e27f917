package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/identity"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testApplierMocks struct {
	ctrl     *gomock.Controller
	store    *mocks.MockStore
	resolver *mocks.MockIdentityResolver
	clock    *mocks.MockClock
	applier  reconcile.Applier
}

func setupTestApplier(t *testing.T) *testApplierMocks {
	ctrl := gomock.NewController(t)
	tm := &testApplierMocks{
		ctrl:     ctrl,
		store:    mocks.NewMockStore(ctrl),
		resolver: mocks.NewMockIdentityResolver(ctrl),
		clock:    mocks.NewMockClock(ctrl),
	}
	tm.applier = reconcile.NewApplier(tm.store, tm.resolver, domain.DefaultEscrowSet(), tm.clock)
	tm.clock.EXPECT().Now().Return(testNow).AnyTimes()

	// alice is linked, everyone else is not
	tm.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, wallet string) (identity.Identity, error) {
			if wallet == alice {
				return identity.Identity{DiscordID: ptr("1001"), DiscordName: ptr("alice")}, nil
			}
			return identity.Identity{}, nil
		}).AnyTimes()
	return tm
}

// captureApply records the input of the next ApplyOwnershipChange call
func (tm *testApplierMocks) captureApply(result *store.ApplyResult) *store.ApplyOwnershipChangeInput {
	captured := &store.ApplyOwnershipChangeInput{}
	tm.store.EXPECT().ApplyOwnershipChange(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input store.ApplyOwnershipChangeInput) (*store.ApplyResult, error) {
			*captured = input
			return result, nil
		})
	return captured
}

var testRun = reconcile.RunContext{RunID: "run-1", Collection: celebCatz}

func TestApplyChange_Listed(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	price := decimal.RequireFromString("1.5")
	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeListed,
		MintAddress:   mint1,
		PreviousOwner: alice,
		NewOwner:      ptr(domain.MAGIC_EDEN_ESCROW),
		Marketplace:   ptr(domain.MARKETPLACE_MAGIC_EDEN),
		Price:         &price,
		Seller:        ptr(alice),
		Signature:     "sig-list",
		Timestamp:     testNow,
	}

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1, Journaled: true, OutboxID: 7})

	result, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, alice), ev, "nft_event")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), result.OutboxID)

	assert.Equal(t, store.MutationUpdate, captured.Kind)
	require.NotNil(t, captured.Update)
	assert.Equal(t, domain.MAGIC_EDEN_ESCROW, captured.Update.OwnerWallet)
	assert.True(t, captured.Update.IsListed)
	assert.True(t, price.Equal(*captured.Update.ListPrice))
	assert.Equal(t, domain.MARKETPLACE_MAGIC_EDEN, *captured.Update.Marketplace)
	assert.Equal(t, alice, *captured.Update.OriginalLister)
	assert.Equal(t, "alice", *captured.Update.ListerDiscordName)
	assert.False(t, captured.Update.RefreshOwnerIdentity)
	assert.Nil(t, captured.Update.LastSalePrice)

	assert.Equal(t, "run-1", captured.Event.RunID)
	assert.Equal(t, "listed", captured.Event.EventType)
	assert.Len(t, captured.Event.EventID, 26)
	assert.Len(t, captured.Event.DedupKey, 64)
	assert.Equal(t, "sig-list", *captured.Event.Signature)
	assert.JSONEq(t, `{"rule":"nft_event","seller":"`+alice+`"}`, string(captured.Event.Meta))

	require.NotNil(t, captured.Notification)
	assert.Equal(t, captured.Event.EventID, captured.Notification.EventID)
	assert.Equal(t, captured.Event.DedupKey, captured.Notification.DedupKey)

	payload, err := notification.ParsePayload(captured.Notification.Payload)
	require.NoError(t, err)
	assert.Equal(t, alice, payload.From.Wallet)
	assert.Equal(t, "alice", *payload.From.DiscordName)
	assert.Nil(t, payload.To)
}

func TestApplyChange_ListedMarketplaceFallback(t *testing.T) {
	tests := []struct {
		name     string
		newOwner string
		expected string
	}{
		{name: "escrow identity", newOwner: domain.TENSOR_ESCROW, expected: domain.MARKETPLACE_TENSOR},
		{name: "unknown escrow", newOwner: carol, expected: domain.MARKETPLACE_UNKNOWN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestApplier(t)
			defer tm.ctrl.Finish()

			captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
			ev := domain.ClassifiedEvent{
				Type:          domain.EventTypeListed,
				MintAddress:   mint1,
				PreviousOwner: bob,
				NewOwner:      ptr(tt.newOwner),
				Timestamp:     testNow,
			}

			_, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "escrow")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *captured.Update.Marketplace)
			assert.Equal(t, bob, *captured.Update.OriginalLister)
			assert.Nil(t, captured.Update.ListerDiscordName)
			assert.Nil(t, captured.Update.ListPrice)
		})
	}
}

func TestApplyChange_RelistBetweenEscrowsKeepsLister(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	listed := record(mint1, domain.MAGIC_EDEN_ESCROW)
	listed.IsListed = true
	listed.Marketplace = ptr(domain.MARKETPLACE_MAGIC_EDEN)
	listed.OriginalLister = ptr(alice)

	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeListed,
		MintAddress:   mint1,
		PreviousOwner: domain.MAGIC_EDEN_ESCROW,
		NewOwner:      ptr(domain.TENSOR_ESCROW),
		Marketplace:   ptr(domain.MARKETPLACE_TENSOR),
		Seller:        ptr(alice),
		Timestamp:     testNow,
	}

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1, Journaled: true, OutboxID: 9})

	_, err := tm.applier.ApplyChange(context.Background(), testRun, listed, ev, "escrow")
	require.NoError(t, err)

	require.NotNil(t, captured.Update)
	assert.Equal(t, domain.TENSOR_ESCROW, captured.Update.OwnerWallet)
	assert.True(t, captured.Update.IsListed)
	assert.Equal(t, domain.MARKETPLACE_TENSOR, *captured.Update.Marketplace)
	assert.Equal(t, alice, *captured.Update.OriginalLister)
	assert.Equal(t, "alice", *captured.Update.ListerDiscordName)

	require.NotNil(t, captured.Notification)
	payload, err := notification.ParsePayload(captured.Notification.Payload)
	require.NoError(t, err)
	assert.Equal(t, alice, payload.From.Wallet)
}

func TestApplyChange_Sold(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	listed := record(mint1, domain.MAGIC_EDEN_ESCROW)
	listed.IsListed = true
	listed.OriginalLister = ptr(bob)
	listed.Marketplace = ptr(domain.MARKETPLACE_MAGIC_EDEN)

	price := decimal.RequireFromString("2.0")
	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeSold,
		MintAddress:   mint1,
		PreviousOwner: domain.MAGIC_EDEN_ESCROW,
		NewOwner:      ptr(alice),
		Marketplace:   ptr(domain.MARKETPLACE_MAGIC_EDEN),
		Price:         &price,
		Buyer:         ptr(alice),
		Seller:        ptr(bob),
		Signature:     "sig-sale",
		Timestamp:     testNow,
	}

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1, Journaled: true, OutboxID: 8})

	_, err := tm.applier.ApplyChange(context.Background(), testRun, listed, ev, "nft_event")
	require.NoError(t, err)

	update := captured.Update
	require.NotNil(t, update)
	assert.Equal(t, alice, update.OwnerWallet)
	assert.False(t, update.IsListed)
	assert.Nil(t, update.ListPrice)
	assert.Nil(t, update.Marketplace)
	assert.Nil(t, update.OriginalLister)
	assert.Nil(t, update.ListerDiscordName)
	assert.True(t, price.Equal(*update.LastSalePrice))
	assert.True(t, update.RefreshOwnerIdentity)
	assert.Equal(t, "1001", *update.OwnerDiscordID)
	assert.Equal(t, "alice", *update.OwnerName)

	payload, err := notification.ParsePayload(captured.Notification.Payload)
	require.NoError(t, err)
	assert.Equal(t, bob, payload.From.Wallet)
	require.NotNil(t, payload.To)
	assert.Equal(t, alice, payload.To.Wallet)
	assert.Equal(t, "alice", *payload.To.DiscordName)
}

func TestApplyChange_SaleWithoutPriceKeepsLastSale(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeSold,
		MintAddress:   mint1,
		PreviousOwner: bob,
		NewOwner:      ptr(carol),
		Timestamp:     testNow,
	}

	_, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "description")
	require.NoError(t, err)
	assert.Nil(t, captured.Update.LastSalePrice)
}

func TestApplyChange_DelistedAndTransfer(t *testing.T) {
	tests := []struct {
		name  string
		event domain.EventType
		rec   func() schema.NFTMetadata
		from  string
	}{
		{
			name:  "delisted back to lister",
			event: domain.EventTypeDelisted,
			rec: func() schema.NFTMetadata {
				r := record(mint1, domain.TENSOR_ESCROW)
				r.IsListed = true
				r.OriginalLister = ptr(alice)
				r.Marketplace = ptr(domain.MARKETPLACE_TENSOR)
				return r
			},
			from: alice,
		},
		{
			name:  "plain transfer",
			event: domain.EventTypeTransfer,
			rec:   func() schema.NFTMetadata { return record(mint1, bob) },
			from:  bob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestApplier(t)
			defer tm.ctrl.Finish()

			rec := tt.rec()
			captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
			ev := domain.ClassifiedEvent{
				Type:          tt.event,
				MintAddress:   mint1,
				PreviousOwner: rec.OwnerWallet,
				NewOwner:      ptr(alice),
				Timestamp:     testNow,
			}

			_, err := tm.applier.ApplyChange(context.Background(), testRun, rec, ev, "escrow")
			require.NoError(t, err)

			assert.Equal(t, alice, captured.Update.OwnerWallet)
			assert.False(t, captured.Update.IsListed)
			assert.Nil(t, captured.Update.Marketplace)
			assert.Nil(t, captured.Update.OriginalLister)
			assert.True(t, captured.Update.RefreshOwnerIdentity)
			assert.Equal(t, "1001", *captured.Update.OwnerDiscordID)

			payload, err := notification.ParsePayload(captured.Notification.Payload)
			require.NoError(t, err)
			assert.Equal(t, tt.from, payload.From.Wallet)
			assert.Equal(t, alice, payload.To.Wallet)
		})
	}
}

func TestApplyChange_Burned(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	listed := record(mint1, domain.MAGIC_EDEN_ESCROW)
	listed.IsListed = true
	listed.OriginalLister = ptr(alice)

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1, Journaled: true, OutboxID: 9})
	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeBurned,
		MintAddress:   mint1,
		PreviousOwner: domain.MAGIC_EDEN_ESCROW,
		Timestamp:     testNow,
	}

	_, err := tm.applier.ApplyChange(context.Background(), testRun, listed, ev, "burned")
	require.NoError(t, err)

	assert.Equal(t, store.MutationDelete, captured.Kind)
	assert.Nil(t, captured.Update)
	assert.Nil(t, captured.Event.NewOwner)

	// The notification names the last real holder, not the escrow
	payload, err := notification.ParsePayload(captured.Notification.Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeBurned, payload.EventType)
	assert.Equal(t, alice, payload.From.Wallet)
	assert.Equal(t, "alice", *payload.From.DiscordName)
}

func TestApplyChange_SameChangeSameKey(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	rec := record(mint1, bob)
	rec.UpdatedAt = testNow.Add(-time.Hour)
	ev := domain.ClassifiedEvent{
		Type:          domain.EventTypeTransfer,
		MintAddress:   mint1,
		PreviousOwner: bob,
		NewOwner:      ptr(carol),
		Timestamp:     testNow,
	}

	first := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
	_, err := tm.applier.ApplyChange(context.Background(), testRun, rec, ev, "default_transfer")
	require.NoError(t, err)

	// A retry of the same change in a later run hits the same dedup key
	second := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
	ev.Timestamp = testNow.Add(15 * time.Minute)
	_, err = tm.applier.ApplyChange(context.Background(), reconcile.RunContext{RunID: "run-2", Collection: celebCatz}, rec, ev, "default_transfer")
	require.NoError(t, err)
	assert.Equal(t, first.Event.DedupKey, second.Event.DedupKey)
	assert.NotEqual(t, first.Event.EventID, second.Event.EventID)

	// The same owner change observed against a later stored state is a new event
	third := tm.captureApply(&store.ApplyResult{RowsAffected: 1})
	rec.UpdatedAt = testNow
	_, err = tm.applier.ApplyChange(context.Background(), testRun, rec, ev, "default_transfer")
	require.NoError(t, err)
	assert.NotEqual(t, first.Event.DedupKey, third.Event.DedupKey)
}

func TestApplyChange_Errors(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		tm := setupTestApplier(t)
		defer tm.ctrl.Finish()

		tm.store.EXPECT().ApplyOwnershipChange(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNFTNotFound)
		ev := domain.ClassifiedEvent{Type: domain.EventTypeTransfer, MintAddress: mint1, PreviousOwner: bob, NewOwner: ptr(carol)}

		_, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "default_transfer")
		assert.ErrorIs(t, err, domain.ErrNFTNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		tm := setupTestApplier(t)
		defer tm.ctrl.Finish()

		ev := domain.ClassifiedEvent{Type: domain.EventTypeUnknown, MintAddress: mint1}
		_, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "")
		assert.Error(t, err)
	})

	t.Run("transfer without owner", func(t *testing.T) {
		tm := setupTestApplier(t)
		defer tm.ctrl.Finish()

		ev := domain.ClassifiedEvent{Type: domain.EventTypeTransfer, MintAddress: mint1, PreviousOwner: bob}
		_, err := tm.applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "")
		assert.Error(t, err)
	})
}

func TestApplyChange_IdentityFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	resolver := mocks.NewMockIdentityResolver(ctrl)
	clock := mocks.NewMockClock(ctrl)
	applier := reconcile.NewApplier(st, resolver, domain.DefaultEscrowSet(), clock)

	clock.EXPECT().Now().Return(testNow).AnyTimes()
	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(identity.Identity{}, errors.New("db down")).AnyTimes()
	st.EXPECT().ApplyOwnershipChange(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input store.ApplyOwnershipChangeInput) (*store.ApplyResult, error) {
			assert.Nil(t, input.Update.OwnerDiscordID)
			assert.Nil(t, input.Update.OwnerName)
			return &store.ApplyResult{RowsAffected: 1}, nil
		})

	ev := domain.ClassifiedEvent{Type: domain.EventTypeTransfer, MintAddress: mint1, PreviousOwner: bob, NewOwner: ptr(alice)}
	_, err := applier.ApplyChange(context.Background(), testRun, record(mint1, bob), ev, "default_transfer")
	assert.NoError(t, err)
}

func TestInsertNew(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	captured := tm.captureApply(&store.ApplyResult{RowsAffected: 1, Journaled: true})

	a := asset(mint1, ptr(alice))
	a.ImageURL = ptr("https://img.example.com/1.png")
	a.Attributes = json.RawMessage(`[{"trait_type":"Hat","value":"Crown"}]`)

	_, err := tm.applier.InsertNew(context.Background(), testRun, a)
	require.NoError(t, err)

	assert.Equal(t, store.MutationInsert, captured.Kind)
	require.NotNil(t, captured.Record)
	assert.Equal(t, "CelebCatz", captured.Record.Symbol)
	assert.Equal(t, alice, captured.Record.OwnerWallet)
	assert.False(t, captured.Record.IsListed)
	assert.Nil(t, captured.Record.Marketplace)
	assert.Nil(t, captured.Record.ListPrice)
	assert.Nil(t, captured.Record.OriginalLister)
	assert.Equal(t, "alice", *captured.Record.OwnerName)
	assert.JSONEq(t, `[{"trait_type":"Hat","value":"Crown"}]`, string(captured.Record.Attributes))

	assert.Equal(t, "new", captured.Event.EventType)
	assert.Nil(t, captured.Notification)
}

func TestInsertNew_WithoutOwner(t *testing.T) {
	tm := setupTestApplier(t)
	defer tm.ctrl.Finish()

	_, err := tm.applier.InsertNew(context.Background(), testRun, asset(mint1, nil))
	assert.Error(t, err)
}
