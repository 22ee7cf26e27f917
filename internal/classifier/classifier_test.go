package classifier_test

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/classifier"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

const (
	alice = "3x9az88Dkbxa6tkKByxqEn7jBTJCJCD4dVvou49L24ET"
	bob   = "9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6"
	carol = "68GLr8rYqhXTRgYuH5MN7BeswuPxjeEZRLMzunr9JQCt"
	mint  = "C9cAPKjWG8dsujybrn6LhXnTxAx3Y6Z9HVtrfQ1Cn8Hy"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(s string) *string {
	return &s
}

func lamports(sol string) *decimal.Decimal {
	d := decimal.RequireFromString(sol).Mul(decimal.NewFromInt(1_000_000_000))
	return &d
}

func input(prev string, next *string, txs ...domain.Transaction) classifier.Input {
	return classifier.Input{
		MintAddress:   mint,
		PreviousOwner: prev,
		NewOwner:      next,
		Escrows:       domain.DefaultEscrowSet(),
		Transactions:  txs,
		WindowSize:    5,
		Now:           now,
	}
}

func saleTx(sig string, amount *decimal.Decimal) domain.Transaction {
	return domain.Transaction{
		Signature: sig,
		Timestamp: now.Add(-time.Minute),
		NFTEvent: &domain.NFTEvent{
			Type:   "NFT_SALE",
			Source: "MAGIC_EDEN",
			Amount: amount,
			Buyer:  bob,
			Seller: alice,
		},
	}
}

func assertPrice(t *testing.T, expected string, actual *decimal.Decimal) {
	t.Helper()
	if expected == "" {
		assert.Nil(t, actual)
		return
	}
	require.NotNil(t, actual)
	assert.True(t, decimal.RequireFromString(expected).Equal(*actual), "expected %s, got %s", expected, actual.String())
}

func TestClassify_Burned(t *testing.T) {
	// A missing owner wins over any transaction signal
	ev, rule := classifier.New().Classify(input(alice, nil, saleTx("sig", lamports("10"))))

	assert.Equal(t, "burned", rule)
	assert.Equal(t, domain.EventTypeBurned, ev.Type)
	assert.Nil(t, ev.NewOwner)
	assert.Equal(t, alice, ev.PreviousOwner)
	assert.Equal(t, now, ev.Timestamp)
}

func TestClassify_StructuredSale(t *testing.T) {
	ev := classifier.Classify(input(alice, ptr(bob), saleTx("sig-sale", lamports("12.5"))))

	assert.Equal(t, domain.EventTypeSold, ev.Type)
	assert.Equal(t, "sig-sale", ev.Signature)
	require.NotNil(t, ev.Marketplace)
	assert.Equal(t, domain.MARKETPLACE_MAGIC_EDEN, *ev.Marketplace)
	assertPrice(t, "12.5", ev.Price)
	assert.Equal(t, bob, *ev.Buyer)
	assert.Equal(t, alice, *ev.Seller)
	assert.Equal(t, now.Add(-time.Minute), ev.Timestamp)
}

func TestClassify_StructuredEventBeatsText(t *testing.T) {
	text := domain.Transaction{Signature: "sig-text", Description: "alice transferred Celeb #1 to bob"}
	ev, rule := classifier.New().Classify(input(alice, ptr(bob), text, saleTx("sig-sale", lamports("3"))))

	assert.Equal(t, "nft_event", rule)
	assert.Equal(t, domain.EventTypeSold, ev.Type)
	assert.Equal(t, "sig-sale", ev.Signature)
}

func TestClassify_StructuredEventDefaults(t *testing.T) {
	tx := saleTx("sig", lamports("1"))
	tx.NFTEvent.Buyer = ""
	tx.NFTEvent.Seller = ""
	tx.NFTEvent.Source = ""

	ev := classifier.Classify(input(alice, ptr(carol), tx))

	assert.Equal(t, domain.EventTypeSold, ev.Type)
	assert.Equal(t, carol, *ev.Buyer)
	assert.Equal(t, alice, *ev.Seller)
	assert.Equal(t, domain.MARKETPLACE_UNKNOWN, *ev.Marketplace)
}

func TestClassify_PriceBounds(t *testing.T) {
	tests := []struct {
		name     string
		amount   *decimal.Decimal
		expected string
	}{
		{name: "below minimum", amount: lamports("0.005"), expected: ""},
		{name: "above maximum", amount: lamports("150000"), expected: ""},
		{name: "in range", amount: lamports("50"), expected: "50"},
		{name: "lower bound", amount: lamports("0.01"), expected: "0.01"},
		{name: "upper bound", amount: lamports("100000"), expected: "100000"},
		{name: "missing", amount: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := classifier.Classify(input(alice, ptr(bob), saleTx("sig", tt.amount)))
			assert.Equal(t, domain.EventTypeSold, ev.Type)
			assertPrice(t, tt.expected, ev.Price)
		})
	}
}

func TestClassify_TokenTransferPriceFallback(t *testing.T) {
	tx := saleTx("sig", nil)
	tx.TokenTransfers = []domain.TokenTransfer{
		{Mint: "other", Amount: lamports("99")},
		{Mint: mint, Amount: lamports("2")},
	}

	ev := classifier.Classify(input(alice, ptr(bob), tx))
	assertPrice(t, "2", ev.Price)
}

func TestClassify_StructuredListingAndCancel(t *testing.T) {
	listing := domain.Transaction{
		Signature: "sig-list",
		NFTEvent:  &domain.NFTEvent{Type: "NFT_LISTING", Source: "TENSOR", Amount: lamports("4.2")},
	}
	ev := classifier.Classify(input(alice, ptr(domain.TENSOR_ESCROW), listing))

	assert.Equal(t, domain.EventTypeListed, ev.Type)
	assert.Equal(t, domain.MARKETPLACE_TENSOR, *ev.Marketplace)
	assert.Equal(t, alice, *ev.Seller)
	assertPrice(t, "4.2", ev.Price)
	assert.Equal(t, now, ev.Timestamp)

	cancel := domain.Transaction{
		Signature: "sig-cancel",
		NFTEvent:  &domain.NFTEvent{Type: "NFT_CANCEL_LISTING", Source: "TENSOR"},
	}
	ev = classifier.Classify(input(domain.TENSOR_ESCROW, ptr(alice), cancel))

	assert.Equal(t, domain.EventTypeDelisted, ev.Type)
	assert.Equal(t, "sig-cancel", ev.Signature)
}

func TestClassify_TensorListingPrice(t *testing.T) {
	data := make([]byte, 32)
	binary.LittleEndian.PutUint64(data[16:24], 1_500_000_000)

	listing := domain.Transaction{
		Signature: "sig-list",
		NFTEvent:  &domain.NFTEvent{Type: "NFT_LISTING", Source: "TENSOR"},
		Instructions: []domain.Instruction{
			{ProgramID: "ComputeBudget111111111111111111111111111111", Data: "AAAA"},
			{ProgramID: domain.TENSOR_SWAP_PROGRAM_ID, Data: base64.StdEncoding.EncodeToString(data)},
		},
	}

	ev := classifier.Classify(input(alice, ptr(domain.TENSOR_ESCROW), listing))
	assert.Equal(t, domain.EventTypeListed, ev.Type)
	assertPrice(t, "1.5", ev.Price)
}

func TestClassify_Description(t *testing.T) {
	tests := []struct {
		name        string
		description string
		eventType   domain.EventType
		marketplace string
		price       string
	}{
		{
			name:        "collection offer",
			description: "bob accepted a Collection Offer for Celeb #1 at 3.5 SOL",
			eventType:   domain.EventTypeSold,
			marketplace: domain.MARKETPLACE_COLLECTION_OFFER,
			price:       "3.5",
		},
		{
			name:        "bid accepted",
			description: "Bid accepted: 7 sol",
			eventType:   domain.EventTypeSold,
			marketplace: domain.MARKETPLACE_COLLECTION_OFFER,
			price:       "7",
		},
		{
			name:        "direct sale",
			description: "alice sold Celeb #1 to bob for 0.8 SOL",
			eventType:   domain.EventTypeSold,
			marketplace: domain.MARKETPLACE_DIRECT_SALE,
			price:       "0.8",
		},
		{
			name:        "sale price out of range",
			description: "bob made a purchase for 0.001 SOL",
			eventType:   domain.EventTypeSold,
			marketplace: domain.MARKETPLACE_DIRECT_SALE,
			price:       "",
		},
		{
			name:        "transfer",
			description: "alice sent Celeb #1 to bob",
			eventType:   domain.EventTypeTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := domain.Transaction{Signature: "sig", Description: tt.description}
			ev, rule := classifier.New().Classify(input(alice, ptr(bob), tx))

			assert.Equal(t, "description", rule)
			assert.Equal(t, tt.eventType, ev.Type)
			assert.Equal(t, "sig", ev.Signature)
			if tt.marketplace != "" {
				require.NotNil(t, ev.Marketplace)
				assert.Equal(t, tt.marketplace, *ev.Marketplace)
				assert.Equal(t, bob, *ev.Buyer)
				assert.Equal(t, alice, *ev.Seller)
			}
			assertPrice(t, tt.price, ev.Price)
		})
	}
}

func TestClassify_WindowBound(t *testing.T) {
	txs := make([]domain.Transaction, 0, 6)
	for range 5 {
		txs = append(txs, domain.Transaction{Signature: "noise", Description: "swap"})
	}
	txs = append(txs, saleTx("too-old", lamports("5")))

	ev, rule := classifier.New().Classify(input(alice, ptr(bob), txs...))
	assert.Equal(t, "default_transfer", rule)
	assert.Equal(t, domain.EventTypeTransfer, ev.Type)
	assert.Empty(t, ev.Signature)
}

func TestClassify_EscrowHeuristic(t *testing.T) {
	tests := []struct {
		name           string
		prev           string
		next           string
		originalLister *string
		eventType      domain.EventType
		marketplace    string
		buyer          string
		seller         string
	}{
		{
			name:        "into escrow is a listing",
			prev:        alice,
			next:        domain.MAGIC_EDEN_ESCROW,
			eventType:   domain.EventTypeListed,
			marketplace: domain.MARKETPLACE_MAGIC_EDEN,
			seller:      alice,
		},
		{
			name:           "back to the lister is a delisting",
			prev:           domain.MAGIC_EDEN_ESCROW,
			next:           alice,
			originalLister: ptr(alice),
			eventType:      domain.EventTypeDelisted,
			marketplace:    domain.MARKETPLACE_MAGIC_EDEN,
			seller:         alice,
		},
		{
			name:           "out to someone else is a sale",
			prev:           domain.TENSOR_ESCROW,
			next:           bob,
			originalLister: ptr(alice),
			eventType:      domain.EventTypeSold,
			marketplace:    domain.MARKETPLACE_TENSOR,
			buyer:          bob,
			seller:         alice,
		},
		{
			name:        "unknown lister is a delisting",
			prev:        domain.TENSOR_ESCROW,
			next:        bob,
			eventType:   domain.EventTypeDelisted,
			marketplace: domain.MARKETPLACE_TENSOR,
		},
		{
			name:           "between escrows is a relisting",
			prev:           domain.MAGIC_EDEN_ESCROW,
			next:           domain.TENSOR_ESCROW,
			originalLister: ptr(alice),
			eventType:      domain.EventTypeListed,
			marketplace:    domain.MARKETPLACE_TENSOR,
			seller:         alice,
		},
		{
			name:        "between escrows with an unknown lister",
			prev:        domain.TENSOR_ESCROW,
			next:        domain.MAGIC_EDEN_ESCROW,
			eventType:   domain.EventTypeListed,
			marketplace: domain.MARKETPLACE_MAGIC_EDEN,
		},
		{
			name:      "between wallets is a transfer",
			prev:      alice,
			next:      bob,
			eventType: domain.EventTypeTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input(tt.prev, ptr(tt.next))
			in.OriginalLister = tt.originalLister

			ev := classifier.Classify(in)
			assert.Equal(t, tt.eventType, ev.Type)
			assert.Nil(t, ev.Price)
			if tt.marketplace != "" {
				require.NotNil(t, ev.Marketplace)
				assert.Equal(t, tt.marketplace, *ev.Marketplace)
			}
			if tt.buyer != "" {
				require.NotNil(t, ev.Buyer)
				assert.Equal(t, tt.buyer, *ev.Buyer)
			}
			if tt.seller != "" {
				require.NotNil(t, ev.Seller)
				assert.Equal(t, tt.seller, *ev.Seller)
			}
		})
	}
}

func TestClassify_EscrowMatchIsCaseSensitive(t *testing.T) {
	ev := classifier.Classify(input(alice, ptr("1bwutmtvypwdtmw9abtks4ssr8no61spgavw1x6ndix")))
	assert.Equal(t, domain.EventTypeTransfer, ev.Type)
}

func TestClassify_CustomRules(t *testing.T) {
	never := classifier.Rule{
		Name: "never",
		Apply: func(classifier.Input) (domain.ClassifiedEvent, bool) {
			return domain.ClassifiedEvent{}, false
		},
	}

	ev, rule := classifier.New(never).Classify(input(alice, ptr(bob)))
	assert.Equal(t, "default_transfer", rule)
	assert.Equal(t, domain.EventTypeTransfer, ev.Type)
	assert.Equal(t, mint, ev.MintAddress)
}
