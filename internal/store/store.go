package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// MutationKind is the row operation of an ownership change
type MutationKind string

const (
	// MutationInsert inserts a newly seen mint
	MutationInsert MutationKind = "insert"
	// MutationUpdate overwrites the ownership and listing columns of a mint
	MutationUpdate MutationKind = "update"
	// MutationDelete removes a burned mint
	MutationDelete MutationKind = "delete"
)

// NFTOwnershipUpdate holds the absolute values written by MutationUpdate.
// Nil listing fields are written as NULL.
type NFTOwnershipUpdate struct {
	OwnerWallet       string
	IsListed          bool
	ListPrice         *decimal.Decimal
	Marketplace       *string
	OriginalLister    *string
	ListerDiscordName *string
	// LastSalePrice is only written when set
	LastSalePrice *decimal.Decimal
	// RefreshOwnerIdentity writes OwnerDiscordID and OwnerName, including NULLs
	RefreshOwnerIdentity bool
	OwnerDiscordID       *string
	OwnerName            *string
}

// OwnershipEventInput is the journal row of an ownership change
type OwnershipEventInput struct {
	EventID       string
	DedupKey      string
	RunID         string
	EventType     string
	PreviousOwner *string
	NewOwner      *string
	Marketplace   *string
	Price         *decimal.Decimal
	Signature     *string
	Meta          json.RawMessage
	OccurredAt    time.Time
}

// OutboxInput is the notification written with an ownership change
type OutboxInput struct {
	EventID   string
	DedupKey  string
	EventType string
	Payload   json.RawMessage
}

// ApplyOwnershipChangeInput describes one record mutation together with its journal
// row and optional notification. All of it is written in a single transaction.
type ApplyOwnershipChangeInput struct {
	Kind        MutationKind
	MintAddress string
	Symbol      string
	// Record is required for MutationInsert
	Record *schema.NFTMetadata
	// Update is required for MutationUpdate
	Update *NFTOwnershipUpdate
	Event  OwnershipEventInput
	// Notification is nil when the change is not announced
	Notification *OutboxInput
}

// ApplyResult reports what an ApplyOwnershipChange call wrote
type ApplyResult struct {
	// RowsAffected is the number of nft_metadata rows touched
	RowsAffected int64
	// Journaled is false when the event was already journaled
	Journaled bool
	// OutboxID is the id of the created outbox entry, zero when none was created
	OutboxID uint64
}

// DiscordIdentity is the discord account linked to a wallet
type DiscordIdentity struct {
	DiscordID   string
	DiscordName *string
}

// CollectionStats summarizes the listing state of a collection
type CollectionStats struct {
	Symbol        string           `json:"symbol"`
	Total         int64            `json:"total"`
	Listed        int64            `json:"listed"`
	ListedPercent float64          `json:"listed_percent"`
	FloorPrice    *decimal.Decimal `json:"floor_price,omitempty"`
}

// OutboxQueryFilter filters outbox entries
type OutboxQueryFilter struct {
	Statuses []schema.OutboxStatus
	Limit    int
	Offset   uint64
}

// UpdateOutboxStatusInput records the result of a delivery attempt
type UpdateOutboxStatusInput struct {
	ID           uint64
	Status       schema.OutboxStatus
	Attempts     int
	ErrorMessage string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetNFTsBySymbol returns every stored record of a collection
	GetNFTsBySymbol(ctx context.Context, symbol string) ([]schema.NFTMetadata, error)
	// GetNFTByMint returns a record by mint address, nil when not found
	GetNFTByMint(ctx context.Context, mintAddress string) (*schema.NFTMetadata, error)
	// GetCollectionStats returns listing counts of a collection
	GetCollectionStats(ctx context.Context, symbol string) (*CollectionStats, error)
	// ApplyOwnershipChange applies one record mutation with its journal row and outbox entry
	ApplyOwnershipChange(ctx context.Context, input ApplyOwnershipChangeInput) (*ApplyResult, error)
	// GetOwnershipEventsByMint returns the journal of a mint, newest first
	GetOwnershipEventsByMint(ctx context.Context, mintAddress string, limit int) ([]schema.OwnershipEvent, error)

	// GetDiscordIdentityByWallet returns the discord account linked to a wallet, nil when none
	GetDiscordIdentityByWallet(ctx context.Context, walletAddress string) (*DiscordIdentity, error)

	// GetOutboxEntryByID retrieves an outbox entry by id
	GetOutboxEntryByID(ctx context.Context, id uint64) (*schema.NotificationOutbox, error)
	// GetOutboxEntries lists outbox entries, oldest first
	GetOutboxEntries(ctx context.Context, filter OutboxQueryFilter) ([]schema.NotificationOutbox, error)
	// ClaimPendingOutboxEntries marks up to limit pending entries as processing and returns them.
	// Processing entries older than lease are reclaimed, a lease <= 0 disables reclaiming.
	ClaimPendingOutboxEntries(ctx context.Context, limit int, lease time.Duration) ([]schema.NotificationOutbox, error)
	// SetOutboxWorkflow records the workflow delivering an entry
	SetOutboxWorkflow(ctx context.Context, id uint64, workflowID, runID string) error
	// UpdateOutboxStatus records the result of a delivery attempt
	UpdateOutboxStatus(ctx context.Context, input UpdateOutboxStatusInput) error
	// RequeueOutboxEntry moves a failed or stuck entry back to pending
	RequeueOutboxEntry(ctx context.Context, id uint64) error
	// RequeueFailedOutboxEntries moves up to limit failed entries back to pending
	RequeueFailedOutboxEntries(ctx context.Context, limit int) (int64, error)

	// SetKeyValue stores a value in the key-value store
	SetKeyValue(ctx context.Context, key string, value string) error
	// GetKeyValue retrieves a value by key, empty when not found
	GetKeyValue(ctx context.Context, key string) (string, error)
	// GetAllKeyValuesByPrefix retrieves all key-value pairs with a specific prefix
	GetAllKeyValuesByPrefix(ctx context.Context, prefix string) (map[string]string, error)
}
