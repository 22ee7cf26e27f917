package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the semantic classification of an ownership change
type EventType string

const (
	EventTypeListed   EventType = "listed"
	EventTypeDelisted EventType = "delisted"
	EventTypeSold     EventType = "sold"
	EventTypeTransfer EventType = "transfer"
	EventTypeBurned   EventType = "burned"
	// EventTypeUnknown is produced when the change could not be evaluated this pass.
	// It writes nothing and emits nothing.
	EventTypeUnknown EventType = "unknown"
	// EventTypeNew records the first sighting of a mint. It is journaled, never classified.
	EventTypeNew EventType = "new"
)

// IsValidEventType reports whether t is one of the known event types
func IsValidEventType(t EventType) bool {
	switch t {
	case EventTypeListed, EventTypeDelisted, EventTypeSold, EventTypeTransfer, EventTypeBurned, EventTypeUnknown, EventTypeNew:
		return true
	default:
		return false
	}
}

// Notifiable reports whether events of this type produce a notification
func (t EventType) Notifiable() bool {
	return t != EventTypeUnknown && t != EventTypeNew && IsValidEventType(t)
}

// Collection is a tracked NFT collection
type Collection struct {
	// Symbol is the stable key used in the database (e.g. "CelebCatz")
	Symbol string
	// Name is the human readable collection name
	Name string
	// Address is the on-chain collection (group) address
	Address string
}

// ChainAsset is an asset as reported by the indexer snapshot, normalized at the fetch boundary
type ChainAsset struct {
	MintAddress string
	Name        string
	// Owner is nil when the indexer reports no owner
	Owner      *string
	ImageURL   *string
	Attributes json.RawMessage
	Burnt      bool
}

// NFTEvent is the structured NFT event attached to an enhanced transaction
type NFTEvent struct {
	Type   string
	Source string
	// Amount is expressed in lamports
	Amount *decimal.Decimal
	Buyer  string
	Seller string
}

// TokenTransfer is a token movement inside a transaction
type TokenTransfer struct {
	Mint string
	// Amount is expressed in lamports
	Amount *decimal.Decimal
}

// Instruction is a raw program instruction of a transaction
type Instruction struct {
	ProgramID string
	Data      string
}

// Transaction is an enhanced transaction from the indexer history, newest first
type Transaction struct {
	Signature      string
	Type           string
	Source         string
	Description    string
	FeePayer       string
	Timestamp      time.Time
	NFTEvent       *NFTEvent
	TokenTransfers []TokenTransfer
	Instructions   []Instruction
}

// ClassifiedEvent is the outcome of classifying one ownership change
type ClassifiedEvent struct {
	Type          EventType
	MintAddress   string
	PreviousOwner string
	NewOwner      *string
	Marketplace   *string
	// Price is in SOL and always within the accepted range when set
	Price *decimal.Decimal
	Buyer *string
	// Seller is also the lister for listed events
	Seller *string
	// Signature of the transaction that decided the classification, empty for heuristics
	Signature string
	Timestamp time.Time
}
