package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OwnershipEvent represents the ownership_events table - journal of applied ownership changes
type OwnershipEvent struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is a ULID shared with the outbox entry of the same change
	EventID string `gorm:"column:event_id;not null;type:varchar(26)"`
	// DedupKey is the hash of the canonical event payload
	DedupKey string `gorm:"column:dedup_key;not null;type:varchar(64)"`
	// RunID is the reconciliation run that applied the change
	RunID         string  `gorm:"column:run_id;not null;type:varchar(36)"`
	MintAddress   string  `gorm:"column:mint_address;not null;type:varchar(64)"`
	Symbol        string  `gorm:"column:symbol;not null;type:varchar(32)"`
	EventType     string  `gorm:"column:event_type;not null;type:varchar(16)"`
	PreviousOwner *string `gorm:"column:previous_owner;type:varchar(64)"`
	NewOwner      *string `gorm:"column:new_owner;type:varchar(64)"`
	Marketplace   *string `gorm:"column:marketplace;type:varchar(64)"`
	// Price is in SOL
	Price *decimal.Decimal `gorm:"column:price;type:numeric(20,9)"`
	// Signature is the transaction that decided the classification, if any
	Signature *string `gorm:"column:signature;type:varchar(128)"`
	// Meta carries the buyer and seller of the event
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
	// OccurredAt is the timestamp of the deciding transaction, or of the run
	OccurredAt time.Time `gorm:"column:occurred_at;not null;type:timestamptz"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OwnershipEvent model
func (OwnershipEvent) TableName() string {
	return "ownership_events"
}
