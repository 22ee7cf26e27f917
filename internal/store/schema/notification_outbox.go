package schema

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxStatus is the delivery status of an outbox entry
type OutboxStatus string

const (
	// OutboxStatusPending is waiting for the dispatcher
	OutboxStatusPending OutboxStatus = "pending"
	// OutboxStatusProcessing has been claimed by a dispatcher
	OutboxStatusProcessing OutboxStatus = "processing"
	// OutboxStatusSent was delivered
	OutboxStatusSent OutboxStatus = "sent"
	// OutboxStatusFailed exhausted its delivery attempts
	OutboxStatusFailed OutboxStatus = "failed"
)

// IsValidOutboxStatus reports whether s is a known outbox status
func IsValidOutboxStatus(s OutboxStatus) bool {
	switch s {
	case OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed:
		return true
	default:
		return false
	}
}

// NotificationOutbox represents the notification_outbox table - notifications written in
// the same transaction as the state change they announce
type NotificationOutbox struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is a unique identifier for this event (ULID for time-sortable uniqueness)
	EventID string `gorm:"column:event_id;not null;type:varchar(26)"`
	// DedupKey is the sha256 of the canonical JSON payload, unique
	DedupKey string `gorm:"column:dedup_key;not null;type:varchar(64)"`
	// EventType is the classified event type (listed, sold, ...)
	EventType   string `gorm:"column:event_type;not null;type:varchar(16)"`
	MintAddress string `gorm:"column:mint_address;not null;type:varchar(64)"`
	// Payload is the notification payload as JSON
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// Status indicates the current status: pending, processing, sent, failed
	Status OutboxStatus `gorm:"column:status;not null;default:pending"`
	// Attempts is the number of delivery attempts made
	Attempts int `gorm:"column:attempts;not null;default:0"`
	// LastAttemptAt is the timestamp of the most recent delivery attempt
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at;type:timestamptz"`
	// SentAt is the timestamp of the successful delivery
	SentAt *time.Time `gorm:"column:sent_at;type:timestamptz"`
	// ErrorMessage contains error details of the last failed attempt
	ErrorMessage string `gorm:"column:error_message;type:text"`
	// WorkflowID is the Temporal workflow ID handling this delivery, if any
	WorkflowID *string `gorm:"column:workflow_id;type:varchar(255)"`
	// WorkflowRunID is the Temporal run ID for this workflow execution
	WorkflowRunID *string   `gorm:"column:workflow_run_id;type:varchar(255)"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the NotificationOutbox model
func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}
