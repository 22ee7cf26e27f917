package dto

import (
	"encoding/json"
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// OutboxEntryResponse represents a notification outbox entry
type OutboxEntryResponse struct {
	ID            uint64              `json:"id"`
	EventID       string              `json:"event_id"`
	EventType     string              `json:"event_type"`
	MintAddress   string              `json:"mint_address"`
	Status        schema.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
	SentAt        *time.Time          `json:"sent_at,omitempty"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	WorkflowID    *string             `json:"workflow_id,omitempty"`
	Payload       json.RawMessage     `json:"payload"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OutboxListResponse represents a paginated list of outbox entries
type OutboxListResponse struct {
	Items  []OutboxEntryResponse `json:"items"`
	Offset *uint64               `json:"offset,omitempty"` // Offset for the next page, absent on the last page
}

// RequeueResponse reports how many entries went back to pending
type RequeueResponse struct {
	Requeued int64 `json:"requeued"`
}

// MapOutboxEntryToDTO maps a schema.NotificationOutbox to OutboxEntryResponse
func MapOutboxEntryToDTO(entry *schema.NotificationOutbox) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		MintAddress:   entry.MintAddress,
		Status:        entry.Status,
		Attempts:      entry.Attempts,
		LastAttemptAt: entry.LastAttemptAt,
		SentAt:        entry.SentAt,
		ErrorMessage:  entry.ErrorMessage,
		WorkflowID:    entry.WorkflowID,
		Payload:       json.RawMessage(entry.Payload),
		CreatedAt:     entry.CreatedAt,
	}
}
