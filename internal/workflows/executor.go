package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/metrics"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

const (
	// ERR_OUTBOX_ENTRY_NOT_FOUND is the application error type of a delivery for a deleted entry
	ERR_OUTBOX_ENTRY_NOT_FOUND = "OutboxEntryNotFound"
	// ERR_DELIVERY_EXHAUSTED is the application error type of a delivery that spent its attempts
	ERR_DELIVERY_EXHAUSTED = "DeliveryExhausted"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_core.go -package=mocks -mock_names=Executor=MockCoreExecutor
type Executor interface {
	// DeliverNotification delivers one outbox entry and returns its resulting status
	DeliverNotification(ctx context.Context, outboxID uint64) (schema.OutboxStatus, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	store            store.Store
	deliverer        notification.Deliverer
	temporalActivity adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(
	store store.Store,
	deliverer notification.Deliverer,
	temporalActivity adapter.Activity,
) Executor {
	return &executor{
		store:            store,
		deliverer:        deliverer,
		temporalActivity: temporalActivity,
	}
}

// DeliverNotification loads the entry and posts it. Entries already sent or failed are left alone.
// A failed attempt with budget left returns the delivery error so Temporal retries the activity.
func (e *executor) DeliverNotification(ctx context.Context, outboxID uint64) (schema.OutboxStatus, error) {
	entry, err := e.store.GetOutboxEntryByID(ctx, outboxID)
	if err != nil {
		if errors.Is(err, domain.ErrOutboxEntryNotFound) {
			return "", temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("outbox entry %d not found", outboxID), ERR_OUTBOX_ENTRY_NOT_FOUND, err)
		}
		return "", fmt.Errorf("failed to load outbox entry %d: %w", outboxID, err)
	}

	switch entry.Status {
	case schema.OutboxStatusSent, schema.OutboxStatusFailed:
		logger.InfoCtx(ctx, "Outbox entry already settled, skipping delivery",
			zap.Uint64("outbox_id", outboxID),
			zap.String("status", string(entry.Status)))
		return entry.Status, nil
	}

	logger.InfoCtx(ctx, "Delivering notification",
		zap.Uint64("outbox_id", outboxID),
		zap.String("mint", entry.MintAddress),
		zap.String("event_type", entry.EventType),
		zap.Int("attempts", entry.Attempts),
		zap.Int("activity_attempt", e.temporalActivity.Attempt(ctx)))

	status, err := e.deliverer.Deliver(ctx, *entry, schema.OutboxStatusProcessing)
	metrics.OutboxDeliveries.WithLabelValues(string(status)).Inc()
	if err != nil {
		if status == schema.OutboxStatusFailed {
			return status, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("outbox entry %d failed after %d attempts", outboxID, entry.Attempts+1), ERR_DELIVERY_EXHAUSTED, err)
		}
		return status, err
	}

	return status, nil
}
