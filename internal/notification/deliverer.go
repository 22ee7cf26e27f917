package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/providers/discord"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// Notifier defines the interface for sending one outbox entry to enable mocking
//
//go:generate mockgen -source=deliverer.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier,Deliverer=MockDeliverer
type Notifier interface {
	// Notify sends the notification of entry and returns the delivery error, if any
	Notify(ctx context.Context, entry schema.NotificationOutbox) error
}

// discordNotifier posts outbox entries to the activity channel
type discordNotifier struct {
	client    discord.Client
	channelID string
	formatter *Formatter
}

// NewDiscordNotifier creates a notifier posting to channelID
func NewDiscordNotifier(client discord.Client, channelID string, formatter *Formatter) Notifier {
	return &discordNotifier{
		client:    client,
		channelID: channelID,
		formatter: formatter,
	}
}

// Notify renders the entry payload and sends it. Send logs the failure cause itself.
func (n *discordNotifier) Notify(ctx context.Context, entry schema.NotificationOutbox) error {
	payload, err := ParsePayload(entry.Payload)
	if err != nil {
		return err
	}

	msg, err := n.formatter.Message(payload)
	if err != nil {
		return err
	}

	if !n.client.Send(ctx, n.channelID, msg) {
		return discord.ErrNotDelivered
	}

	return nil
}

// Deliverer defines the interface for delivering outbox entries to enable mocking
type Deliverer interface {
	// Deliver sends entry and records the attempt. A failed attempt leaves the entry in
	// retryStatus until the attempt budget is spent, after which it is failed.
	Deliver(ctx context.Context, entry schema.NotificationOutbox, retryStatus schema.OutboxStatus) (schema.OutboxStatus, error)
}

type deliverer struct {
	store       store.Store
	notifier    Notifier
	maxAttempts int
}

// NewDeliverer creates a deliverer allowing maxAttempts attempts per entry
func NewDeliverer(st store.Store, notifier Notifier, maxAttempts int) Deliverer {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &deliverer{
		store:       st,
		notifier:    notifier,
		maxAttempts: maxAttempts,
	}
}

// NextStatus returns the status of an entry after attempt number attempts
func NextStatus(deliveryErr error, attempts, maxAttempts int, retryStatus schema.OutboxStatus) schema.OutboxStatus {
	switch {
	case deliveryErr == nil:
		return schema.OutboxStatusSent
	case attempts >= maxAttempts:
		return schema.OutboxStatusFailed
	default:
		return retryStatus
	}
}

// Deliver sends entry and records the attempt. The returned error is the delivery error.
func (d *deliverer) Deliver(ctx context.Context, entry schema.NotificationOutbox, retryStatus schema.OutboxStatus) (schema.OutboxStatus, error) {
	deliveryErr := d.notifier.Notify(ctx, entry)

	attempts := entry.Attempts + 1
	status := NextStatus(deliveryErr, attempts, d.maxAttempts, retryStatus)

	input := store.UpdateOutboxStatusInput{
		ID:       entry.ID,
		Status:   status,
		Attempts: attempts,
	}
	if deliveryErr != nil {
		input.ErrorMessage = deliveryErr.Error()
		logger.WarnCtx(ctx, "Notification delivery failed",
			zap.Uint64("outbox_id", entry.ID),
			zap.String("mint", entry.MintAddress),
			zap.Int("attempts", attempts),
			zap.String("status", string(status)),
			zap.Error(deliveryErr),
		)
	}

	// A delivered message is never resent because its status could not be recorded
	if err := d.store.UpdateOutboxStatus(ctx, input); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record delivery attempt: %w", err), zap.Uint64("outbox_id", entry.ID))
	}

	return status, deliveryErr
}
