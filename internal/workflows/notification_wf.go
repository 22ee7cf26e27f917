package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// NotificationWorkflowID returns the workflow id delivering an outbox entry
func NotificationWorkflowID(outboxID uint64) string {
	return fmt.Sprintf("nft-notification-%d", outboxID)
}

// DeliverNotification delivers one outbox entry
// Uses Temporal's retry policy for redelivery with exponential backoff
func (w *workerCore) DeliverNotification(ctx workflow.Context, outboxID uint64) error {
	logger.InfoWf(ctx, "Starting notification delivery",
		zap.Uint64("outboxID", outboxID))

	// Temporal retries the delivery activity: 5s, 10s, 20s, ... up to the maximum interval
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    w.config.RetryInitialInterval,
			BackoffCoefficient: 2.0,
			MaximumInterval:    w.config.RetryMaximumInterval,
			MaximumAttempts:    int32(w.config.MaxDeliveryAttempts), //nolint:gosec,G115
			NonRetryableErrorTypes: []string{
				ERR_OUTBOX_ENTRY_NOT_FOUND,
				ERR_DELIVERY_EXHAUSTED,
			},
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)

	var status schema.OutboxStatus
	err := workflow.ExecuteActivity(activityCtx, w.executor.DeliverNotification, outboxID).Get(activityCtx, &status)
	if err != nil {
		logger.ErrorWf(ctx, fmt.Errorf("notification delivery failed: %w", err),
			zap.Uint64("outboxID", outboxID))
		return err
	}

	logger.InfoWf(ctx, "Notification delivery completed",
		zap.Uint64("outboxID", outboxID),
		zap.String("status", string(status)))

	return nil
}
