package notification_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
	"github.com/buxdao/nft-ownership-sync/internal/notification"
	"github.com/buxdao/nft-ownership-sync/internal/providers/discord"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

func outboxEntry(t *testing.T, attempts int) schema.NotificationOutbox {
	payload, err := soldPayload().Marshal()
	require.NoError(t, err)
	return schema.NotificationOutbox{
		ID:          7,
		EventType:   "sold",
		MintAddress: mint,
		Payload:     []byte(payload),
		Status:      schema.OutboxStatusProcessing,
		Attempts:    attempts,
	}
}

func TestNextStatus(t *testing.T) {
	failure := errors.New("boom")

	assert.Equal(t, schema.OutboxStatusSent, notification.NextStatus(nil, 1, 3, schema.OutboxStatusPending))
	assert.Equal(t, schema.OutboxStatusPending, notification.NextStatus(failure, 1, 3, schema.OutboxStatusPending))
	assert.Equal(t, schema.OutboxStatusProcessing, notification.NextStatus(failure, 2, 3, schema.OutboxStatusProcessing))
	assert.Equal(t, schema.OutboxStatusFailed, notification.NextStatus(failure, 3, 3, schema.OutboxStatusPending))
}

func TestDiscordNotifier_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockDiscordClient(ctrl)
	notifier := notification.NewDiscordNotifier(client, "123", notification.NewFormatter(""))

	client.EXPECT().
		Send(gomock.Any(), "123", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg discord.Message) bool {
			require.Len(t, msg.Embeds, 1)
			assert.Equal(t, "💰 SOLD - Celeb #1", msg.Embeds[0].Title)
			return true
		})

	assert.NoError(t, notifier.Notify(context.Background(), outboxEntry(t, 0)))

	client.EXPECT().Send(gomock.Any(), "123", gomock.Any()).Return(false)
	assert.ErrorIs(t, notifier.Notify(context.Background(), outboxEntry(t, 0)), discord.ErrNotDelivered)

	bad := outboxEntry(t, 0)
	bad.Payload = []byte(`{"event_type":"unknown"}`)
	assert.Error(t, notifier.Notify(context.Background(), bad))
}

func TestDeliverer_Deliver(t *testing.T) {
	rejected := &adapter.StatusError{StatusCode: http.StatusForbidden, Body: "Missing Access"}

	tests := []struct {
		name        string
		attempts    int
		notifyErr   error
		retryStatus schema.OutboxStatus
		expected    schema.OutboxStatus
	}{
		{name: "sent", attempts: 0, expected: schema.OutboxStatusSent, retryStatus: schema.OutboxStatusPending},
		{name: "retry later", attempts: 0, notifyErr: rejected, retryStatus: schema.OutboxStatusPending, expected: schema.OutboxStatusPending},
		{name: "retry in workflow", attempts: 1, notifyErr: rejected, retryStatus: schema.OutboxStatusProcessing, expected: schema.OutboxStatusProcessing},
		{name: "budget spent", attempts: 2, notifyErr: rejected, retryStatus: schema.OutboxStatusPending, expected: schema.OutboxStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			st := mocks.NewMockStore(ctrl)
			notifier := mocks.NewMockNotifier(ctrl)
			deliverer := notification.NewDeliverer(st, notifier, 3)
			entry := outboxEntry(t, tt.attempts)

			notifier.EXPECT().Notify(gomock.Any(), entry).Return(tt.notifyErr)
			st.EXPECT().
				UpdateOutboxStatus(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, input store.UpdateOutboxStatusInput) error {
					assert.Equal(t, uint64(7), input.ID)
					assert.Equal(t, tt.expected, input.Status)
					assert.Equal(t, tt.attempts+1, input.Attempts)
					if tt.notifyErr != nil {
						assert.Contains(t, input.ErrorMessage, "403")
					} else {
						assert.Empty(t, input.ErrorMessage)
					}
					return nil
				})

			status, err := deliverer.Deliver(context.Background(), entry, tt.retryStatus)
			assert.Equal(t, tt.expected, status)
			assert.Equal(t, tt.notifyErr, err)
		})
	}
}

func TestDeliverer_RecordFailureKeepsDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	deliverer := notification.NewDeliverer(st, notifier, 3)

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateOutboxStatus(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	status, err := deliverer.Deliver(context.Background(), outboxEntry(t, 0), schema.OutboxStatusPending)
	assert.NoError(t, err)
	assert.Equal(t, schema.OutboxStatusSent, status)
}
