package discord_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
	"github.com/buxdao/nft-ownership-sync/internal/providers/discord"
)

const testURL = "https://discord.example.com/api/v10/channels/123/messages"

func TestPost_PrefixesBotToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "bare token", token: "secret", expected: "Bot secret"},
		{name: "already prefixed", token: "Bot secret", expected: "Bot secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			client := discord.NewClient(httpClient, "https://discord.example.com/api/v10/", tt.token)

			httpClient.EXPECT().
				PostJSON(gomock.Any(), testURL, map[string]string{"Authorization": tt.expected}, gomock.Any(), nil).
				Return(nil)

			err := client.Post(context.Background(), "123", discord.NewMessage(discord.Embed{Title: "hi"}))
			assert.NoError(t, err)
		})
	}
}

func TestNewMessage_Body(t *testing.T) {
	msg := discord.NewMessage(discord.Embed{Title: "💰 SOLD - Celeb #1", Color: 0xF44336})

	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"content": "",
		"embeds": [{"title": "💰 SOLD - Celeb #1", "color": 16007990}],
		"tts": false,
		"allowed_mentions": {"parse": []}
	}`, string(payload))
}

func TestSend(t *testing.T) {
	tests := []struct {
		name     string
		postErr  error
		expected bool
	}{
		{name: "success", postErr: nil, expected: true},
		{name: "rejected", postErr: &adapter.StatusError{StatusCode: 403, Body: "Missing Access"}, expected: false},
		{name: "network error", postErr: errors.New("connection reset"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			client := discord.NewClient(httpClient, "https://discord.example.com/api/v10", "secret")

			httpClient.EXPECT().
				PostJSON(gomock.Any(), testURL, gomock.Any(), gomock.Any(), nil).
				Return(tt.postErr)

			assert.Equal(t, tt.expected, client.Send(context.Background(), "123", discord.NewMessage()))
		})
	}
}

func TestSend_RecoversFromPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := discord.NewClient(httpClient, "https://discord.example.com/api/v10", "secret")

	httpClient.EXPECT().
		PostJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(context.Context, string, map[string]string, interface{}, interface{}) error {
			panic("boom")
		})

	assert.False(t, client.Send(context.Background(), "123", discord.NewMessage()))
}

func TestPost_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)

	err := discord.NewClient(httpClient, "https://discord.example.com", "").Post(context.Background(), "123", discord.NewMessage())
	assert.ErrorIs(t, err, discord.ErrNoBotToken)

	err = discord.NewClient(httpClient, "https://discord.example.com", "secret").Post(context.Background(), "", discord.NewMessage())
	assert.Error(t, err)
}
