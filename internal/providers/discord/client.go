package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
)

const PROVIDER_NAME = "discord"

var (
	ErrNoBotToken = errors.New("no bot token provided")
	// ErrNotDelivered is returned by callers of Send when the message was not accepted
	ErrNotDelivered = errors.New("discord message not delivered")
)

// Message is the body of a channel message
type Message struct {
	Content         string          `json:"content"`
	Embeds          []Embed         `json:"embeds"`
	TTS             bool            `json:"tts"`
	AllowedMentions AllowedMentions `json:"allowed_mentions"`
}

// AllowedMentions restricts which mentions in a message ping users
type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// Embed is a rich embed of a message
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is a name/value pair of an embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedImage is an image reference of an embed
type EmbedImage struct {
	URL string `json:"url"`
}

// EmbedFooter is the footer of an embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// NewMessage wraps embeds in a message that mentions nobody
func NewMessage(embeds ...Embed) Message {
	return Message{
		Content:         "",
		Embeds:          embeds,
		TTS:             false,
		AllowedMentions: AllowedMentions{Parse: []string{}},
	}
}

// Client defines the interface for Discord operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/discord_client.go -package=mocks -mock_names=Client=MockDiscordClient
type Client interface {
	// Post sends msg to the channel and returns the delivery error, if any
	Post(ctx context.Context, channelID string, msg Message) error

	// Send sends msg to the channel and reports success. It never returns an error.
	Send(ctx context.Context, channelID string, msg Message) bool
}

// DiscordClient implements Client using the Discord REST API with a bot token
type DiscordClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	botToken   string
}

// NewClient creates a new Discord client
func NewClient(httpClient adapter.HTTPClient, apiURL string, botToken string) Client {
	return &DiscordClient{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		botToken:   botToken,
	}
}

// authorization returns the bot authorization header value
func (c *DiscordClient) authorization() string {
	if strings.HasPrefix(c.botToken, "Bot ") {
		return c.botToken
	}
	return "Bot " + c.botToken
}

// Post sends msg to the channel
func (c *DiscordClient) Post(ctx context.Context, channelID string, msg Message) error {
	if c.botToken == "" {
		return ErrNoBotToken
	}
	if channelID == "" {
		return errors.New("channel id is required")
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.apiURL, channelID)
	headers := map[string]string{
		"Authorization": c.authorization(),
	}

	if err := c.httpClient.PostJSON(ctx, url, headers, msg, nil); err != nil {
		return fmt.Errorf("failed to post discord message: %w", err)
	}

	return nil
}

// Send sends msg to the channel and reports success
func (c *DiscordClient) Send(ctx context.Context, channelID string, msg Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("panic while sending discord message: %v", r), zap.String("channel_id", channelID))
			ok = false
		}
	}()

	if err := c.Post(ctx, channelID, msg); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("channel_id", channelID),
			zap.Int("status", adapter.StatusCodeOf(err)),
		)
		return false
	}

	return true
}
