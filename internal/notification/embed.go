package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/providers/discord"
)

const (
	FOOTER_TEXT  = "BUXDAO • Putting Community First"
	DEFAULT_LOGO = "/logos/default.PNG"
)

// collectionLogos maps collection symbols to their logo path on the site
var collectionLogos = map[string]string{
	"FCKEDCATZ": "/logos/cat.PNG",
	"CelebCatz": "/logos/celeb.PNG",
	"MM":        "/logos/monster.PNG",
	"MM3D":      "/logos/monster.PNG",
	"AIBB":      "/logos/bot.PNG",
}

type embedStyle struct {
	title string
	color int
}

var embedStyles = map[domain.EventType]embedStyle{
	domain.EventTypeListed:   {title: "📝 LISTED", color: 0x4CAF50},
	domain.EventTypeSold:     {title: "💰 SOLD", color: 0xF44336},
	domain.EventTypeDelisted: {title: "❌ DELISTED", color: 0xFF9800},
	domain.EventTypeTransfer: {title: "♻️ TRANSFER", color: 0x2196F3},
	domain.EventTypeBurned:   {title: "🔥 BURNED", color: 0x9E9E9E},
}

// Formatter renders payloads as discord embeds
type Formatter struct {
	siteBaseURL string
}

// NewFormatter creates a formatter resolving relative images against siteBaseURL
func NewFormatter(siteBaseURL string) *Formatter {
	if siteBaseURL == "" {
		siteBaseURL = domain.DEFAULT_SITE_BASE_URL
	}
	return &Formatter{siteBaseURL: strings.TrimRight(siteBaseURL, "/")}
}

// CollectionLogo returns the absolute logo URL of a collection
func (f *Formatter) CollectionLogo(symbol string) string {
	logo, ok := collectionLogos[symbol]
	if !ok {
		logo = DEFAULT_LOGO
	}
	return f.siteBaseURL + logo
}

// ImageURL returns the absolute URL of a stored image, empty when there is none
func (f *Formatter) ImageURL(imageURL *string) string {
	if imageURL == nil || *imageURL == "" {
		return ""
	}
	u := *imageURL
	switch {
	case strings.HasPrefix(u, "/"):
		return f.siteBaseURL + u
	case strings.HasPrefix(u, "http"):
		return u
	default:
		return f.siteBaseURL + "/" + u
	}
}

// MarketplaceLinks returns the item links of a mint
func MarketplaceLinks(mint string) string {
	return fmt.Sprintf("[View on Magic Eden](https://magiceden.io/item-details/%s) • [View on Tensor](https://www.tensor.trade/item/%s)", mint, mint)
}

func field(name, value string) discord.EmbedField {
	return discord.EmbedField{Name: name, Value: value, Inline: false}
}

func priceValue(p Payload) string {
	if p.Price == nil {
		return domain.MARKETPLACE_UNKNOWN
	}
	return domain.FormatSOL(*p.Price)
}

func marketplaceValue(p Payload) string {
	if p.Marketplace == nil || *p.Marketplace == "" {
		return domain.MARKETPLACE_UNKNOWN
	}
	return *p.Marketplace
}

func toParty(p Payload) Party {
	if p.To == nil {
		return Party{}
	}
	return *p.To
}

// Embed renders the payload
func (f *Formatter) Embed(p Payload) (discord.Embed, error) {
	style, ok := embedStyles[p.EventType]
	if !ok {
		return discord.Embed{}, fmt.Errorf("unknown event type for embed: %s", p.EventType)
	}

	name := p.Name
	if name == "" {
		name = "Unknown NFT"
	}

	var fields []discord.EmbedField
	switch p.EventType {
	case domain.EventTypeListed:
		fields = append(fields,
			field("💰 Price", priceValue(p)),
			field("👤 Owner", p.From.DisplayName()),
			field("🏪 Marketplace", marketplaceValue(p)),
		)
	case domain.EventTypeSold:
		fields = append(fields,
			field("💰 Price", priceValue(p)),
			field("👤 New Owner", toParty(p).DisplayName()),
			field("🏪 Marketplace", marketplaceValue(p)),
		)
	case domain.EventTypeDelisted:
		fields = append(fields, field("👤 Owner", toParty(p).DisplayName()))
	case domain.EventTypeTransfer:
		fields = append(fields,
			field("👤 From", p.From.DisplayName()),
			field("👤 To", toParty(p).DisplayName()),
		)
	}
	if p.RarityRank != nil && *p.RarityRank > 0 {
		fields = append(fields, field("✨ Rank", fmt.Sprintf("#%d", *p.RarityRank)))
	}

	timestamp := p.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	embed := discord.Embed{
		Title:       fmt.Sprintf("%s - %s", style.title, name),
		Description: MarketplaceLinks(p.MintAddress),
		Color:       style.color,
		Fields:      fields,
		Thumbnail:   &discord.EmbedImage{URL: f.CollectionLogo(p.Symbol)},
		Footer:      &discord.EmbedFooter{Text: FOOTER_TEXT},
		Timestamp:   timestamp.UTC().Format(time.RFC3339),
	}
	if image := f.ImageURL(p.ImageURL); image != "" {
		embed.Image = &discord.EmbedImage{URL: image}
	}

	return embed, nil
}

// Message renders the payload as a channel message
func (f *Formatter) Message(p Payload) (discord.Message, error) {
	embed, err := f.Embed(p)
	if err != nil {
		return discord.Message{}, err
	}
	return discord.NewMessage(embed), nil
}
