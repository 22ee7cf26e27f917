// Package notification builds, deduplicates and delivers ownership notifications.
package notification

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/shopspring/decimal"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/identity"
)

// Party is a wallet taking part in an event, with its discord name when linked
type Party struct {
	Wallet      string  `json:"wallet"`
	DiscordName *string `json:"discord_name,omitempty"`
}

// DisplayName returns the discord name, or the shortened wallet, or "Unknown"
func (p Party) DisplayName() string {
	return identity.Identity{DiscordName: p.DiscordName}.DisplayName(p.Wallet)
}

// NFTInfo is the part of a record shown in a notification
type NFTInfo struct {
	Name       string
	Symbol     string
	ImageURL   *string
	RarityRank *int
}

// Payload is the notification stored in the outbox
type Payload struct {
	EventType   domain.EventType `json:"event_type"`
	MintAddress string           `json:"mint_address"`
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	ImageURL    *string          `json:"image_url,omitempty"`
	RarityRank  *int             `json:"rarity_rank,omitempty"`
	// From is the previous holder, or the lister of a listing
	From Party `json:"from"`
	// To is the new holder, or the buyer of a sale
	To          *Party           `json:"to,omitempty"`
	Marketplace *string          `json:"marketplace,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Signature   string           `json:"signature,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// NewPayload builds the payload of a classified event
func NewPayload(ev domain.ClassifiedEvent, nft NFTInfo, from Party, to *Party) Payload {
	return Payload{
		EventType:   ev.Type,
		MintAddress: ev.MintAddress,
		Symbol:      nft.Symbol,
		Name:        nft.Name,
		ImageURL:    nft.ImageURL,
		RarityRank:  nft.RarityRank,
		From:        from,
		To:          to,
		Marketplace: ev.Marketplace,
		Price:       ev.Price,
		Signature:   ev.Signature,
		OccurredAt:  ev.Timestamp.UTC(),
	}
}

// Marshal encodes the payload for the outbox
func (p Payload) Marshal() (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return data, nil
}

// ParsePayload decodes an outbox payload
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}
	if !p.EventType.Notifiable() {
		return Payload{}, fmt.Errorf("event type %q is not notifiable", p.EventType)
	}
	return p, nil
}

// dedupView is the identity of an event. Display fields and the time of
// heuristic events are left out so that re-applying a change yields the same key.
type dedupView struct {
	EventType   domain.EventType `json:"event_type"`
	MintAddress string           `json:"mint_address"`
	From        string           `json:"from"`
	To          string           `json:"to,omitempty"`
	Marketplace *string          `json:"marketplace,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Signature   string           `json:"signature,omitempty"`
	OccurredAt  *time.Time       `json:"occurred_at,omitempty"`
	Basis       string           `json:"basis,omitempty"`
}

// DedupKey returns the hex sha256 of the canonical JSON identity of the payload
func DedupKey(p Payload) (string, error) {
	return DedupKeyWithBasis(p, "")
}

// DedupKeyWithBasis is DedupKey for events that carry no signature. basis identifies
// the stored state the event was derived from, so the same change observed again
// later is a new event while a retried application of it is not.
func DedupKeyWithBasis(p Payload, basis string) (string, error) {
	view := dedupView{
		EventType:   p.EventType,
		MintAddress: p.MintAddress,
		From:        p.From.Wallet,
		Marketplace: p.Marketplace,
		Price:       p.Price,
		Signature:   p.Signature,
	}
	if p.To != nil {
		view.To = p.To.Wallet
	}
	if p.Signature != "" {
		occurredAt := p.OccurredAt.UTC()
		view.OccurredAt = &occurredAt
	} else {
		view.Basis = basis
	}

	data, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dedup view: %w", err)
	}

	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize dedup view: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
