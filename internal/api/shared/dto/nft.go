package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// NFTResponse represents a tracked NFT record
type NFTResponse struct {
	MintAddress       string           `json:"mint_address"`
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	OwnerWallet       string           `json:"owner_wallet"`
	OwnerDiscordID    *string          `json:"owner_discord_id,omitempty"`
	OwnerName         *string          `json:"owner_name,omitempty"`
	IsListed          bool             `json:"is_listed"`
	ListPrice         *decimal.Decimal `json:"list_price,omitempty"`
	Marketplace       *string          `json:"marketplace,omitempty"`
	OriginalLister    *string          `json:"original_lister,omitempty"`
	ListerDiscordName *string          `json:"lister_discord_name,omitempty"`
	LastSalePrice     *decimal.Decimal `json:"last_sale_price,omitempty"`
	RarityRank        *int             `json:"rarity_rank,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
	Attributes        json.RawMessage  `json:"attributes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Expansion
	Events []OwnershipEventResponse `json:"events,omitempty"`
}

// OwnershipEventResponse represents a journaled ownership change
type OwnershipEventResponse struct {
	EventID       string           `json:"event_id"`
	RunID         string           `json:"run_id"`
	EventType     string           `json:"event_type"`
	PreviousOwner *string          `json:"previous_owner,omitempty"`
	NewOwner      *string          `json:"new_owner,omitempty"`
	Marketplace   *string          `json:"marketplace,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Signature     *string          `json:"signature,omitempty"`
	Meta          json.RawMessage  `json:"meta,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// MapNFTToDTO maps a schema.NFTMetadata to NFTResponse
func MapNFTToDTO(nft *schema.NFTMetadata) *NFTResponse {
	dto := &NFTResponse{
		MintAddress:       nft.MintAddress,
		Name:              nft.Name,
		Symbol:            nft.Symbol,
		OwnerWallet:       nft.OwnerWallet,
		OwnerDiscordID:    nft.OwnerDiscordID,
		OwnerName:         nft.OwnerName,
		IsListed:          nft.IsListed,
		ListPrice:         nft.ListPrice,
		Marketplace:       nft.Marketplace,
		OriginalLister:    nft.OriginalLister,
		ListerDiscordName: nft.ListerDiscordName,
		LastSalePrice:     nft.LastSalePrice,
		RarityRank:        nft.RarityRank,
		ImageURL:          nft.ImageURL,
		CreatedAt:         nft.CreatedAt,
		UpdatedAt:         nft.UpdatedAt,
	}

	if nft.Attributes != nil {
		dto.Attributes = json.RawMessage(nft.Attributes)
	}

	return dto
}

// MapOwnershipEventToDTO maps a schema.OwnershipEvent to OwnershipEventResponse
func MapOwnershipEventToDTO(event *schema.OwnershipEvent) OwnershipEventResponse {
	dto := OwnershipEventResponse{
		EventID:       event.EventID,
		RunID:         event.RunID,
		EventType:     event.EventType,
		PreviousOwner: event.PreviousOwner,
		NewOwner:      event.NewOwner,
		Marketplace:   event.Marketplace,
		Price:         event.Price,
		Signature:     event.Signature,
		OccurredAt:    event.OccurredAt,
	}

	if event.Meta != nil {
		dto.Meta = json.RawMessage(event.Meta)
	}

	return dto
}
