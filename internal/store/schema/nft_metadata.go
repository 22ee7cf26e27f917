package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// NFTMetadata represents the nft_metadata table - one row per tracked mint
type NFTMetadata struct {
	// MintAddress is the on-chain mint address (primary key)
	MintAddress string `gorm:"column:mint_address;primaryKey;type:varchar(64)"`
	// Name is the asset name reported by the indexer
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the collection symbol (e.g. "CelebCatz")
	Symbol string `gorm:"column:symbol;not null;type:varchar(32)"`
	// OwnerWallet is the current holder; an escrow wallet while listed
	OwnerWallet string `gorm:"column:owner_wallet;not null;type:varchar(64)"`
	// OriginalLister is the wallet that listed the asset, set only while listed
	OriginalLister *string `gorm:"column:original_lister;type:varchar(64)"`
	// IsListed indicates whether the asset is currently listed on a marketplace
	IsListed bool `gorm:"column:is_listed;not null;default:false"`
	// Marketplace is the marketplace display name, set only while listed
	Marketplace *string `gorm:"column:marketplace;type:varchar(64)"`
	// ListPrice is the listing price in SOL, set only while listed
	ListPrice *decimal.Decimal `gorm:"column:list_price;type:numeric(20,9)"`
	// LastSalePrice is the price of the last known sale in SOL
	LastSalePrice *decimal.Decimal `gorm:"column:last_sale_price;type:numeric(20,9)"`
	// RarityRank is the collection rarity rank, maintained outside of reconciliation
	RarityRank *int `gorm:"column:rarity_rank"`
	// ImageURL is the asset image, absolute or relative to the site
	ImageURL *string `gorm:"column:image_url;type:text"`
	// Attributes is the raw attribute list of the asset
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb"`
	// OwnerDiscordID is the discord account linked to the owner wallet
	OwnerDiscordID *string `gorm:"column:owner_discord_id;type:varchar(32)"`
	// OwnerName is the discord name linked to the owner wallet
	OwnerName *string `gorm:"column:owner_name;type:text"`
	// ListerDiscordName is the discord name linked to the lister, set only while listed
	ListerDiscordName *string `gorm:"column:lister_discord_name;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the NFTMetadata model
func (NFTMetadata) TableName() string {
	return "nft_metadata"
}
