package domain

import "time"

const (
	// Indexer endpoints
	DEFAULT_HELIUS_RPC_URL = "https://rpc.helius.xyz"
	DEFAULT_HELIUS_API_URL = "https://api.helius.xyz"

	// Discord endpoints
	DEFAULT_DISCORD_API_URL = "https://discord.com/api/v10"

	// Site used for thumbnails, logos and relative image paths
	DEFAULT_SITE_BASE_URL = "https://buxdao.com"

	// Escrow wallets of the supported marketplaces
	MAGIC_EDEN_ESCROW = "1BWutmTvYPwDtmw9abTkS4Ssr8no61spGAvW1X6NDix"
	TENSOR_ESCROW     = "4zdNGgAtFsW1cQgHqkiWyRsxaAgxrSRRynnuunxzjxue"

	// TENSOR_SWAP_PROGRAM_ID is the program whose listing instruction carries the list price
	TENSOR_SWAP_PROGRAM_ID = "TSWAPaqyCSx2KABk68Shruf4rp7CxcNi8hAsbdwmHbN"

	// Marketplace display names
	MARKETPLACE_MAGIC_EDEN       = "Magic Eden"
	MARKETPLACE_TENSOR           = "Tensor"
	MARKETPLACE_COLLECTION_OFFER = "Collection Offer"
	MARKETPLACE_DIRECT_SALE      = "Direct Sale"
	MARKETPLACE_UNKNOWN          = "Unknown"

	// Indexer source identifiers
	SOURCE_MAGIC_EDEN = "MAGIC_EDEN"
	SOURCE_TENSOR     = "TENSOR"

	// DAS page size upper bound
	MAX_ASSETS_PAGE_SIZE = 1000

	// DEFAULT_TX_WINDOW is how many of the newest transactions the classifier inspects
	DEFAULT_TX_WINDOW = 5

	// DEFAULT_RECONCILE_INTERVAL is the pause between two reconciliation runs
	DEFAULT_RECONCILE_INTERVAL = 15 * time.Minute
)

// MarketplaceFromSource maps an indexer source identifier to a marketplace display name
func MarketplaceFromSource(source string) string {
	switch source {
	case SOURCE_MAGIC_EDEN:
		return MARKETPLACE_MAGIC_EDEN
	case SOURCE_TENSOR:
		return MARKETPLACE_TENSOR
	case "":
		return MARKETPLACE_UNKNOWN
	default:
		return source
	}
}
