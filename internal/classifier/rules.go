package classifier

import (
	"encoding/base64"
	"encoding/binary"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// Structured NFT event types reported by the indexer
const (
	nftEventSale          = "NFT_SALE"
	nftEventBid           = "NFT_BID"
	nftEventListing       = "NFT_LISTING"
	nftEventCancelListing = "NFT_CANCEL_LISTING"
)

var descriptionPriceRe = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*sol`)

func strPtr(s string) *string {
	return &s
}

// firstNonEmpty returns the first non empty value, or nil
func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return strPtr(v)
		}
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// burnedRule matches when the chain reports no owner
func burnedRule(in Input) (domain.ClassifiedEvent, bool) {
	if in.NewOwner != nil && *in.NewOwner != "" {
		return domain.ClassifiedEvent{}, false
	}
	ev := in.event(domain.EventTypeBurned)
	ev.NewOwner = nil
	return ev, true
}

// nftEventRule matches the first transaction in the window carrying a structured NFT event
func nftEventRule(in Input) (domain.ClassifiedEvent, bool) {
	for _, tx := range in.window() {
		if tx.NFTEvent == nil {
			continue
		}
		nft := tx.NFTEvent
		newOwner := derefOr(in.NewOwner, "")

		var ev domain.ClassifiedEvent
		switch nft.Type {
		case nftEventSale, nftEventBid:
			ev = in.event(domain.EventTypeSold)
			ev.Marketplace = strPtr(domain.MarketplaceFromSource(nft.Source))
			ev.Buyer = firstNonEmpty(nft.Buyer, newOwner)
			ev.Seller = firstNonEmpty(nft.Seller, in.PreviousOwner)
			if nft.Amount != nil {
				price := domain.LamportsToSOL(*nft.Amount)
				ev.Price = &price
			}
		case nftEventListing:
			ev = in.event(domain.EventTypeListed)
			ev.Marketplace = strPtr(listingMarketplace(in, nft.Source))
			ev.Seller = firstNonEmpty(nft.Seller, in.PreviousOwner)
			if nft.Amount != nil {
				price := domain.LamportsToSOL(*nft.Amount)
				ev.Price = &price
			}
		case nftEventCancelListing:
			ev = in.event(domain.EventTypeDelisted)
			ev.Marketplace = strPtr(domain.MarketplaceFromSource(nft.Source))
			ev.Seller = firstNonEmpty(nft.Seller, in.PreviousOwner)
		default:
			continue
		}

		return finalize(in, tx, ev), true
	}
	return domain.ClassifiedEvent{}, false
}

// descriptionRule matches the first transaction in the window whose free text
// describes a sale or a transfer
func descriptionRule(in Input) (domain.ClassifiedEvent, bool) {
	for _, tx := range in.window() {
		desc := strings.ToLower(tx.Description)
		if desc == "" {
			continue
		}

		var ev domain.ClassifiedEvent
		switch {
		case strings.Contains(desc, "collection offer") || strings.Contains(desc, "bid accepted"):
			ev = in.event(domain.EventTypeSold)
			ev.Marketplace = strPtr(domain.MARKETPLACE_COLLECTION_OFFER)
			ev.Buyer = in.NewOwner
			ev.Seller = strPtr(in.PreviousOwner)
			ev.Price = priceFromDescription(tx.Description)
		case strings.Contains(desc, "sold") || strings.Contains(desc, "purchase"):
			ev = in.event(domain.EventTypeSold)
			ev.Marketplace = strPtr(domain.MARKETPLACE_DIRECT_SALE)
			ev.Buyer = in.NewOwner
			ev.Seller = strPtr(in.PreviousOwner)
			ev.Price = priceFromDescription(tx.Description)
		case strings.Contains(desc, "transfer") || strings.Contains(desc, "sent"):
			ev = in.event(domain.EventTypeTransfer)
		default:
			continue
		}

		return finalize(in, tx, ev), true
	}
	return domain.ClassifiedEvent{}, false
}

// escrowRule infers listings from movements into and out of marketplace escrows
func escrowRule(in Input) (domain.ClassifiedEvent, bool) {
	if in.NewOwner == nil {
		return domain.ClassifiedEvent{}, false
	}
	newIsEscrow := in.Escrows.Contains(in.NewOwner)
	oldIsEscrow := in.Escrows.Contains(&in.PreviousOwner)

	switch {
	case newIsEscrow && !oldIsEscrow:
		ev := in.event(domain.EventTypeListed)
		ev.Marketplace = strPtr(listingMarketplace(in, ""))
		ev.Seller = strPtr(in.PreviousOwner)
		return ev, true

	case newIsEscrow && oldIsEscrow:
		// Moving between marketplaces is a relisting by the same lister
		ev := in.event(domain.EventTypeListed)
		ev.Marketplace = strPtr(listingMarketplace(in, ""))
		if in.OriginalLister != nil && *in.OriginalLister != "" {
			ev.Seller = in.OriginalLister
		}
		return ev, true

	case oldIsEscrow && !newIsEscrow:
		marketplace, _ := in.Escrows.Marketplace(in.PreviousOwner)
		// Leaving escrow to anyone but the lister means the listing was bought
		if in.OriginalLister == nil || *in.OriginalLister == "" || *in.OriginalLister == *in.NewOwner {
			ev := in.event(domain.EventTypeDelisted)
			ev.Marketplace = strPtr(marketplace)
			ev.Seller = in.OriginalLister
			return ev, true
		}
		ev := in.event(domain.EventTypeSold)
		ev.Marketplace = strPtr(marketplace)
		ev.Buyer = in.NewOwner
		ev.Seller = in.OriginalLister
		return ev, true
	}

	return domain.ClassifiedEvent{}, false
}

// defaultTransferRule always matches
func defaultTransferRule(in Input) (domain.ClassifiedEvent, bool) {
	return in.event(domain.EventTypeTransfer), true
}

// listingMarketplace maps source to a marketplace, falling back to the identity
// of the receiving escrow
func listingMarketplace(in Input, source string) string {
	if source != "" {
		if m := domain.MarketplaceFromSource(source); m != domain.MARKETPLACE_UNKNOWN {
			return m
		}
	}
	if in.NewOwner != nil {
		if m, ok := in.Escrows.Marketplace(*in.NewOwner); ok {
			return m
		}
	}
	return domain.MARKETPLACE_UNKNOWN
}

// finalize fills the price fallbacks, validates the price and stamps the
// deciding transaction on ev
func finalize(in Input, tx domain.Transaction, ev domain.ClassifiedEvent) domain.ClassifiedEvent {
	ev.Signature = tx.Signature
	if !tx.Timestamp.IsZero() {
		ev.Timestamp = tx.Timestamp
	}

	if ev.Type == domain.EventTypeSold || ev.Type == domain.EventTypeListed {
		if domain.ValidPrice(ev.Price) == nil {
			ev.Price = priceFromTokenTransfers(tx, in.MintAddress)
		}
		if ev.Type == domain.EventTypeListed && domain.ValidPrice(ev.Price) == nil {
			ev.Price = priceFromTensorListing(tx)
		}
	}

	ev.Price = domain.ValidPrice(ev.Price)
	return ev
}

// priceFromDescription extracts "<number> SOL" from free text
func priceFromDescription(description string) *decimal.Decimal {
	m := descriptionPriceRe.FindStringSubmatch(description)
	if len(m) < 2 {
		return nil
	}
	price, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return &price
}

// priceFromTokenTransfers uses the lamport amount of the transfer of mint
func priceFromTokenTransfers(tx domain.Transaction, mint string) *decimal.Decimal {
	for _, tt := range tx.TokenTransfers {
		if tt.Mint != mint || tt.Amount == nil {
			continue
		}
		price := domain.LamportsToSOL(*tt.Amount)
		return &price
	}
	return nil
}

// priceFromTensorListing decodes the listing price of a Tensor swap instruction.
// The price is a little endian u64 of lamports at bytes 16..24 of the data.
func priceFromTensorListing(tx domain.Transaction) *decimal.Decimal {
	for _, ix := range tx.Instructions {
		if ix.ProgramID != domain.TENSOR_SWAP_PROGRAM_ID || ix.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(ix.Data)
		if err != nil || len(data) < 24 {
			continue
		}
		lamports := binary.LittleEndian.Uint64(data[16:24])
		price := domain.LamportsToSOL(decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0))
		return &price
	}
	return nil
}
