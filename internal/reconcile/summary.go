package reconcile

import (
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// LAST_RUN_KEY_PREFIX prefixes the key-value entry holding the last summary of a collection
const LAST_RUN_KEY_PREFIX = "reconcile:last_run:"

// LastRunKey returns the key-value key of the last summary of symbol
func LastRunKey(symbol string) string {
	return LAST_RUN_KEY_PREFIX + symbol
}

// CollectionSummary counts what one collection pass did
type CollectionSummary struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	NFTsFound  int       `json:"nfts_found"`
	NFTsInDB   int       `json:"nfts_in_db"`
	New        int       `json:"new"`
	Transfers  int       `json:"transfers"`
	Sales      int       `json:"sales"`
	Listings   int       `json:"listings"`
	Delists    int       `json:"delists"`
	Burns      int       `json:"burns"`
	Unknown    int       `json:"unknown"`
	// Skipped counts assets that could not be acted on, such as ownerless new mints
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
	Error   string `json:"error,omitempty"`
}

// count records one applied or dry-run classified event
func (s *CollectionSummary) count(t domain.EventType) {
	switch t {
	case domain.EventTypeListed:
		s.Listings++
	case domain.EventTypeDelisted:
		s.Delists++
	case domain.EventTypeSold:
		s.Sales++
	case domain.EventTypeTransfer:
		s.Transfers++
	case domain.EventTypeBurned:
		s.Burns++
	case domain.EventTypeNew:
		s.New++
	default:
		s.Unknown++
	}
}

// Changes returns the number of ownership changes recorded
func (s CollectionSummary) Changes() int {
	return s.Transfers + s.Sales + s.Listings + s.Delists + s.Burns
}

// RunSummary is the outcome of one pass over the configured collections
type RunSummary struct {
	RunID       string              `json:"run_id"`
	DryRun      bool                `json:"dry_run"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Collections []CollectionSummary `json:"collections"`
}

// Totals sums the collection summaries
func (r RunSummary) Totals() CollectionSummary {
	total := CollectionSummary{
		RunID:      r.RunID,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, c := range r.Collections {
		total.NFTsFound += c.NFTsFound
		total.NFTsInDB += c.NFTsInDB
		total.New += c.New
		total.Transfers += c.Transfers
		total.Sales += c.Sales
		total.Listings += c.Listings
		total.Delists += c.Delists
		total.Burns += c.Burns
		total.Unknown += c.Unknown
		total.Skipped += c.Skipped
		total.Errors += c.Errors
	}
	return total
}

// Failed returns the collections whose pass did not complete
func (r RunSummary) Failed() []string {
	var failed []string
	for _, c := range r.Collections {
		if c.Error != "" {
			failed = append(failed, c.Symbol)
		}
	}
	return failed
}
