// Package classifier turns an observed ownership change into a semantic event.
//
// Classification is a pure function of its Input. Rules are evaluated in order
// and the first rule that matches decides the event.
package classifier

import (
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// Input is everything the classifier may look at for one changed record
type Input struct {
	MintAddress string
	// PreviousOwner is the owner stored in the database
	PreviousOwner string
	// NewOwner is the owner reported by the chain snapshot, nil when absent
	NewOwner *string
	// OriginalLister is the stored lister when the record is currently listed
	OriginalLister *string
	Escrows        domain.EscrowSet
	// Transactions is the recent history of the mint, newest first
	Transactions []domain.Transaction
	// WindowSize bounds how many transactions are inspected
	WindowSize int
	Now        time.Time
}

// window returns the inspected slice of the transaction history
func (in Input) window() []domain.Transaction {
	size := in.WindowSize
	if size <= 0 {
		size = domain.DEFAULT_TX_WINDOW
	}
	if len(in.Transactions) <= size {
		return in.Transactions
	}
	return in.Transactions[:size]
}

// event returns a skeleton event of type t for this input
func (in Input) event(t domain.EventType) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		Type:          t,
		MintAddress:   in.MintAddress,
		PreviousOwner: in.PreviousOwner,
		NewOwner:      in.NewOwner,
		Timestamp:     in.Now,
	}
}

// Rule is a named predicate/extractor pair
type Rule struct {
	Name  string
	Apply func(in Input) (domain.ClassifiedEvent, bool)
}

// DefaultRules returns the classification rules in precedence order
func DefaultRules() []Rule {
	return []Rule{
		{Name: "burned", Apply: burnedRule},
		{Name: "nft_event", Apply: nftEventRule},
		{Name: "description", Apply: descriptionRule},
		{Name: "escrow", Apply: escrowRule},
		{Name: "default_transfer", Apply: defaultTransferRule},
	}
}

// Classifier evaluates rules in order
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the given rules, or DefaultRules when none are given
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the event of the first matching rule and its name.
// When no rule matches the change is a transfer.
func (c *Classifier) Classify(in Input) (domain.ClassifiedEvent, string) {
	for _, rule := range c.rules {
		if ev, ok := rule.Apply(in); ok {
			return ev, rule.Name
		}
	}
	ev, _ := defaultTransferRule(in)
	return ev, "default_transfer"
}

var defaultClassifier = New()

// Classify classifies in with the default rules
func Classify(in Input) domain.ClassifiedEvent {
	ev, _ := defaultClassifier.Classify(in)
	return ev
}
