package domain

import (
	"github.com/shopspring/decimal"
)

var (
	// MinSOLPrice is the lowest accepted price in SOL
	MinSOLPrice = decimal.RequireFromString("0.01")
	// MaxSOLPrice is the highest accepted price in SOL
	MaxSOLPrice = decimal.NewFromInt(100000)

	lamportsPerSOL = decimal.NewFromInt(1_000_000_000)
)

// LamportsToSOL converts a lamport amount to SOL
func LamportsToSOL(lamports decimal.Decimal) decimal.Decimal {
	return lamports.Div(lamportsPerSOL)
}

// IsValidSOLPrice reports whether price lies within [MinSOLPrice, MaxSOLPrice]
func IsValidSOLPrice(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(MinSOLPrice) && price.LessThanOrEqual(MaxSOLPrice)
}

// ValidPrice returns price when it is in range and nil otherwise.
// Out of range prices are discarded, never clamped.
func ValidPrice(price *decimal.Decimal) *decimal.Decimal {
	if price == nil || !IsValidSOLPrice(*price) {
		return nil
	}
	p := *price
	return &p
}

// FormatSOL renders a price as "X.XX SOL"
func FormatSOL(price decimal.Decimal) string {
	return price.StringFixed(2) + " SOL"
}
