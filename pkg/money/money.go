// Package money holds the currency arithmetic shared by the split calculator,
// the ledger and the payment gateway.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Round2 rounds a value to 2 decimal places, halves away from zero.
// Every stored amount passes through it.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ToMinor converts a ledger amount into gateway minor units (x100).
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinor converts gateway minor units back into a ledger amount.
func FromMinor(minor int64) float64 {
	return float64(minor) / 100
}

// FormatVND renders an amount as whole Vietnamese dong with local digit grouping.
func FormatVND(amount float64) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprintf("%d ₫", int64(math.Round(amount)))
}
