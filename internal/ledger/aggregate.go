// Package ledger folds order lines into per-member week totals and derives
// the payment state of a week from them.
package ledger

import "github.com/NALLOO/AnTruaNao-V2/pkg/money"

// Charge is one order line as seen by the ledger
type Charge struct {
	UserID     string
	UserName   string
	FinalPrice float64
}

// UserTotal is what one member owes for a week
type UserTotal struct {
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	TotalAmount float64 `json:"total_amount"`
}

// AggregateUserTotals sums charges per user ID. Output keeps the order in
// which each user first appears, and the first name seen for that user wins.
func AggregateUserTotals(charges []Charge) []UserTotal {
	index := make(map[string]int, len(charges))
	totals := make([]UserTotal, 0)

	for _, c := range charges {
		if i, ok := index[c.UserID]; ok {
			totals[i].TotalAmount += c.FinalPrice
			continue
		}
		index[c.UserID] = len(totals)
		totals = append(totals, UserTotal{
			UserID:      c.UserID,
			UserName:    c.UserName,
			TotalAmount: c.FinalPrice,
		})
	}

	for i := range totals {
		totals[i].TotalAmount = money.Round2(totals[i].TotalAmount)
	}
	return totals
}

// AllPaid reports whether there is at least one member and every one of them has paid
func AllPaid(totals []UserTotal, paid func(userID string) bool) bool {
	if len(totals) == 0 {
		return false
	}
	for _, t := range totals {
		if !paid(t.UserID) {
			return false
		}
	}
	return true
}

// AnyUnpaid reports whether some member still owes money
func AnyUnpaid(totals []UserTotal, paid func(userID string) bool) bool {
	for _, t := range totals {
		if !paid(t.UserID) {
			return true
		}
	}
	return false
}

// Find returns the total of userID, or nil when the user has no charges
func Find(totals []UserTotal, userID string) *UserTotal {
	for i := range totals {
		if totals[i].UserID == userID {
			return &totals[i]
		}
	}
	return nil
}
