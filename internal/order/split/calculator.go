package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// =============================================================================
// PER-LINE DISCOUNT SPLIT
// The gap between the listed price total and the negotiated final amount is
// divided evenly across every line, regardless of each line's price.
// =============================================================================

var (
	ErrNoLines                 = errors.New("at least one dish with a payer is required")
	ErrDishWithoutPayers       = errors.New("dish has no payers")
	ErrInvalidFinalAmount      = errors.New("final amount must be greater than 0")
	ErrFinalAmountExceedsTotal = errors.New("final amount cannot exceed the total item price")
)

// Payer identifies one person sharing a dish
type Payer struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
}

// Dish is a single menu item ordered by one or more payers
type Dish struct {
	ItemName string  `json:"item_name"`
	Price    float64 `json:"price"`
	Payers   []Payer `json:"payers"`
}

// Line is one payer's copy of a dish
type Line struct {
	UserID   string
	UserName string
	ItemName string
	Price    float64
}

// SplitLine is a line with its allocated discount
type SplitLine struct {
	Line
	DiscountShare float64
	FinalPrice    float64
}

// Result holds the computed order amounts and the per-line charges
type Result struct {
	TotalAmount     float64
	Discount        float64
	DiscountPerLine float64
	FinalAmount     float64
	Lines           []SplitLine
}

// Expand turns dishes into one line per payer, keeping dish order and payer order.
// Dishes without a name or with a non-positive price are skipped.
func Expand(dishes []Dish) ([]Line, error) {
	var lines []Line
	for _, d := range dishes {
		name := strings.TrimSpace(d.ItemName)
		if name == "" || d.Price <= 0 {
			continue
		}
		var payers []Payer
		for _, p := range d.Payers {
			if strings.TrimSpace(p.UserID) != "" {
				payers = append(payers, p)
			}
		}
		if len(payers) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrDishWithoutPayers, name)
		}
		for _, p := range payers {
			lines = append(lines, Line{
				UserID:   p.UserID,
				UserName: p.UserName,
				ItemName: name,
				Price:    d.Price,
			})
		}
	}
	return lines, nil
}

// Calculate validates the final amount against the line total and distributes the discount
func Calculate(lines []Line, finalAmount float64) (*Result, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	var sum float64
	for _, l := range lines {
		sum += l.Price
	}
	total := money.Round2(sum)

	if finalAmount <= 0 {
		return nil, ErrInvalidFinalAmount
	}
	// The bound and the discount use the unrounded sum; only the stored
	// total is rounded.
	if finalAmount > sum {
		return nil, fmt.Errorf("%w: final amount %s, total %s",
			ErrFinalAmountExceedsTotal, money.FormatVND(finalAmount), money.FormatVND(total))
	}

	discount := DiscountFor(sum, finalAmount)
	perLine := DiscountPerLine(discount, len(lines))

	out := make([]SplitLine, len(lines))
	for i, l := range lines {
		out[i] = SplitLine{
			Line:          l,
			DiscountShare: perLine,
			FinalPrice:    FinalPrice(l.Price, perLine),
		}
	}

	return &Result{
		TotalAmount:     total,
		Discount:        discount,
		DiscountPerLine: perLine,
		FinalAmount:     money.Round2(finalAmount),
		Lines:           out,
	}, nil
}

// DiscountFor returns the rounded gap between total and final amount
func DiscountFor(total, finalAmount float64) float64 {
	return money.Round2(total - finalAmount)
}

// DiscountPerLine splits a discount evenly over lineCount lines
func DiscountPerLine(discount float64, lineCount int) float64 {
	if lineCount == 0 {
		return 0
	}
	return money.Round2(discount / float64(lineCount))
}

// FinalPrice is the line price minus its discount share
func FinalPrice(price, discountShare float64) float64 {
	return money.Round2(price - discountShare)
}
