// Package reconcile matches inbound gateway notifications to a member's week
// and marks them paid. It also builds the payment page the member starts from.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NALLOO/AnTruaNao-V2/internal/week"
)

// Marker separates the payer name from the week date in a payment memo
const Marker = "tien com"

// Memo is a parsed payment memo
type Memo struct {
	Name  string
	Day   int
	Month int
	Year  int
}

// Date returns the memo date at midnight in loc
func (m Memo) Date(loc *time.Location) time.Time {
	return time.Date(m.Year, time.Month(m.Month), m.Day, 0, 0, 0, 0, loc)
}

// FormatMemo builds "<name> tien com dd/MM/yyyy" for a week starting on start
func FormatMemo(name string, start time.Time) string {
	return strings.TrimSpace(name) + " " + Marker + " " + week.FormatDate(start)
}

// ParseMemo splits a memo into payer name and date. The marker is matched
// case-insensitively; the date must be a real dd/MM/yyyy calendar day.
func ParseMemo(info string) (Memo, error) {
	info = strings.TrimSpace(info)
	idx := indexFold(info, Marker)
	if idx < 0 {
		return Memo{}, ErrInvalidOrderInfo
	}

	name := strings.TrimSpace(info[:idx])
	if name == "" {
		return Memo{}, ErrInvalidOrderInfo
	}

	parts := strings.Split(strings.TrimSpace(info[idx+len(Marker):]), "/")
	if len(parts) != 3 {
		return Memo{}, fmt.Errorf("%w: %q", ErrInvalidDate, info)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return Memo{}, fmt.Errorf("%w: %q", ErrInvalidDate, info)
		}
		nums[i] = n
	}

	m := Memo{Name: name, Day: nums[0], Month: nums[1], Year: nums[2]}
	d := m.Date(time.UTC)
	if d.Day() != m.Day || int(d.Month()) != m.Month || d.Year() != m.Year {
		return Memo{}, fmt.Errorf("%w: %q", ErrInvalidDate, info)
	}
	return m, nil
}

// indexFold is strings.Index with ASCII case folding on the needle
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}
