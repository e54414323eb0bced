package week

import "time"

// Week is a Monday-to-Friday accounting period that groups orders
type Week struct {
	ID            string     `json:"id"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Name          *string    `json:"name,omitempty"`
	IsFinalized   bool       `json:"is_finalized"`
	FinalizedAt   *time.Time `json:"finalized_at,omitempty"`
	OrdersVersion int64      `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// WithCount is a week together with the number of orders it owns
type WithCount struct {
	Week
	OrderCount int
}

// Status is the derived payment completeness of a week
type Status struct {
	AllPaid  bool
	HasUsers bool
}

// Label renders the period as "dd/MM/yyyy - dd/MM/yyyy"
func (w *Week) Label() string {
	return FormatDate(w.StartDate) + " - " + FormatDate(w.EndDate)
}
