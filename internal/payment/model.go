package payment

import "time"

// Payment is the settlement state of one member for one week
type Payment struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	WeekID    string     `json:"week_id"`
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
