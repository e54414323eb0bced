package user

import "time"

// User is a member who can be charged for order lines
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stat is a member with their lifetime order-line count and total
type Stat struct {
	User
	OrderCount  int
	TotalAmount float64
}
