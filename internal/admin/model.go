package admin

import "time"

// Admin is an account allowed to manage weeks, members, orders and payments
type Admin struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
