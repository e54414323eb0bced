package user

import "github.com/NALLOO/AnTruaNao-V2/pkg/money"

// MemberInput is one member in a bulk create request
type MemberInput struct {
	Name  string  `json:"name" validate:"max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,max=255"`
}

// CreateUsersRequest represents the request body for adding members
type CreateUsersRequest struct {
	Members []MemberInput `json:"members" validate:"required,min=1,dive"`
}

// UpdateUserRequest represents the request body for renaming a member
type UpdateUserRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,max=255"`
}

// LookupRequest represents the request body for lookup-or-create
type LookupRequest struct {
	Name string `json:"name"`
}

// UserResponse represents the response for a single member
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// StatResponse represents a member row on the members page
type StatResponse struct {
	UserResponse
	OrderCount           int     `json:"order_count"`
	TotalAmount          float64 `json:"total_amount"`
	FormattedTotalAmount string  `json:"formatted_total_amount"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ToResponse converts a Stat to a StatResponse DTO
func (s *Stat) ToResponse() *StatResponse {
	return &StatResponse{
		UserResponse:         *s.User.ToResponse(),
		OrderCount:           s.OrderCount,
		TotalAmount:          s.TotalAmount,
		FormattedTotalAmount: money.FormatVND(s.TotalAmount),
	}
}
