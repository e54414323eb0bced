package payment

import "time"

// UpdatePaymentRequest represents the admin toggle of a member's paid flag
type UpdatePaymentRequest struct {
	UserID string `json:"user_id" validate:"max=64"`
	WeekID string `json:"week_id" validate:"max=64"`
	Paid   bool   `json:"paid"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	UserID string  `json:"user_id"`
	WeekID string  `json:"week_id"`
	Paid   bool    `json:"paid"`
	PaidAt *string `json:"paid_at,omitempty"`
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	resp := &PaymentResponse{
		UserID: p.UserID,
		WeekID: p.WeekID,
		Paid:   p.Paid,
	}
	if p.PaidAt != nil {
		at := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &at
	}
	return resp
}
