package week

import "time"

// CreateWeekRequest represents the request body for opening a week
type CreateWeekRequest struct {
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// WeekResponse represents a week in API responses
type WeekResponse struct {
	ID          string  `json:"id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Label       string  `json:"label"`
	Name        *string `json:"name,omitempty"`
	IsFinalized bool    `json:"is_finalized"`
	FinalizedAt *string `json:"finalized_at,omitempty"`
	OrderCount  *int    `json:"order_count,omitempty"`
	AllPaid     *bool   `json:"all_paid,omitempty"`
	HasUsers    *bool   `json:"has_users,omitempty"`
}

// ToResponse converts a Week model to a WeekResponse DTO
func (w *Week) ToResponse() *WeekResponse {
	resp := &WeekResponse{
		ID:          w.ID,
		StartDate:   FormatDate(w.StartDate),
		EndDate:     FormatDate(w.EndDate),
		Label:       w.Label(),
		Name:        w.Name,
		IsFinalized: w.IsFinalized,
	}
	if w.FinalizedAt != nil {
		at := w.FinalizedAt.Format(time.RFC3339)
		resp.FinalizedAt = &at
	}
	return resp
}

// ToResponse converts a week with its order count and derived status
func (w *WithCount) ToResponse(status Status) *WeekResponse {
	resp := w.Week.ToResponse()
	count := w.OrderCount
	resp.OrderCount = &count
	resp.AllPaid = &status.AllPaid
	resp.HasUsers = &status.HasUsers
	return resp
}
