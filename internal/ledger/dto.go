package ledger

import (
	"time"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// UserStatusResponse is a member's week total in API responses
type UserStatusResponse struct {
	UserID               string  `json:"user_id"`
	UserName             string  `json:"user_name"`
	TotalAmount          float64 `json:"total_amount"`
	FormattedTotalAmount string  `json:"formatted_total_amount"`
	Paid                 bool    `json:"paid"`
	PaidAt               *string `json:"paid_at,omitempty"`
	PaymentURL           string  `json:"payment_url,omitempty"`
}

// SummaryResponse is a week's ledger in API responses
type SummaryResponse struct {
	Week     *week.WeekResponse    `json:"week"`
	Users    []*UserStatusResponse `json:"users"`
	AllPaid  bool                  `json:"all_paid"`
	HasUsers bool                  `json:"has_users"`
}

// DashboardResponse is the landing page payload
type DashboardResponse struct {
	IsAdmin                    bool                   `json:"is_admin"`
	Weeks                      []*week.WeekResponse   `json:"weeks"`
	SelectedWeek               *week.WeekResponse     `json:"selected_week"`
	UserTotals                 []*UserStatusResponse  `json:"user_totals"`
	TotalOrdersAmount          float64                `json:"total_orders_amount"`
	FormattedTotalOrdersAmount string                 `json:"formatted_total_orders_amount"`
	Orders                     []*order.OrderResponse `json:"orders"`
}

func toUserStatusResponse(u UserStatus) *UserStatusResponse {
	resp := &UserStatusResponse{
		UserID:               u.UserID,
		UserName:             u.UserName,
		TotalAmount:          u.TotalAmount,
		FormattedTotalAmount: money.FormatVND(u.TotalAmount),
		Paid:                 u.Paid,
	}
	if u.PaidAt != nil {
		at := u.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &at
	}
	return resp
}

// ToResponse converts a Summary to its DTO
func (s *Summary) ToResponse() *SummaryResponse {
	users := make([]*UserStatusResponse, len(s.Users))
	for i, u := range s.Users {
		users[i] = toUserStatusResponse(u)
	}
	return &SummaryResponse{
		Week:     s.Week.ToResponse(),
		Users:    users,
		AllPaid:  s.AllPaid,
		HasUsers: s.HasUsers,
	}
}

// ToResponse converts a Dashboard to its DTO
func (d *Dashboard) ToResponse() *DashboardResponse {
	resp := &DashboardResponse{
		IsAdmin:                    d.IsAdmin,
		Weeks:                      make([]*week.WeekResponse, len(d.Weeks)),
		UserTotals:                 make([]*UserStatusResponse, len(d.Users)),
		TotalOrdersAmount:          d.TotalOrdersAmount,
		FormattedTotalOrdersAmount: money.FormatVND(d.TotalOrdersAmount),
		Orders:                     make([]*order.OrderResponse, len(d.Orders)),
	}
	for i, w := range d.Weeks {
		resp.Weeks[i] = w.ToResponse()
	}
	if d.Selected != nil {
		resp.SelectedWeek = d.Selected.ToResponse()
	}
	for i, u := range d.Users {
		resp.UserTotals[i] = toUserStatusResponse(u)
	}
	for i, o := range d.Orders {
		resp.Orders[i] = o.ToResponse()
	}
	return resp
}
