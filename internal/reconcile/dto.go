package reconcile

import (
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// DueWeekResponse is one unpaid week on the payment page
type DueWeekResponse struct {
	Week            *week.WeekResponse `json:"week"`
	UserID          string             `json:"user_id"`
	UserName        string             `json:"user_name"`
	Amount          float64            `json:"amount"`
	FormattedAmount string             `json:"formatted_amount"`
	PaymentURL      string             `json:"payment_url,omitempty"`
}

// PayPageResponse is the payment page payload
type PayPageResponse struct {
	Name  string             `json:"name"`
	Weeks []*DueWeekResponse `json:"weeks"`
}

// WebhookResponse acknowledges an applied notification
type WebhookResponse struct {
	Message string  `json:"message"`
	UserID  string  `json:"user_id"`
	WeekID  string  `json:"week_id"`
	Amount  float64 `json:"amount"`
}

// ReturnResponse is the gateway return page payload
type ReturnResponse struct {
	IsSuccess         bool    `json:"is_success"`
	SignatureValid    *bool   `json:"signature_valid,omitempty"`
	UserName          string  `json:"user_name,omitempty"`
	WeekDate          string  `json:"week_date,omitempty"`
	Amount            float64 `json:"amount"`
	FormattedAmount   string  `json:"formatted_amount"`
	TransactionNo     string  `json:"transaction_no,omitempty"`
	TxnRef            string  `json:"txn_ref,omitempty"`
	ResponseCode      string  `json:"response_code,omitempty"`
	TransactionStatus string  `json:"transaction_status,omitempty"`
}

func toPayPageResponse(name string, due []DueWeek) *PayPageResponse {
	resp := &PayPageResponse{Name: name, Weeks: make([]*DueWeekResponse, len(due))}
	for i, d := range due {
		resp.Weeks[i] = &DueWeekResponse{
			Week:            d.Week.ToResponse(),
			UserID:          d.UserID,
			UserName:        d.UserName,
			Amount:          d.Amount,
			FormattedAmount: d.FormattedAmount(),
			PaymentURL:      d.PaymentURL,
		}
	}
	return resp
}

func (r ReturnResult) toResponse() *ReturnResponse {
	return &ReturnResponse{
		IsSuccess:         r.IsSuccess,
		SignatureValid:    r.SignatureValid,
		UserName:          r.UserName,
		WeekDate:          r.WeekDate,
		Amount:            r.Amount,
		FormattedAmount:   money.FormatVND(r.Amount),
		TransactionNo:     r.TransactionNo,
		TxnRef:            r.TxnRef,
		ResponseCode:      r.ResponseCode,
		TransactionStatus: r.TransactionStatus,
	}
}
