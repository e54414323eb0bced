package notification

import "time"

// NotificationResponse represents the response for a logged notification
type NotificationResponse struct {
	ID         string            `json:"id"`
	TxnRef     *string           `json:"txn_ref,omitempty"`
	Outcome    Outcome           `json:"outcome"`
	Reason     *string           `json:"reason,omitempty"`
	UserID     *string           `json:"user_id,omitempty"`
	WeekID     *string           `json:"week_id,omitempty"`
	Amount     *float64          `json:"amount,omitempty"`
	Payload    map[string]string `json:"payload"`
	ReceivedAt string            `json:"received_at"`
}

func toResponse(n *Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:         n.ID,
		TxnRef:     n.TxnRef,
		Outcome:    n.Outcome,
		Reason:     n.Reason,
		UserID:     n.UserID,
		WeekID:     n.WeekID,
		Amount:     n.Amount,
		Payload:    n.Payload,
		ReceivedAt: n.ReceivedAt.UTC().Format(time.RFC3339),
	}
}
