package notification

import "time"

// Outcome is the result of processing one gateway notification
type Outcome string

const (
	OutcomeApplied  Outcome = "APPLIED"
	OutcomeRejected Outcome = "REJECTED"
)

// Notification is one inbound payment notification as it was received,
// together with what reconciliation made of it.
type Notification struct {
	ID         string
	TxnRef     *string
	Outcome    Outcome
	Reason     *string
	UserID     *string
	WeekID     *string
	Amount     *float64
	Payload    map[string]string
	ReceivedAt time.Time
}
