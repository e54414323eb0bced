package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Entry is what reconciliation reports about one notification
type Entry struct {
	Outcome Outcome
	Reason  string
	UserID  string
	WeekID  string
	Amount  *float64
	Payload map[string]string
}

// Service handles notification log business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry to the log. The signature fields are kept in the
// payload so a rejected notification can be inspected later.
func (s *Service) Record(ctx context.Context, e Entry) (*Notification, error) {
	n := &Notification{
		ID:      uuid.NewString(),
		TxnRef:  optional(e.Payload["vnp_TxnRef"]),
		Outcome: e.Outcome,
		Reason:  optional(e.Reason),
		UserID:  optional(e.UserID),
		WeekID:  optional(e.WeekID),
		Amount:  e.Amount,
		Payload: e.Payload,
	}
	if n.Payload == nil {
		n.Payload = map[string]string{}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List retrieves a page of the log
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Notification, int, error) {
	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
