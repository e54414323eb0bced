package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrMissingIDs       = errors.New("user_id and week_id are required")
	ErrUnknownReference = errors.New("payment references an unknown member or week")
)

// Service handles payment business logic
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new payment service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetStatus records the admin's paid/unpaid decision. paidAt is set to now
// when paid and cleared otherwise.
func (s *Service) SetStatus(ctx context.Context, req *UpdatePaymentRequest) (*Payment, error) {
	userID := strings.TrimSpace(req.UserID)
	weekID := strings.TrimSpace(req.WeekID)
	if userID == "" || weekID == "" {
		return nil, ErrMissingIDs
	}

	var paidAt *time.Time
	if req.Paid {
		now := s.now()
		paidAt = &now
	}
	return s.repo.Upsert(ctx, userID, weekID, req.Paid, paidAt)
}

// MarkPaid flags (userID, weekID) as paid now. Repeating it leaves one paid row.
func (s *Service) MarkPaid(ctx context.Context, userID, weekID string) (*Payment, error) {
	now := s.now()
	return s.repo.Upsert(ctx, userID, weekID, true, &now)
}

// Get retrieves the payment of a member for a week, or nil
func (s *Service) Get(ctx context.Context, userID, weekID string) (*Payment, error) {
	return s.repo.Get(ctx, userID, weekID)
}

// ListByWeek retrieves a week's payments
func (s *Service) ListByWeek(ctx context.Context, weekID string) ([]*Payment, error) {
	return s.repo.ListByWeek(ctx, weekID)
}

// PaidSet indexes a week's payments by user ID
func PaidSet(payments []*Payment) map[string]*Payment {
	out := make(map[string]*Payment, len(payments))
	for _, p := range payments {
		out[p.UserID] = p
	}
	return out
}
