package week

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NALLOO/AnTruaNao-V2/internal/database"
)

// Common errors
var (
	ErrWeekNotFound      = errors.New("week not found")
	ErrStartDateRequired = errors.New("start date is required")
	ErrInvalidStartDate  = errors.New("invalid start date")
	ErrNotMonday         = errors.New("week must start on a Monday (Thứ hai)")
	ErrWeekOverlap       = errors.New("week overlaps an existing week")
	ErrWeekHasOrders     = errors.New("cannot delete a week that has orders")
	ErrWeekHasPayments   = errors.New("cannot delete a week that has payments")
)

// Service handles week business logic
type Service struct {
	repo *Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a new week service. Start dates are interpreted in loc.
func NewService(repo *Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Create opens a new week starting on the given Monday
func (s *Service) Create(ctx context.Context, req *CreateWeekRequest) (*Week, error) {
	start, err := ParseStartDate(strings.TrimSpace(req.StartDate), s.loc)
	if err != nil {
		return nil, err
	}
	if err := ValidateStart(start); err != nil {
		return nil, err
	}
	end := EndOf(start)

	existing, err := s.repo.FindOverlapping(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w (%s)", ErrWeekOverlap, existing.Label())
	}

	var name *string
	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != "" {
			name = &trimmed
		}
	}

	return s.repo.Create(ctx, start, end, name)
}

// GetByID retrieves a week by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Week, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWeekNotFound
	}
	return w, nil
}

// List retrieves all weeks, newest first
func (s *Service) List(ctx context.Context) ([]*WithCount, error) {
	return s.repo.List(ctx)
}

// ListFinalized retrieves finalized weeks, newest first
func (s *Service) ListFinalized(ctx context.Context) ([]*Week, error) {
	return s.repo.ListFinalized(ctx)
}

// Finalize locks a week for billing. Finalizing twice keeps the first finalizedAt.
func (s *Service) Finalize(ctx context.Context, id string) (*Week, error) {
	w, err := s.repo.Finalize(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWeekNotFound
	}
	return w, nil
}

// Delete removes a week that owns no orders and no payments. The guards run
// under the week's row lock, in the same transaction as the delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		w, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if w == nil {
			return ErrWeekNotFound
		}

		orders, err := s.repo.CountOrders(ctx, tx, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return fmt.Errorf("%w: it has %d orders", ErrWeekHasOrders, orders)
		}

		payments, err := s.repo.CountPayments(ctx, tx, id)
		if err != nil {
			return err
		}
		if payments > 0 {
			return fmt.Errorf("%w: it has %d payments", ErrWeekHasPayments, payments)
		}

		return s.repo.Delete(ctx, tx, id)
	})
}

// FindFinalizedOn returns the finalized week starting on the calendar day of
// day, or nil when there is none
func (s *Service) FindFinalizedOn(ctx context.Context, day time.Time) (*Week, error) {
	from, to := DayWindow(day.In(s.loc))
	return s.repo.FindFinalizedStartingBetween(ctx, from, to)
}
