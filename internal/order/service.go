package order

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/NALLOO/AnTruaNao-V2/internal/database"
	"github.com/NALLOO/AnTruaNao-V2/internal/order/split"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
)

// Common errors
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrWeekRequired        = errors.New("week is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrWeekFinalized       = errors.New("week is finalized; new orders cannot be added")
	ErrUnknownUser         = errors.New("order item references an unknown member")
)

// WeekLookup reads a week inside an order transaction
type WeekLookup interface {
	GetByIDTx(ctx context.Context, tx database.DBTX, id string) (*week.Week, error)
}

// Service handles order business logic
type Service struct {
	db    *sql.DB
	repo  *Repository
	weeks WeekLookup
}

// NewService creates a new order service
func NewService(db *sql.DB, repo *Repository, weeks WeekLookup) *Service {
	return &Service{db: db, repo: repo, weeks: weeks}
}

// Create validates and splits an order, then writes it with its lines in one
// transaction. Finalized weeks reject new orders.
func (s *Service) Create(ctx context.Context, req *OrderRequest) (*Order, error) {
	weekID, description, res, err := prepare(req)
	if err != nil {
		return nil, err
	}

	var orderID string
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		w, err := s.weeks.GetByIDTx(ctx, tx, weekID)
		if err != nil {
			return err
		}
		if w == nil {
			return week.ErrWeekNotFound
		}
		if w.IsFinalized {
			return ErrWeekFinalized
		}

		o, err := s.repo.Insert(ctx, tx, weekID, description, res)
		if err != nil {
			return err
		}
		if _, err := s.repo.InsertItems(ctx, tx, o.ID, res.Lines); err != nil {
			return err
		}
		orderID = o.ID
		return week.BumpOrdersVersion(ctx, tx, weekID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orderID)
}

// Replace rewrites an order and all of its lines in one transaction. The
// target week may already be finalized.
func (s *Service) Replace(ctx context.Context, id string, req *OrderRequest) (*Order, error) {
	weekID, description, res, err := prepare(req)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		existing, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrOrderNotFound
		}

		w, err := s.weeks.GetByIDTx(ctx, tx, weekID)
		if err != nil {
			return err
		}
		if w == nil {
			return week.ErrWeekNotFound
		}

		if _, err := s.repo.Update(ctx, tx, id, weekID, description, res); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, id); err != nil {
			return err
		}
		if _, err := s.repo.InsertItems(ctx, tx, id, res.Lines); err != nil {
			return err
		}

		if err := week.BumpOrdersVersion(ctx, tx, weekID); err != nil {
			return err
		}
		if existing.WeekID != weekID {
			return week.BumpOrdersVersion(ctx, tx, existing.WeekID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes an order and its lines
func (s *Service) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		existing, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrOrderNotFound
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return week.BumpOrdersVersion(ctx, tx, existing.WeekID)
	})
}

// GetByID retrieves an order with its lines
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListByWeek retrieves a week's orders, newest first
func (s *Service) ListByWeek(ctx context.Context, weekID string) ([]*Order, error) {
	return s.repo.ListByWeek(ctx, weekID)
}

// ListItemsByWeek retrieves a week's lines in charge order
func (s *Service) ListItemsByWeek(ctx context.Context, weekID string) ([]*Item, error) {
	return s.repo.ListItemsByWeek(ctx, weekID)
}

func prepare(req *OrderRequest) (string, string, *split.Result, error) {
	weekID := strings.TrimSpace(req.WeekID)
	if weekID == "" {
		return "", "", nil, ErrWeekRequired
	}

	lines, err := split.Expand(req.ToDishes())
	if err != nil {
		return "", "", nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return "", "", nil, ErrDescriptionRequired
	}

	res, err := split.Calculate(lines, req.FinalAmount)
	if err != nil {
		return "", "", nil, err
	}
	return weekID, description, res, nil
}
