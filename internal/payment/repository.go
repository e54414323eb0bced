package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const paymentColumns = `id, user_id, week_id, paid, paid_at, created_at, updated_at`

// Repository handles payment data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert sets the paid state of (userID, weekID), creating the row if needed
func (r *Repository) Upsert(ctx context.Context, userID, weekID string, paid bool, paidAt *time.Time) (*Payment, error) {
	query := `
		INSERT INTO payments (id, user_id, week_id, paid, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, week_id)
		DO UPDATE SET paid = EXCLUDED.paid, paid_at = EXCLUDED.paid_at, updated_at = NOW()
		RETURNING ` + paymentColumns

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, uuid.NewString(), userID, weekID, paid, paidAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("failed to upsert payment: %w", err)
	}
	return p, nil
}

// Get retrieves the payment of a member for a week
func (r *Repository) Get(ctx context.Context, userID, weekID string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 AND week_id = $2`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, userID, weekID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListByWeek retrieves all payments recorded for a week
func (r *Repository) ListByWeek(ctx context.Context, weekID string) ([]*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE week_id = $1`

	rows, err := r.db.QueryContext(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*Payment, error) {
	p := &Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.WeekID, &p.Paid, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}
