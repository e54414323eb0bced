package week

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NALLOO/AnTruaNao-V2/internal/database"
)

const weekColumns = `id, start_date, end_date, name, is_finalized, finalized_at, orders_version, created_at, updated_at`

// Repository handles week data persistence
type Repository struct {
	db  *sql.DB
	loc *time.Location
}

// NewRepository creates a new week repository. Dates read back are
// converted into loc.
func NewRepository(db *sql.DB, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{db: db, loc: loc}
}

// Create inserts a new week
func (r *Repository) Create(ctx context.Context, start, end time.Time, name *string) (*Week, error) {
	query := `
		INSERT INTO weeks (id, start_date, end_date, name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + weekColumns

	w, err := r.scanWeek(r.db.QueryRowContext(ctx, query, uuid.NewString(), start, end, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create week: %w", err)
	}
	return w, nil
}

// GetByID retrieves a week by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Week, error) {
	return r.getByID(ctx, r.db, id)
}

// GetByIDTx retrieves a week inside an existing transaction
func (r *Repository) GetByIDTx(ctx context.Context, tx database.DBTX, id string) (*Week, error) {
	return r.getByID(ctx, tx, id)
}

func (r *Repository) getByID(ctx context.Context, db database.DBTX, id string) (*Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1`

	w, err := r.scanWeek(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get week: %w", err)
	}
	return w, nil
}

// FindOverlapping returns any week whose interval intersects [start, end], bounds inclusive
func (r *Repository) FindOverlapping(ctx context.Context, start, end time.Time) (*Week, error) {
	query := `
		SELECT ` + weekColumns + `
		FROM weeks
		WHERE start_date <= $2 AND end_date >= $1
		ORDER BY start_date ASC
		LIMIT 1
	`

	w, err := r.scanWeek(r.db.QueryRowContext(ctx, query, start, end))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check overlapping weeks: %w", err)
	}
	return w, nil
}

// FindFinalizedStartingBetween returns the finalized week whose start falls in [from, to]
func (r *Repository) FindFinalizedStartingBetween(ctx context.Context, from, to time.Time) (*Week, error) {
	query := `
		SELECT ` + weekColumns + `
		FROM weeks
		WHERE is_finalized = TRUE AND start_date >= $1 AND start_date <= $2
		ORDER BY start_date ASC
		LIMIT 1
	`

	w, err := r.scanWeek(r.db.QueryRowContext(ctx, query, from, to))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find finalized week: %w", err)
	}
	return w, nil
}

// List retrieves every week, newest first, with its order count
func (r *Repository) List(ctx context.Context) ([]*WithCount, error) {
	query := `
		SELECT w.id, w.start_date, w.end_date, w.name, w.is_finalized, w.finalized_at,
		       w.orders_version, w.created_at, w.updated_at, COUNT(o.id)
		FROM weeks w
		LEFT JOIN orders o ON o.week_id = w.id
		GROUP BY w.id
		ORDER BY w.start_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*WithCount
	for rows.Next() {
		wc := &WithCount{}
		if err := rows.Scan(
			&wc.ID,
			&wc.StartDate,
			&wc.EndDate,
			&wc.Name,
			&wc.IsFinalized,
			&wc.FinalizedAt,
			&wc.OrdersVersion,
			&wc.CreatedAt,
			&wc.UpdatedAt,
			&wc.OrderCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		r.localize(&wc.Week)
		weeks = append(weeks, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weeks: %w", err)
	}

	return weeks, nil
}

// ListFinalized retrieves finalized weeks, newest first
func (r *Repository) ListFinalized(ctx context.Context) ([]*Week, error) {
	query := `
		SELECT ` + weekColumns + `
		FROM weeks
		WHERE is_finalized = TRUE
		ORDER BY start_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*Week
	for rows.Next() {
		w, err := r.scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weeks: %w", err)
	}
	return weeks, nil
}

// Finalize marks an open week finalized. Already finalized weeks are left untouched.
func (r *Repository) Finalize(ctx context.Context, id string, at time.Time) (*Week, error) {
	query := `
		UPDATE weeks
		SET is_finalized = TRUE, finalized_at = $2, updated_at = NOW()
		WHERE id = $1 AND is_finalized = FALSE
		RETURNING ` + weekColumns

	w, err := r.scanWeek(r.db.QueryRowContext(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("failed to finalize week: %w", err)
	}
	return w, nil
}

// WithTx runs fn inside a transaction on the repository's database
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
	return database.WithTx(ctx, r.db, fn)
}

// LockByID retrieves a week and holds its row lock until tx ends
func (r *Repository) LockByID(ctx context.Context, tx database.DBTX, id string) (*Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1 FOR UPDATE`

	w, err := r.scanWeek(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock week: %w", err)
	}
	return w, nil
}

// CountOrders returns how many orders belong to the week
func (r *Repository) CountOrders(ctx context.Context, tx database.DBTX, id string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE week_id = $1`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CountPayments returns how many payment rows reference the week
func (r *Repository) CountPayments(ctx context.Context, tx database.DBTX, id string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM payments WHERE week_id = $1`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// Delete removes a week
func (r *Repository) Delete(ctx context.Context, tx database.DBTX, id string) error {
	query := `DELETE FROM weeks WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete week: %w", err)
	}
	return nil
}

// BumpOrdersVersion invalidates cached aggregates of a week. It runs inside
// the caller's order transaction.
func BumpOrdersVersion(ctx context.Context, tx database.DBTX, id string) error {
	query := `UPDATE weeks SET orders_version = orders_version + 1, updated_at = NOW() WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to bump orders version: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanWeek(row rowScanner) (*Week, error) {
	w := &Week{}
	if err := row.Scan(
		&w.ID,
		&w.StartDate,
		&w.EndDate,
		&w.Name,
		&w.IsFinalized,
		&w.FinalizedAt,
		&w.OrdersVersion,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.localize(w)
	return w, nil
}

func (r *Repository) localize(w *Week) {
	w.StartDate = w.StartDate.In(r.loc)
	w.EndDate = w.EndDate.In(r.loc)
}
