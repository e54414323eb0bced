package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/NALLOO/AnTruaNao-V2/internal/database"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

const userColumns = `id, name, email, created_at, updated_at`

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateMany inserts all members in one transaction
func (r *Repository) CreateMany(ctx context.Context, members []MemberInput) ([]*User, error) {
	query := `
		INSERT INTO users (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	users := make([]*User, 0, len(members))
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		for _, m := range members {
			u, err := scanUser(tx.QueryRowContext(ctx, query, uuid.NewString(), m.Name, m.Email))
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create users: %w", err)
	}

	return users, nil
}

// Create inserts a single member
func (r *Repository) Create(ctx context.Context, name string) (*User, error) {
	query := `
		INSERT INTO users (id, name)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, uuid.NewString(), name))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByName retrieves a user by exact name
func (r *Repository) GetByName(ctx context.Context, name string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	return u, nil
}

// FindByNameInsensitive retrieves a user whose name equals name ignoring case
func (r *Repository) FindByNameInsensitive(ctx context.Context, name string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(name) = LOWER($1)
		ORDER BY created_at ASC
		LIMIT 1
	`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	return u, nil
}

// FindByNames returns the users whose name is one of names
func (r *Repository) FindByNames(ctx context.Context, names []string) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = ANY($1) ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to find users by name: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// List retrieves all users ordered by name
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ListStats retrieves every user with their order-line count and lifetime total
func (r *Repository) ListStats(ctx context.Context) ([]*Stat, error) {
	query := `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at,
		       COUNT(oi.id), COALESCE(SUM(oi.final_price), 0)
		FROM users u
		LEFT JOIN order_items oi ON oi.user_id = u.id
		GROUP BY u.id
		ORDER BY COUNT(oi.id) DESC, u.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stats: %w", err)
	}
	defer rows.Close()

	var stats []*Stat
	for rows.Next() {
		s := &Stat{}
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Email,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.OrderCount,
			&s.TotalAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user stat: %w", err)
		}
		s.TotalAmount = money.Round2(s.TotalAmount)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user stats: %w", err)
	}

	return stats, nil
}

// Update modifies an existing user's name and email. When renamed is set,
// every week holding order lines for the user gets its orders version bumped
// in the same transaction, so cached week totals carrying the old name are
// no longer served.
func (r *Repository) Update(ctx context.Context, id string, req *UpdateUserRequest, renamed bool) (*User, error) {
	query := `
		UPDATE users
		SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	bump := `
		UPDATE weeks
		SET orders_version = orders_version + 1
		WHERE id IN (
			SELECT o.week_id
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE oi.user_id = $1
		)`

	var u *User
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		var err error
		u, err = scanUser(tx.QueryRowContext(ctx, query, id, req.Name, req.Email))
		if err != nil {
			return err
		}
		if !renamed {
			return nil
		}
		if _, err := tx.ExecContext(ctx, bump, id); err != nil {
			return fmt.Errorf("failed to bump week versions: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// CountOrderItems returns how many order lines reference the user
func (r *Repository) CountOrderItems(ctx context.Context, id string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM order_items WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}

// CountPayments returns how many payment rows reference the user
func (r *Repository) CountPayments(ctx context.Context, id string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM payments WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// Delete removes a user
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]*User, error) {
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
