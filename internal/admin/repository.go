package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const adminColumns = `id, user_name, password_hash, created_at, updated_at`

// Repository handles admin data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new admin repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserName retrieves an admin by login name
func (r *Repository) GetByUserName(ctx context.Context, userName string) (*Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE user_name = $1`
	return r.getOne(ctx, query, userName)
}

// GetByID retrieves an admin by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// Upsert creates the admin or replaces its password hash
func (r *Repository) Upsert(ctx context.Context, userName, passwordHash string) (*Admin, error) {
	query := `
		INSERT INTO admins (id, user_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_name)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING ` + adminColumns

	a := &Admin{}
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), userName, passwordHash).Scan(
		&a.ID, &a.UserName, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert admin: %w", err)
	}
	return a, nil
}

func (r *Repository) getOne(ctx context.Context, query string, arg string) (*Admin, error) {
	a := &Admin{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.UserName, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}
