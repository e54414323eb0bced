package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const notificationColumns = `id, txn_ref, outcome, reason, user_id, week_id, amount, payload, received_at`

// Repository handles notification log persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a notification into the log
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	query := `
		INSERT INTO payment_notifications (id, txn_ref, outcome, reason, user_id, week_id, amount, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING received_at
	`

	err = r.db.QueryRowContext(ctx, query,
		n.ID, n.TxnRef, string(n.Outcome), n.Reason, n.UserID, n.WeekID, n.Amount, string(payload),
	).Scan(&n.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List retrieves a page of the log, newest first, and the total row count
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Notification, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_notifications`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + `
		FROM payment_notifications
		ORDER BY received_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var (
			n       Notification
			outcome string
			payload []byte
		)
		if err := rows.Scan(&n.ID, &n.TxnRef, &outcome, &n.Reason, &n.UserID, &n.WeekID, &n.Amount, &payload, &n.ReceivedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Outcome = Outcome(outcome)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, 0, fmt.Errorf("failed to decode notification payload: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, total, nil
}
