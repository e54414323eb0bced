package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/NALLOO/AnTruaNao-V2/internal/database"
	"github.com/NALLOO/AnTruaNao-V2/internal/order/split"
)

const orderColumns = `id, week_id, description, total_amount, discount, final_amount, order_date, created_at, updated_at`

// pqForeignKeyViolation is the Postgres SQLSTATE for a broken reference
const pqForeignKeyViolation = "23503"

// Repository handles order data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new order repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes an order header
func (r *Repository) Insert(ctx context.Context, tx database.DBTX, weekID, description string, res *split.Result) (*Order, error) {
	query := `
		INSERT INTO orders (id, week_id, description, total_amount, discount, final_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRowContext(ctx, query,
		uuid.NewString(), weekID, description, res.TotalAmount, res.Discount, res.FinalAmount,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return o, nil
}

// Update rewrites an order header
func (r *Repository) Update(ctx context.Context, tx database.DBTX, id, weekID, description string, res *split.Result) (*Order, error) {
	query := `
		UPDATE orders
		SET week_id = $2, description = $3, total_amount = $4, discount = $5,
		    final_amount = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRowContext(ctx, query,
		id, weekID, description, res.TotalAmount, res.Discount, res.FinalAmount,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}

// InsertItems writes one row per split line, keeping line order in position
func (r *Repository) InsertItems(ctx context.Context, tx database.DBTX, orderID string, lines []split.SplitLine) ([]*Item, error) {
	query := `
		INSERT INTO order_items (id, order_id, user_id, position, item_name, price, discount_share, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	items := make([]*Item, 0, len(lines))
	for i, l := range lines {
		item := &Item{
			ID:            uuid.NewString(),
			OrderID:       orderID,
			UserID:        l.UserID,
			UserName:      l.UserName,
			Position:      i,
			ItemName:      l.ItemName,
			Price:         l.Price,
			DiscountShare: l.DiscountShare,
			FinalPrice:    l.FinalPrice,
		}
		if _, err := tx.ExecContext(ctx, query,
			item.ID, item.OrderID, item.UserID, item.Position,
			item.ItemName, item.Price, item.DiscountShare, item.FinalPrice,
		); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
				return nil, fmt.Errorf("%w: %s", ErrUnknownUser, l.UserID)
			}
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteItems removes every line of an order
func (r *Repository) DeleteItems(ctx context.Context, tx database.DBTX, orderID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	return nil
}

// Delete removes an order; its lines cascade
func (r *Repository) Delete(ctx context.Context, tx database.DBTX, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// LockByID retrieves an order header and locks it for the rest of the transaction
func (r *Repository) LockByID(ctx context.Context, tx database.DBTX, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	o, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// GetByID retrieves an order with its lines
func (r *Repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.listItems(ctx, `WHERE oi.order_id = $1 ORDER BY oi.position ASC`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListByWeek retrieves a week's orders, newest first, each with its lines
func (r *Repository) ListByWeek(ctx context.Context, weekID string) ([]*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE week_id = $1
		ORDER BY order_date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	byID := make(map[string]*Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.ListItemsByWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, nil
}

// ListItemsByWeek retrieves every line of a week in charge order: oldest order
// first, then line position
func (r *Repository) ListItemsByWeek(ctx context.Context, weekID string) ([]*Item, error) {
	return r.listItems(ctx, `
		JOIN orders o ON o.id = oi.order_id
		WHERE o.week_id = $1
		ORDER BY o.order_date ASC, o.created_at ASC, o.id ASC, oi.position ASC`, weekID)
}

func (r *Repository) listItems(ctx context.Context, tail string, arg any) ([]*Item, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.user_id, u.name, oi.position, oi.item_name,
		       oi.price, oi.discount_share, oi.final_price
		FROM order_items oi
		JOIN users u ON u.id = oi.user_id
		` + tail

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.UserID,
			&it.UserName,
			&it.Position,
			&it.ItemName,
			&it.Price,
			&it.DiscountShare,
			&it.FinalPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	if err := row.Scan(
		&o.ID,
		&o.WeekID,
		&o.Description,
		&o.TotalAmount,
		&o.Discount,
		&o.FinalAmount,
		&o.OrderDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return o, nil
}
