package order

import "time"

// Order is one group purchase inside a week
type Order struct {
	ID          string    `json:"id"`
	WeekID      string    `json:"week_id"`
	Description string    `json:"description"`
	TotalAmount float64   `json:"total_amount"`
	Discount    float64   `json:"discount"`
	FinalAmount float64   `json:"final_amount"`
	OrderDate   time.Time `json:"order_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Items       []*Item   `json:"items,omitempty"`
}

// Item is one payer's share of one dish
type Item struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"order_id"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	Position      int     `json:"position"`
	ItemName      string  `json:"item_name"`
	Price         float64 `json:"price"`
	DiscountShare float64 `json:"discount_share"`
	FinalPrice    float64 `json:"final_price"`
}
