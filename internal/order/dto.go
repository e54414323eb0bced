package order

import (
	"time"

	"github.com/NALLOO/AnTruaNao-V2/internal/order/split"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// DishRequest is one dish and the members sharing it
type DishRequest struct {
	ItemName string   `json:"item_name" validate:"max=200"`
	Price    float64  `json:"price"`
	UserIDs  []string `json:"user_ids"`
}

// OrderRequest represents the request body for creating or replacing an order
type OrderRequest struct {
	WeekID      string        `json:"week_id" validate:"max=64"`
	Description string        `json:"description" validate:"max=500"`
	FinalAmount float64       `json:"final_amount"`
	Dishes      []DishRequest `json:"dishes" validate:"dive"`
}

// ToDishes converts the request dishes to split calculator input
func (r *OrderRequest) ToDishes() []split.Dish {
	dishes := make([]split.Dish, len(r.Dishes))
	for i, d := range r.Dishes {
		payers := make([]split.Payer, len(d.UserIDs))
		for j, id := range d.UserIDs {
			payers[j] = split.Payer{UserID: id}
		}
		dishes[i] = split.Dish{ItemName: d.ItemName, Price: d.Price, Payers: payers}
	}
	return dishes
}

// ItemResponse represents an order line in API responses
type ItemResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	ItemName      string  `json:"item_name"`
	Price         float64 `json:"price"`
	DiscountShare float64 `json:"discount_share"`
	FinalPrice    float64 `json:"final_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                   string          `json:"id"`
	WeekID               string          `json:"week_id"`
	Description          string          `json:"description"`
	TotalAmount          float64         `json:"total_amount"`
	Discount             float64         `json:"discount"`
	FinalAmount          float64         `json:"final_amount"`
	FormattedFinalAmount string          `json:"formatted_final_amount"`
	OrderDate            string          `json:"order_date"`
	Items                []*ItemResponse `json:"items"`
}

// ToResponse converts an Order model to an OrderResponse DTO
func (o *Order) ToResponse() *OrderResponse {
	items := make([]*ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = &ItemResponse{
			ID:            it.ID,
			UserID:        it.UserID,
			UserName:      it.UserName,
			ItemName:      it.ItemName,
			Price:         it.Price,
			DiscountShare: it.DiscountShare,
			FinalPrice:    it.FinalPrice,
		}
	}

	return &OrderResponse{
		ID:                   o.ID,
		WeekID:               o.WeekID,
		Description:          o.Description,
		TotalAmount:          o.TotalAmount,
		Discount:             o.Discount,
		FinalAmount:          o.FinalAmount,
		FormattedFinalAmount: money.FormatVND(o.FinalAmount),
		OrderDate:            o.OrderDate.Format(time.RFC3339),
		Items:                items,
	}
}
