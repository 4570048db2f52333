package models

import "time"

// RetailProduct is a product offered by a retailer in the shopping tools.
type RetailProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	URL      string  `json:"url,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Retailer string  `json:"retailer,omitempty"`
	InStock  bool    `json:"in_stock"`
}

// CartItem is a line in a shopping cart.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Cart is a per-session shopping cart keyed by ID.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartSummary is the short cart view returned by mutating cart operations.
type CartSummary struct {
	ID        string  `json:"id"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

// Summary returns the short view of c.
func (c *Cart) Summary() CartSummary {
	return CartSummary{ID: c.ID, ItemCount: c.ItemCount, Total: c.Total}
}

// Order statuses returned by checkout.
const (
	OrderCompleted = "completed"
	OrderError     = "error"
)

// Order is the result of a mock checkout. OrderID is nil when the checkout
// failed.
type Order struct {
	OrderID *string    `json:"order_id"`
	CartID  string     `json:"cart_id"`
	Status  string     `json:"status"`
	Total   float64    `json:"total"`
	Items   []CartItem `json:"items"`
	Message string     `json:"message"`
}
