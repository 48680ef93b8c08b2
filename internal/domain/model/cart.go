package model

import "time"

// CartItem is one fully specified line item. An item exists only after
// quantity and every variant dimension the product supports have been
// resolved; Total == Price * Quantity always holds.
type CartItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Color       string  `json:"color,omitempty"`
	ColorID     int64   `json:"color_id,omitempty"`
	Size        string  `json:"size,omitempty"`
	SizeID      int64   `json:"size_id,omitempty"`
	Total       float64 `json:"total"`
}

// NewCartItem builds a line item from a product and resolved variants,
// computing Total.
func NewCartItem(p *Product, quantity int, color Color, size Size) CartItem {
	return CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		Color:       color.Name,
		ColorID:     color.ID,
		Size:        size.Value,
		SizeID:      size.ID,
		Total:       p.Price * float64(quantity),
	}
}

// Cart holds the pending line items of one customer.
type Cart struct {
	UserID     int64      `json:"user_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
	RemindedAt time.Time  `json:"reminded_at,omitempty"`
}

func NewCart(userID int64) *Cart {
	return &Cart{UserID: userID, UpdatedAt: time.Now()}
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) Add(item CartItem) {
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	c.RemindedAt = time.Time{}
}

func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// TotalAmount sums line item totals.
func (c *Cart) TotalAmount() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Total
	}
	return sum
}
