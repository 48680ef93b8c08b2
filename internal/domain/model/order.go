package model

import (
	"fmt"
	"time"
)

type OrderStatus string

// Statuses match what the storefront shows to managers.
const (
	OrderStatusPending   OrderStatus = "Ожидание"
	OrderStatusConfirmed OrderStatus = "Подтверждён"
	OrderStatusDone      OrderStatus = "Выполнен"
	OrderStatusCancelled OrderStatus = "Отменён"
)

// Order is one persisted row: one per cart line item, not one per checkout.
type Order struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"group_id"`
	UserID      int64       `json:"user_id"`
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	Color       string      `json:"color,omitempty"`
	Size        string      `json:"size,omitempty"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderGroup is one checkout: a batch of orders sharing a group identifier,
// plus the delivery details captured once for the whole batch.
type OrderGroup struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Delivery    bool      `json:"delivery"`
	Address     string    `json:"address,omitempty"`
	Orders      []Order   `json:"orders"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewOrderGroup expands a cart into per-line-item orders under one group id.
func NewOrderGroup(groupID string, cart *Cart, profile *CustomerProfile, delivery bool, address string) *OrderGroup {
	now := time.Now()
	g := &OrderGroup{
		ID:        groupID,
		UserID:    cart.UserID,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		Delivery:  delivery,
		Address:   address,
		CreatedAt: now,
	}
	for i, it := range cart.Items {
		g.Orders = append(g.Orders, Order{
			ID:          fmt.Sprintf("%s-%d", groupID, i+1),
			GroupID:     groupID,
			UserID:      cart.UserID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Color:       it.Color,
			Size:        it.Size,
			Total:       it.Total,
			Status:      OrderStatusPending,
			CreatedAt:   now,
		})
		g.TotalAmount += it.Total
	}
	return g
}
