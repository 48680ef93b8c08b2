package repository

import (
	"context"

	"telegram-store-consultant/internal/domain/model"
)

// OrderRepository persists checkout results. SaveGroup must be
// all-or-nothing: either every order row of the group lands or none do.
type OrderRepository interface {
	SaveGroup(ctx context.Context, qx any, g *model.OrderGroup) error
	FindGroup(ctx context.Context, qx any, groupID string) (*model.OrderGroup, error)
	ListByUser(ctx context.Context, qx any, userID int64) ([]*model.Order, error)
}
