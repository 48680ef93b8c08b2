package repository

import (
	"context"
	"time"

	"telegram-store-consultant/internal/domain/model"
)

// CartStore keeps per-user pending line items. Carts are short-lived
// working state, not orders; implementations may expire them.
type CartStore interface {
	// Get returns an empty cart when the user has none.
	Get(ctx context.Context, userID int64) (*model.Cart, error)

	Save(ctx context.Context, cart *model.Cart) error

	Clear(ctx context.Context, userID int64) error

	// ListIdle returns non-empty carts untouched for at least idleFor that
	// have not been reminded about yet.
	ListIdle(ctx context.Context, idleFor time.Duration, limit int) ([]*model.Cart, error)
}
