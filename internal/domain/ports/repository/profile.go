package repository

import (
	"context"

	"telegram-store-consultant/internal/domain/model"
)

// CustomerProfileRepository persists delivery details keyed by Telegram
// user id.
type CustomerProfileRepository interface {
	// Find returns domain.ErrNotFound when no row exists yet.
	Find(ctx context.Context, qx any, userID int64) (*model.CustomerProfile, error)

	// Save upserts the profile.
	Save(ctx context.Context, qx any, p *model.CustomerProfile) error
}
