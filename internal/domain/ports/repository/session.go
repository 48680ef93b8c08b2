package repository

import (
	"context"

	"telegram-store-consultant/internal/domain/model"
)

// SessionStore holds per-user conversation state under a TTL so memory
// stays bounded even for abandoned dialogues.
type SessionStore interface {
	// Get returns domain.ErrNotFound when the user has no live session.
	Get(ctx context.Context, userID int64) (*model.ConsultantSession, error)

	Save(ctx context.Context, s *model.ConsultantSession) error

	Delete(ctx context.Context, userID int64) error
}
