package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

// SessionStore keeps consultant sessions as JSON blobs with a TTL, so
// abandoned dialogues expire instead of growing for the process lifetime.
var _ repository.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionStore(client RedisClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("consultant_session:%d", userID)
}

func (s *SessionStore) Get(ctx context.Context, userID int64) (*model.ConsultantSession, error) {
	data, err := s.client.Get(ctx, sessionKey(userID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var sess model.ConsultantSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *model.ConsultantSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sess.UserID), data, s.ttl)
}

func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, sessionKey(userID))
}
