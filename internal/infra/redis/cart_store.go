package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

const cartIdleIndex = "cart_idle_index"

// CartStore keeps carts as JSON blobs with a TTL plus a sorted-set index
// of last-touch timestamps, so the reminder worker can find idle carts
// without scanning keys.
var _ repository.CartStore = (*CartStore)(nil)

type CartStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewCartStore(client RedisClient, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *CartStore) Get(ctx context.Context, userID int64) (*model.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(userID))
	if err != nil {
		if IsNil(err) {
			return model.NewCart(userID), nil
		}
		return nil, err
	}
	var cart model.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.UserID), data, s.ttl); err != nil {
		return err
	}
	member := strconv.FormatInt(cart.UserID, 10)
	if cart.IsEmpty() || !cart.RemindedAt.IsZero() {
		return s.client.ZRem(ctx, cartIdleIndex, member)
	}
	return s.client.ZAdd(ctx, cartIdleIndex, float64(cart.UpdatedAt.Unix()), member)
}

func (s *CartStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, cartKey(userID)); err != nil {
		return err
	}
	return s.client.ZRem(ctx, cartIdleIndex, strconv.FormatInt(userID, 10))
}

func (s *CartStore) ListIdle(ctx context.Context, idleFor time.Duration, limit int) ([]*model.Cart, error) {
	cutoff := time.Now().Add(-idleFor).Unix()
	members, err := s.client.ZRangeByScore(ctx, cartIdleIndex, "-inf", strconv.FormatInt(cutoff, 10), int64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Cart, 0, len(members))
	for _, m := range members {
		userID, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		cart, err := s.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart.IsEmpty() {
			// blob expired while still indexed
			_ = s.client.ZRem(ctx, cartIdleIndex, m)
			continue
		}
		out = append(out, cart)
	}
	return out, nil
}
