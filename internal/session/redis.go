package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cartKeyPrefix   = "session:cart:"
	buyNowKeyPrefix = "session:buy_now:"
)

// redisStore keeps sessions in Redis as JSON values with a sliding TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed session store and verifies the
// connection.
func NewRedisStore(ctx context.Context, opts *redis.Options, ttl time.Duration, logger zerolog.Logger) (Store, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("redis session store connected")

	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_redis").Logger(),
	}, nil
}

func (s *redisStore) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("session get error")
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable session value")
		return false, nil
	}
	return true, nil
}

func (s *redisStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("session set error")
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *redisStore) del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("session delete error")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *redisStore) GetCart(ctx context.Context, id string) (model.Cart, error) {
	cart := model.Cart{}
	if _, err := s.get(ctx, cartKeyPrefix+id, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *redisStore) SaveCart(ctx context.Context, id string, cart model.Cart) error {
	return s.set(ctx, cartKeyPrefix+id, cart, s.ttl)
}

func (s *redisStore) ClearCart(ctx context.Context, id string) error {
	return s.del(ctx, cartKeyPrefix+id)
}

func (s *redisStore) GetBuyNow(ctx context.Context, id string) (*model.BuyNow, error) {
	var payload model.BuyNow
	ok, err := s.get(ctx, buyNowKeyPrefix+id, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return &payload, nil
}

// SetBuyNow stores payload until its own expiry when that comes before the
// session TTL.
func (s *redisStore) SetBuyNow(ctx context.Context, id string, payload *model.BuyNow) error {
	ttl := s.ttl
	if !payload.ExpiresAt.IsZero() {
		if until := time.Until(payload.ExpiresAt); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return s.del(ctx, buyNowKeyPrefix+id)
	}
	return s.set(ctx, buyNowKeyPrefix+id, payload, ttl)
}

func (s *redisStore) ClearBuyNow(ctx context.Context, id string) error {
	return s.del(ctx, buyNowKeyPrefix+id)
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
