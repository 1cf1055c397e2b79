package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisStore implements Persistence on Redis, one key per cart slice,
// namespaced by session so multiple carts can share one instance.
type redisStore struct {
	client  *redis.Client
	session string
	logger  zerolog.Logger
}

// NewRedisStore creates a Redis-backed persistence port for the given
// session. It verifies connectivity with a ping.
func NewRedisStore(ctx context.Context, addr, password string, db int, session string, logger zerolog.Logger) (Persistence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Msg("redis cart store connected")

	return &redisStore{
		client:  client,
		session: session,
		logger:  logger.With().Str("component", "cart-redis-store").Logger(),
	}, nil
}

func (r *redisStore) redisKey(key string) string {
	return fmt.Sprintf("cart:%s:%s", r.session, key)
}

// Load reads the value stored under key. A missing key yields nil.
func (r *redisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read cart state from redis")
		return nil, fmt.Errorf("failed to read cart state %s: %w", key, err)
	}
	return data, nil
}

// Save stores the value under key with no expiry; carts survive until
// cleared.
func (r *redisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write cart state to redis")
		return fmt.Errorf("failed to write cart state %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key.
func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to delete cart state from redis")
		return fmt.Errorf("failed to delete cart state %s: %w", key, err)
	}
	return nil
}
