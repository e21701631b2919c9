package nonce

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:nonce:"

// RedisStore keeps nonces in Redis with native key expiry.
// Consume relies on GETDEL (Redis >= 6.2) for atomic single use.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, address, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+address, nonce, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save nonce")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, address string) (string, error) {
	n, err := s.client.Get(ctx, keyPrefix+address).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "failed to get nonce")
	}
	return n, nil
}

func (s *RedisStore) Consume(ctx context.Context, address string) (string, error) {
	n, err := s.client.GetDel(ctx, keyPrefix+address).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "failed to consume nonce")
	}
	return n, nil
}

func (s *RedisStore) Delete(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, keyPrefix+address).Err(); err != nil {
		return errors.Wrap(err, "failed to delete nonce")
	}
	return nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx).Err(), "redis ping failed")
}
