package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// refreshScript extends the lock only if it still carries our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// RedisStore keeps every key under a common prefix in one Redis database.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }
func (s *RedisStore) Backend() string                { return "redis" }
func (s *RedisStore) Close() error                   { return s.client.Close() }

// Lock uses SET NX with an expiry so a crashed holder cannot block others forever.
func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	token := uuid.NewString()
	full := s.key(key)

	ok, err := s.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return &Lease{
		refresh: func(ctx context.Context) error {
			n, err := refreshScript.Run(ctx, s.client, []string{full}, token, ttl.Milliseconds()).Int()
			if err != nil {
				return fmt.Errorf("failed to refresh lock %s: %w", key, err)
			}
			if n == 0 {
				return ErrLocked
			}
			return nil
		},
		release: func(ctx context.Context) error {
			if err := releaseScript.Run(ctx, s.client, []string{full}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to release lock %s: %w", key, err)
			}
			return nil
		},
	}, nil
}
