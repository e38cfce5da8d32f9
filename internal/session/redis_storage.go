package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "bankterm:session:"
	keySeparator = ":"
	opTimeout    = 2 * time.Second
)

// RedisStorage keeps session items in Redis. Every write and every Touch
// refreshes the key TTL, so an abandoned session disappears once it has been
// idle for ttl.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage builds a Redis-backed storage with the given idle TTL.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

// GetItem reads a session item.
func (s *RedisStorage) GetItem(ctx context.Context, sessionID, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, redisKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem writes a session item and refreshes its TTL.
func (s *RedisStorage) SetItem(ctx context.Context, sessionID, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a session item.
func (s *RedisStorage) RemoveItem(ctx context.Context, sessionID, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Touch refreshes the TTL of the given keys. Missing keys are ignored.
func (s *RedisStorage) Touch(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Expire(ctx, redisKey(sessionID, key), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis expire session %s: %w", sessionID, err)
	}
	return nil
}

func redisKey(sessionID, key string) string {
	return keyPrefix + sessionID + keySeparator + key
}
