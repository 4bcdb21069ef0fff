package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/redis"
)

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionRecordKey(kind, sessionID string) string
}

// RedisStore keeps session records in Redis with a sliding TTL. Abandoned
// sessions expire on their own; logout purges eagerly.
type RedisStore struct {
	backend redisBackend
	ttl     time.Duration
}

// NewRedisStore builds the store with the configured record TTL.
func NewRedisStore(client *redis.Client, cfg config.SessionConfig) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &RedisStore{backend: client, ttl: ttl}, nil
}

func (s *RedisStore) Put(ctx context.Context, kind, sessionID string, value []byte) error {
	if kind == "" || sessionID == "" {
		return fmt.Errorf("kind and session id are required")
	}
	key := s.backend.SessionRecordKey(kind, sessionID)
	return s.backend.Set(ctx, key, value, s.ttl)
}

func (s *RedisStore) Get(ctx context.Context, kind, sessionID string) ([]byte, bool, error) {
	if kind == "" || sessionID == "" {
		return nil, false, fmt.Errorf("kind and session id are required")
	}
	key := s.backend.SessionRecordKey(kind, sessionID)
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *RedisStore) Delete(ctx context.Context, kind, sessionID string) error {
	if kind == "" || sessionID == "" {
		return fmt.Errorf("kind and session id are required")
	}
	return s.backend.Del(ctx, s.backend.SessionRecordKey(kind, sessionID))
}

// Purge removes every record kind owned by the session.
func (s *RedisStore) Purge(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	keys := make([]string, 0, len(RecordKinds))
	for _, kind := range RecordKinds {
		keys = append(keys, s.backend.SessionRecordKey(kind, sessionID))
	}
	return s.backend.Del(ctx, keys...)
}
