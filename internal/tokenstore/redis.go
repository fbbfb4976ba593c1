package tokenstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the record as JSON under "<prefix><key>" without TTL; the
// refresh token usually outlives the access token expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store. Empty prefix/key use defaults.
func NewRedisStore(client *redis.Client, prefix, key string) *RedisStore {
	if prefix == "" {
		prefix = "authwidget:"
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: prefix + key}
}

func (s *RedisStore) Get(ctx context.Context) (*Record, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return absentOnCorrupt("redis", s.key, b), nil
}

func (s *RedisStore) Set(ctx context.Context, r Record) error {
	b, err := encodeRecord(r)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, b, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
