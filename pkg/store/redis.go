package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// RedisConfig configures a Redis-backed store.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string // optional
	DB       int    // database number
	Key      string // storage key; DefaultKey when empty
}

// RedisStore persists the diagram under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}, nil
}

// Load retrieves the stored diagram.
func (s *RedisStore) Load(ctx context.Context) (diagram.Diagram, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return diagram.Diagram{}, false, nil
	}
	if err != nil {
		return diagram.Diagram{}, false, errors.Wrap(errors.ErrCodeStore, err, "get %s", s.key)
	}
	return decode(data)
}

// Save stores the diagram without expiration.
func (s *RedisStore) Save(ctx context.Context, d diagram.Diagram) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "set %s", s.key)
	}
	return nil
}

// Delete removes the stored diagram.
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "del %s", s.key)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
