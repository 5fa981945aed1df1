package tokenstore

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"campusbuzz/internal/models"
)

const redisTokenKey = "campusbuzz:access_token"

// RedisStore keeps the token in Redis under a single fixed key. No TTL is
// set; expiry is carried inside the JWT itself.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr, which may be a host:port pair or a
// redis:// URL.
func NewRedisStore(addr string) (*RedisStore, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, models.NewStorageUnavailableError(err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreWithClient wraps an existing client. Tests use this with
// miniredis.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, redisTokenKey, token, 0).Err(); err != nil {
		return models.NewStorageUnavailableError(err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, redisTokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", models.NewStorageUnavailableError(err)
	}
	return val, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisTokenKey).Err(); err != nil {
		return models.NewStorageUnavailableError(err)
	}
	return nil
}
