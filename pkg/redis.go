package pkg

import (
	"apiflow"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisDisabled = errors.New("redis client not configured")

// RedisStore is a JSON value store over a Redis client.
type RedisStore struct {
	Client *redis.Client
}

// NewRedisStore uses the process-wide Redis client.
func NewRedisStore() *RedisStore {
	return &RedisStore{Client: apiflow.Redis}
}

// Set stores a value with a TTL. The value is JSON-serialized; a zero TTL
// keeps the key until it is overwritten.
func (slf *RedisStore) Set(key string, value any, ttl time.Duration) error {
	if slf.Client == nil {
		return ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return slf.Client.Set(ctx, key, data, ttl).Err()
}

// Get retrieves a value and JSON-deserializes it into dest.
// Returns redis.Nil if the key does not exist.
func (slf *RedisStore) Get(key string, dest any) error {
	if slf.Client == nil {
		return ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := slf.Client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// IsRedisNil returns true if the error is a redis key-not-found error.
func IsRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
