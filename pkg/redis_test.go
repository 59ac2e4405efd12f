package pkg

import (
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_WithoutClient(t *testing.T) {
	store := &RedisStore{}

	assert.ErrorIs(t, store.Set("k", "v", time.Minute), ErrRedisDisabled)
	var dest string
	assert.ErrorIs(t, store.Get("k", &dest), ErrRedisDisabled)
}

func TestIsRedisNil(t *testing.T) {
	assert.True(t, IsRedisNil(redis.Nil))
	assert.True(t, IsRedisNil(fmt.Errorf("lookup: %w", redis.Nil)))
	assert.False(t, IsRedisNil(ErrRedisDisabled))
}
