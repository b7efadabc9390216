package redis_utils_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brokerage/src/config"
	redis "brokerage/src/utils/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleData struct {
	Name  string
	Age   int
	Email string
}

func newTestHandler(t *testing.T) *redis.RedisHandler {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join("..", "..", "..", "settings"), "TESTING")
	require.NoError(t, err)
	if !cfg.Databases.Redis.Enabled() {
		t.Skip("redis not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	handler, err := redis.NewRedisHandler(ctx, cfg.Databases.Redis)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = handler.Close() })
	return handler
}

func TestRedisHandler(t *testing.T) {
	handler := newTestHandler(t)
	ctx := context.Background()
	key := "test_key_" + os.Getenv("USER")
	expiration := 10 * time.Second
	defer handler.Delete(ctx, key)

	t.Run("Set and Get with string", func(t *testing.T) {
		require.NoError(t, handler.Set(ctx, key, "test_value", expiration))

		var got string
		require.NoError(t, handler.Get(ctx, key, &got))
		assert.Equal(t, "test_value", got)
	})

	t.Run("Set and Get with struct", func(t *testing.T) {
		value := sampleData{Name: "Ada", Age: 36, Email: "ada@example.com"}
		require.NoError(t, handler.Set(ctx, key, value, expiration))

		var got sampleData
		require.NoError(t, handler.Get(ctx, key, &got))
		assert.Equal(t, value, got)
	})

	t.Run("Exists and Delete", func(t *testing.T) {
		require.NoError(t, handler.Set(ctx, key, 1, expiration))
		exists, err := handler.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, handler.Delete(ctx, key))
		exists, err = handler.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)

		var got int
		assert.ErrorIs(t, handler.Get(ctx, key, &got), redis.ErrKeyNotFound)
	})
}
