// README: Redis test helper; skipped unless QUOTE_TEST_REDIS_ADDR is set.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// SetupRedis connects to QUOTE_TEST_REDIS_ADDR and deletes the given keys before and after the test.
func SetupRedis(t *testing.T, keys ...string) *redis.Client {
	t.Helper()

	addr := os.Getenv("QUOTE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("QUOTE_TEST_REDIS_ADDR not set; skipping Redis-backed tests")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}
	if len(keys) > 0 {
		rdb.Del(ctx, keys...)
	}
	t.Cleanup(func() {
		if len(keys) > 0 {
			rdb.Del(context.Background(), keys...)
		}
		rdb.Close()
	})
	return rdb
}
