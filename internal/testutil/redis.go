//go:build integration

package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the test Redis address. ADINCONF_TEST_REDIS
// overrides the localhost default.
func RedisAddr() string {
	if addr := os.Getenv("ADINCONF_TEST_REDIS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// RequireRedis skips the test when the test Redis is unreachable.
func RequireRedis(t *testing.T) string {
	t.Helper()

	addr := RedisAddr()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	return addr
}

// FlushKeys deletes all keys under the given prefix, for isolating
// integration runs on a shared Redis.
func FlushKeys(t *testing.T, addr, prefix string) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			t.Fatalf("scanning keys %s*: %v", prefix, err)
		}
		for _, key := range keys {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if err := client.Del(ctx, key).Err(); err != nil {
				t.Fatalf("deleting %s: %v", key, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
