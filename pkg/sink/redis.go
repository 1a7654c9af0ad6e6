package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

const (
	// keyPrefix namespaces all harness keys in a shared Redis.
	keyPrefix = "adinconf"

	// historyLimit caps the per-suite run history list.
	historyLimit = 100
)

// RedisStore publishes reports to Redis so a fleet of bench hosts can
// collect results centrally. Each run is stored under a timestamped key,
// the latest report is mirrored at a stable key, and a capped list keeps
// the run history per suite.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store for the given Redis address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

// Connect tests the connection.
func (s *RedisStore) Connect(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Store publishes a finalized report. Returns the run key it was stored
// under.
func (s *RedisStore) Store(ctx context.Context, report *conformance.Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	runKey := fmt.Sprintf("%s:run:%s:%s", keyPrefix, report.Suite,
		report.GeneratedAt.UTC().Format(time.RFC3339))
	latestKey := fmt.Sprintf("%s:latest:%s", keyPrefix, report.Suite)
	historyKey := fmt.Sprintf("%s:history:%s", keyPrefix, report.Suite)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, runKey, data, 0)
	pipe.Set(ctx, latestKey, data, 0)
	pipe.LPush(ctx, historyKey, runKey)
	pipe.LTrim(ctx, historyKey, 0, historyLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing report: %w", err)
	}
	return runKey, nil
}

// Latest fetches the most recent report for a suite. Returns (nil, nil)
// when no report has been stored yet.
func (s *RedisStore) Latest(ctx context.Context, suite string) (*conformance.Report, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("%s:latest:%s", keyPrefix, suite)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report conformance.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding stored report: %w", err)
	}
	return &report, nil
}

// History returns the run keys recorded for a suite, newest first.
func (s *RedisStore) History(ctx context.Context, suite string) ([]string, error) {
	return s.client.LRange(ctx, fmt.Sprintf("%s:history:%s", keyPrefix, suite), 0, -1).Result()
}

// Fetch loads the report stored under a specific run key. Returns
// (nil, nil) when the key does not exist.
func (s *RedisStore) Fetch(ctx context.Context, runKey string) (*conformance.Report, error) {
	data, err := s.client.Get(ctx, runKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report conformance.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding stored report: %w", err)
	}
	return &report, nil
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
