package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrufbot/wruf/pkg/metrics"
)

// Redis key layout. Sums and counts live in hashes keyed by user id, the
// scaled averages in a sorted set, the ledger in a plain set.
const (
	keyScoreSums     = "wruf/score_sums"
	keyCounts        = "wruf/analysis_counts"
	keyAverages      = "wruf/average_scores"
	keyAnalyzedMedia = "wruf/analyzed_media"
)

// recordScript performs the full submission update server-side so the
// increment pair and the rank upsert are one atomic unit even across
// replicas. Lua numbers are doubles, so sum/count divides exactly as the
// Go side does.
var recordScript = redis.NewScript(`
local sum = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
local count = redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
local avg = (sum / count) * (1 + count / 100)
redis.call('ZADD', KEYS[3], avg, ARGV[1])
return redis.status_reply('OK')
`)

// RedisStore implements Store against a Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis at redisURL and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// RecordSubmission implements Aggregator via the Lua script.
func (s *RedisStore) RecordSubmission(ctx context.Context, userID string, earned int) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(time.Since(start).Seconds())
	}()

	keys := []string{keyScoreSums, keyCounts, keyAverages}
	if err := recordScript.Run(ctx, s.client, keys, userID, earned).Err(); err != nil {
		return fmt.Errorf("record submission for %s: %w", userID, err)
	}
	return nil
}

// Average implements Aggregator. A missing member reads as 0.0.
func (s *RedisStore) Average(ctx context.Context, userID string) (float64, error) {
	avg, err := s.client.ZScore(ctx, keyAverages, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read average for %s: %w", userID, err)
	}
	return avg, nil
}

// Ranked implements Aggregator via a full descending range over the sorted
// set. Exact ties enumerate in the zset's native order (reverse
// lexicographical by user id).
func (s *RedisStore) Ranked(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(time.Since(start).Seconds())
	}()

	members, err := s.client.ZRevRangeWithScores(ctx, keyAverages, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]Entry, len(members))
	for i, m := range members {
		id, _ := m.Member.(string)
		entries[i] = Entry{UserID: id, Average: m.Score}
	}
	assignRanks(entries)
	return entries, nil
}

// Count implements Aggregator.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, keyAverages).Result()
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

// ClearScores implements Aggregator.
func (s *RedisStore) ClearScores(ctx context.Context) error {
	if err := s.client.Del(ctx, keyScoreSums, keyCounts, keyAverages).Err(); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	metrics.UpdateTrackedUsers(0)
	return nil
}

// Contains implements Ledger.
func (s *RedisStore) Contains(ctx context.Context, fp string) (bool, error) {
	seen, err := s.client.SIsMember(ctx, keyAnalyzedMedia, fp).Result()
	if err != nil {
		return false, fmt.Errorf("ledger check: %w", err)
	}
	return seen, nil
}

// Add implements Ledger. SADD is a no-op for present members.
func (s *RedisStore) Add(ctx context.Context, fp string) error {
	if err := s.client.SAdd(ctx, keyAnalyzedMedia, fp).Err(); err != nil {
		return fmt.Errorf("ledger add: %w", err)
	}
	return nil
}

// Size implements Ledger.
func (s *RedisStore) Size(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, keyAnalyzedMedia).Result()
	if err != nil {
		return 0, fmt.Errorf("ledger size: %w", err)
	}
	return n, nil
}

// ClearLedger implements Ledger.
func (s *RedisStore) ClearLedger(ctx context.Context) error {
	if err := s.client.Del(ctx, keyAnalyzedMedia).Err(); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	metrics.UpdateLedgerSize(0)
	return nil
}

// ClearAll implements Store with a whole-namespace flush, matching the
// administrative "clear everything" reset.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("flush db: %w", err)
	}
	metrics.UpdateTrackedUsers(0)
	metrics.UpdateLedgerSize(0)
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
