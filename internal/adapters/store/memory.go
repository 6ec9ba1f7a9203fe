package store

import (
	"context"
	"sync"
	"time"

	"github.com/wrufbot/wruf/pkg/metrics"
)

// MemoryStore implements Store in process memory. Useful for tests and
// single-replica deployments without a Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sums     map[string]int64
	counts   map[string]int64
	averages map[string]float64
	ranked   *rankedIndex
	ledger   map[string]struct{}
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRankSeed sets the treap priority seed, making tree shape reproducible.
func WithRankSeed(seed int64) Option {
	return func(s *MemoryStore) {
		s.ranked = newRankedIndex(seed)
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sums:     make(map[string]int64),
		counts:   make(map[string]int64),
		averages: make(map[string]float64),
		ranked:   newRankedIndex(time.Now().UnixNano()),
		ledger:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSubmission implements Aggregator. The whole read-modify-write runs
// under one lock so concurrent submissions for the same user never lose an
// update.
func (s *MemoryStore) RecordSubmission(ctx context.Context, userID string, earned int) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sums[userID] += int64(earned)
	s.counts[userID]++
	avg := ScaledAverage(s.sums[userID], s.counts[userID])

	old, had := s.averages[userID]
	s.averages[userID] = avg
	s.ranked.upsert(userID, avg, old, had)

	metrics.UpdateTrackedUsers(len(s.averages))
	return nil
}

// Average implements Aggregator. Unknown users read as 0.0.
func (s *MemoryStore) Average(ctx context.Context, userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.averages[userID], nil
}

// Ranked implements Aggregator.
func (s *MemoryStore) Ranked(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.ranked.entries()
	assignRanks(entries)
	return entries, nil
}

// Count implements Aggregator.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.averages), nil
}

// ClearScores implements Aggregator.
func (s *MemoryStore) ClearScores(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sums = make(map[string]int64)
	s.counts = make(map[string]int64)
	s.averages = make(map[string]float64)
	s.ranked.clear()
	metrics.UpdateTrackedUsers(0)
	return nil
}

// Contains implements Ledger.
func (s *MemoryStore) Contains(ctx context.Context, fp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ledger[fp]
	return ok, nil
}

// Add implements Ledger. Idempotent.
func (s *MemoryStore) Add(ctx context.Context, fp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger[fp] = struct{}{}
	metrics.UpdateLedgerSize(int64(len(s.ledger)))
	return nil
}

// Size implements Ledger.
func (s *MemoryStore) Size(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.ledger)), nil
}

// ClearLedger implements Ledger.
func (s *MemoryStore) ClearLedger(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = make(map[string]struct{})
	metrics.UpdateLedgerSize(0)
	return nil
}

// ClearAll implements Store.
func (s *MemoryStore) ClearAll(ctx context.Context) error {
	if err := s.ClearScores(ctx); err != nil {
		return err
	}
	return s.ClearLedger(ctx)
}

// Close implements Store. Nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}
