// Package store persists per-user score state and the content ledger.
package store

import (
	"context"

	"github.com/wrufbot/wruf/internal/domain/model"
)

// Entry is one ranked leaderboard row.
type Entry = model.Entry

// Aggregator folds per-submission scores into a per-user scaled average and
// keeps a ranked index of all users by that average.
//
// The scaled average is (score_sum / submission_count) * (1 + submission_count/100).
// The multiplier applies uniformly, negative sums included, so a prolific
// user with a negative raw mean is pushed further below zero.
type Aggregator interface {
	// RecordSubmission adds earned to the user's score sum, increments their
	// submission count, recomputes the scaled average and upserts the ranked
	// index, all as one atomic unit. A user with no prior record starts from
	// sum=0, count=0.
	RecordSubmission(ctx context.Context, userID string, earned int) error

	// Average returns the stored scaled average for the user, or 0.0 if the
	// user has never submitted. This reads the cached value; it never
	// recomputes from raw submissions.
	Average(ctx context.Context, userID string) (float64, error)

	// Ranked returns every user ordered by scaled average, descending.
	Ranked(ctx context.Context) ([]Entry, error)

	// Count returns the number of users with a score record.
	Count(ctx context.Context) (int, error)

	// ClearScores removes all score records and the ranked index.
	ClearScores(ctx context.Context) error
}

// Ledger records fingerprints of already-processed content.
type Ledger interface {
	// Contains reports whether the fingerprint has been recorded.
	Contains(ctx context.Context, fp string) (bool, error)

	// Add records the fingerprint. Adding an existing fingerprint is a no-op.
	Add(ctx context.Context, fp string) error

	// Size returns the number of recorded fingerprints.
	Size(ctx context.Context) (int64, error)

	// ClearLedger removes all recorded fingerprints.
	ClearLedger(ctx context.Context) error
}

// Store combines score aggregation and the content ledger over one backend.
type Store interface {
	Aggregator
	Ledger

	// ClearAll wipes scores and ledger in one administrative reset.
	ClearAll(ctx context.Context) error

	Close() error
}

// ScaledAverage computes the leaderboard metric from a score sum and a
// submission count. count must be >= 1; callers only reach this after an
// increment.
func ScaledAverage(sum, count int64) float64 {
	return (float64(sum) / float64(count)) * (1 + float64(count)/100)
}

// assignRanks fills in Rank on entries already sorted by average descending.
// Equal averages share a rank; ranks stay consecutive after a tie group.
func assignRanks(entries []Entry) {
	rank := 1
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].Average == entries[i].Average {
			entries[j].Rank = rank
			j++
		}
		rank++
		i = j
	}
}
