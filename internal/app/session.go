// Package session orchestrates one end-to-end scoring request against the
// store and the external scoring oracle.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wrufbot/wruf/internal/adapters/store"
	"github.com/wrufbot/wruf/internal/domain/fingerprint"
	"github.com/wrufbot/wruf/internal/domain/model"
	"github.com/wrufbot/wruf/pkg/logger"
	"github.com/wrufbot/wruf/pkg/metrics"
)

// DefaultMediaTypes are the media kinds accepted for analysis.
var DefaultMediaTypes = []string{
	"image/png", "image/jpeg", "image/webp", "image/heic", "image/heif",
}

// Oracle scores a piece of media against the fixed rubric.
type Oracle interface {
	Analyze(ctx context.Context, content []byte, mediaType string) (model.Analysis, error)
}

// Session runs scoring requests. Safe for concurrent use; all shared state
// lives in the store.
type Session struct {
	store          store.Store
	oracle         Oracle
	allowDuplicate bool
	mediaTypes     map[string]struct{}
	logger         logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithAllowDuplicate controls whether previously analyzed content is scored
// again. The ledger is updated either way.
func WithAllowDuplicate(allow bool) Option {
	return func(s *Session) {
		s.allowDuplicate = allow
	}
}

// WithMediaTypes replaces the accepted media kinds.
func WithMediaTypes(types []string) Option {
	return func(s *Session) {
		if len(types) == 0 {
			return
		}
		s.mediaTypes = make(map[string]struct{}, len(types))
		for _, t := range types {
			s.mediaTypes[t] = struct{}{}
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Session over the given store and oracle.
func New(st store.Store, oracle Oracle, opts ...Option) *Session {
	s := &Session{
		store:  st,
		oracle: oracle,
		logger: logger.Named("session"),
	}
	WithMediaTypes(DefaultMediaTypes)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze scores one submission: validate the media kind, fingerprint the
// content, reject duplicates when configured to, invoke the oracle, fold the
// earned score into the submitter's record and finally mark the content seen.
// The ledger write happens only after a successful score record, so a failed
// oracle call leaves the same content retriable.
func (s *Session) Analyze(ctx context.Context, content []byte, mediaType, userID, displayName string) (model.Report, error) {
	if _, ok := s.mediaTypes[mediaType]; !ok {
		metrics.RecordSubmissionRejected("unsupported_media")
		return model.Report{}, fmt.Errorf("%w %q", ErrUnsupportedMedia, mediaType)
	}

	fp := fingerprint.Content(content)
	s.logger.Debug(ctx, "session started",
		logger.String("user", userID),
		logger.String("fingerprint", fp),
		logger.String("mediaType", mediaType),
	)

	if !s.allowDuplicate {
		seen, err := s.store.Contains(ctx, fp)
		if err != nil {
			return model.Report{}, fmt.Errorf("ledger lookup: %w", err)
		}
		if seen {
			metrics.RecordSubmissionDuplicate()
			s.logger.Info(ctx, "duplicate content rejected",
				logger.String("user", userID),
				logger.String("fingerprint", fp),
			)
			return model.Report{}, ErrAlreadyAnalyzed
		}
	}

	analysis, err := s.oracle.Analyze(ctx, content, mediaType)
	if err != nil {
		return model.Report{}, fmt.Errorf("oracle: %w", err)
	}

	oldAverage, err := s.store.Average(ctx, userID)
	if err != nil {
		return model.Report{}, fmt.Errorf("read old average: %w", err)
	}
	if err := s.store.RecordSubmission(ctx, userID, analysis.Score); err != nil {
		return model.Report{}, fmt.Errorf("record submission: %w", err)
	}
	newAverage, err := s.store.Average(ctx, userID)
	if err != nil {
		return model.Report{}, fmt.Errorf("read new average: %w", err)
	}

	// After the score is recorded, never before. A crash in between leaves
	// the content unmarked and retriable, which is the acceptable side.
	if err := s.store.Add(ctx, fp); err != nil {
		return model.Report{}, fmt.Errorf("ledger add: %w", err)
	}

	metrics.RecordSubmissionScored()
	s.logger.Info(ctx, "submission scored",
		logger.String("user", userID),
		logger.Int("score", analysis.Score),
		logger.Float64("oldAverage", oldAverage),
		logger.Float64("newAverage", newAverage),
	)

	return model.Report{
		ID:          uuid.New().String(),
		UserID:      userID,
		DisplayName: displayName,
		Fingerprint: fp,
		Score:       analysis.Score,
		Rationale:   analysis.Rationale,
		Positives:   analysis.Positives,
		Negatives:   analysis.Negatives,
		OldAverage:  oldAverage,
		NewAverage:  newAverage,
	}, nil
}

// Average returns the user's current scaled average, 0.0 when unknown.
func (s *Session) Average(ctx context.Context, userID string) (float64, error) {
	return s.store.Average(ctx, userID)
}

// Leaderboard returns up to limit ranked entries, all of them when limit <= 0.
func (s *Session) Leaderboard(ctx context.Context, limit int) ([]model.Entry, error) {
	entries, err := s.store.Ranked(ctx)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// ClearScores wipes every score record and the ranked index.
func (s *Session) ClearScores(ctx context.Context) error {
	s.logger.Warn(ctx, "clearing all score records")
	return s.store.ClearScores(ctx)
}

// ClearLedger wipes every recorded fingerprint.
func (s *Session) ClearLedger(ctx context.Context) error {
	s.logger.Warn(ctx, "clearing content ledger")
	return s.store.ClearLedger(ctx)
}

// ClearAll wipes scores and ledger together.
func (s *Session) ClearAll(ctx context.Context) error {
	s.logger.Warn(ctx, "clearing all state")
	return s.store.ClearAll(ctx)
}
