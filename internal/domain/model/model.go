// Package model contains domain models passed between layers.
package model

// Analysis is the structured result returned by the scoring oracle.
type Analysis struct {
	// Score is the rubric score, nominally in [-100, 100]. The core accepts
	// any integer; range enforcement is the oracle's business.
	Score int `json:"score"`

	// Rationale is the oracle's free-text reasoning for the score.
	Rationale string `json:"analysis"`

	// Positives and Negatives list the factors that moved the score.
	Positives []string `json:"positives"`
	Negatives []string `json:"negatives"`
}

// Report bundles the outcome of one scoring session. Formatting it into
// user-visible text is the caller's job.
type Report struct {
	ID          string   // unique per-session report id
	UserID      string   // submitter identity
	DisplayName string   // submitter display name, passed through untouched
	Fingerprint string   // content fingerprint recorded in the ledger
	Score       int      // raw score earned by this submission
	Rationale   string   // oracle rationale text
	Positives   []string // positive factors
	Negatives   []string // negative factors
	OldAverage  float64  // scaled average before this submission
	NewAverage  float64  // scaled average after this submission
}

// Entry is one leaderboard row: a user and their scaled average, rank 1 being
// the highest average.
type Entry struct {
	Rank    int     `json:"rank"`
	UserID  string  `json:"user_id"`
	Average float64 `json:"average"`
}
