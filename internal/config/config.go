// Package config defines service configuration structures and loading.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisURL selects the Redis backend, e.g. "redis://localhost:6379/0".
	// Empty means the in-memory store.
	RedisURL string `koanf:"redis_url"`

	// GeminiAPIKey authenticates against the scoring oracle.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel overrides the oracle model name.
	GeminiModel string `koanf:"gemini_model"`

	// RubricPrompt overrides the built-in scoring rubric when non-empty.
	RubricPrompt string `koanf:"rubric_prompt"`

	// AllowDuplicate lets identical content be scored more than once.
	AllowDuplicate bool `koanf:"allow_duplicate"`

	// AdminToken authorizes the destructive /admin endpoints. Empty disables
	// them entirely.
	AdminToken string `koanf:"admin_token"`

	// MediaTypes lists the accepted media kinds.
	MediaTypes []string `koanf:"media_types"`

	// FetchTimeoutMS bounds a single content download.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// MaxContentBytes caps the downloaded payload size.
	MaxContentBytes int64 `koanf:"max_content_bytes"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New builds a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":8080",
		RedisURL:       "",
		GeminiModel:    "gemini-2.0-flash-exp",
		AllowDuplicate: true,
		MediaTypes: []string{
			"image/png", "image/jpeg", "image/webp", "image/heic", "image/heif",
		},
		FetchTimeoutMS:      30_000,
		MaxContentBytes:     25 << 20,
		MaxLeaderboardLimit: 100,
	}
}
