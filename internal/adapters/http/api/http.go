// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrufbot/wruf/internal/domain/model"
	"github.com/wrufbot/wruf/pkg/metrics"
)

// Dependencies is what the handlers need from the application layer. An
// interface bundle keeps this package decoupled from the session package's
// concrete type.
type Dependencies interface {
	Analyze(ctx context.Context, content []byte, mediaType, userID, displayName string) (model.Report, error)
	Average(ctx context.Context, userID string) (float64, error)
	Leaderboard(ctx context.Context, limit int) ([]model.Entry, error)
	ClearScores(ctx context.Context) error
	ClearLedger(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Fetcher downloads submitted media by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	analyzeHandler     *AnalyzeHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	adminHandler       *AdminHandler
	healthHandler      *HealthHandler
}

// ServerConfig carries the handler-level knobs.
type ServerConfig struct {
	MaxLeaderboardLimit int
	AdminToken          string
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, fetcher Fetcher, cfg ServerConfig) *Server {
	return &Server{
		analyzeHandler:     NewAnalyzeHandler(deps, fetcher),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.MaxLeaderboardLimit),
		adminHandler:       NewAdminHandler(deps, cfg.AdminToken),
		healthHandler:      NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandlePostAnalyze, "analyze"))
	mux.HandleFunc("/score/", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/admin/", MetricsMiddleware(s.adminHandler.HandleAdmin, "admin"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
