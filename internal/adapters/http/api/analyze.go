package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	session "github.com/wrufbot/wruf/internal/app"
	"github.com/wrufbot/wruf/pkg/logger"
)

// analyzeRequest is the POST /analyze body.
type analyzeRequest struct {
	ImageURL    string `json:"image_url"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Deep        bool   `json:"deep"`
}

func (r analyzeRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ImageURL) == "":
		return errors.New("missing image_url")
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("missing user_id")
	}
	return nil
}

// analyzeResponse is the report shape returned to the command surface, which
// owns all presentation beyond this.
type analyzeResponse struct {
	ID         string   `json:"id"`
	Score      int      `json:"score"`
	Rationale  string   `json:"rationale,omitempty"`
	Positives  []string `json:"positives"`
	Negatives  []string `json:"negatives"`
	OldAverage float64  `json:"old_average"`
	NewAverage float64  `json:"new_average"`
}

// AnalyzeHandler handles scoring requests.
type AnalyzeHandler struct {
	deps    Dependencies
	fetcher Fetcher
	logger  logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies, fetcher Fetcher) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, fetcher: fetcher, logger: logger.Named("api")}
}

// HandlePostAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandlePostAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	content, mediaType, err := h.fetcher.Fetch(r.Context(), req.ImageURL)
	if err != nil {
		h.logger.Error(r.Context(), "content fetch failed",
			logger.String("url", req.ImageURL),
			logger.Error(err),
		)
		writeError(w, http.StatusBadGateway, "fetch_failed", nil)
		return
	}

	report, err := h.deps.Analyze(r.Context(), content, mediaType, req.UserID, req.DisplayName)
	if err != nil {
		// User mistakes echo back verbatim; anything else logs with detail
		// and surfaces generically.
		if session.IsUserInput(err) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_input", err)
			return
		}
		h.logger.Error(r.Context(), "scoring session failed",
			logger.String("user", req.UserID),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	resp := analyzeResponse{
		ID:         report.ID,
		Score:      report.Score,
		Positives:  report.Positives,
		Negatives:  report.Negatives,
		OldAverage: report.OldAverage,
		NewAverage: report.NewAverage,
	}
	if req.Deep {
		resp.Rationale = report.Rationale
	}
	writeJSON(w, http.StatusOK, resp)
}
