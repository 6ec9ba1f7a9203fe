package api

import (
	"net/http"
	"strings"
)

// scoreResponse is the GET /score/{user_id} body.
type scoreResponse struct {
	UserID  string  `json:"user_id"`
	Average float64 `json:"average"`
}

// ScoreHandler handles single-user score reads.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleGetScore handles GET /score/{user_id} requests. Unknown users read
// as average 0.0, mirroring the aggregator contract.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/score/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	avg, err := h.deps.Average(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{UserID: userID, Average: avg})
}
