package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/wrufbot/wruf/pkg/logger"
)

// AdminHandler handles the destructive reset endpoints. Every operation is
// immediate; there is no confirmation step.
type AdminHandler struct {
	deps   Dependencies
	token  string
	logger logger.Logger
}

// NewAdminHandler creates a new admin handler. An empty token disables all
// admin routes.
func NewAdminHandler(deps Dependencies, token string) *AdminHandler {
	return &AdminHandler{deps: deps, token: token, logger: logger.Named("admin")}
}

type adminResponse struct {
	Status string `json:"status"`
}

// HandleAdmin handles POST /admin/{clear-scores|clear-ledger|clear-all}.
func (h *AdminHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	var err error
	op := strings.TrimPrefix(r.URL.Path, "/admin/")
	switch op {
	case "clear-scores":
		err = h.deps.ClearScores(r.Context())
	case "clear-ledger":
		err = h.deps.ClearLedger(r.Context())
	case "clear-all":
		err = h.deps.ClearAll(r.Context())
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "admin reset failed",
			logger.String("op", op),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	h.logger.Warn(r.Context(), "admin reset executed", logger.String("op", op))
	writeJSON(w, http.StatusOK, adminResponse{Status: "cleared"})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}
