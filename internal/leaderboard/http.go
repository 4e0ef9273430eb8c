package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	httperrors "github.com/studycolab/groupstudy-platform/pkg/http/errors"
)

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleAllTime responds with the all-time leaderboard.
// Route: GET /v1/leaderboards/alltime?limit=10
func (h *HTTPHandler) HandleAllTime(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, WindowAllTime, h.svc.Top)
}

// HandleMonthly responds with the monthly leaderboard.
// Route: GET /v1/leaderboards/monthly?limit=10
func (h *HTTPHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, WindowMonthly, h.svc.MonthlyTop)
}

func (h *HTTPHandler) handle(w http.ResponseWriter, r *http.Request, window string, fetch func(ctx context.Context, limit int) ([]Entry, error)) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := fetch(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Str("window", window).Msg("leaderboard fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeLeaderboardFetchFailed, "could not fetch leaderboard")
		return
	}

	resp := map[string]any{
		"period":      window,
		"leaderboard": entries,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
