package stats

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/studycolab/groupstudy-platform/pkg/http/errors"
)

// HTTPHandler exposes the stats engine operations over REST.
type HTTPHandler struct {
	engine *Engine
	logger zerolog.Logger
}

func NewHTTPHandler(engine *Engine, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		engine: engine,
		logger: logger.With().Str("component", "stats_http").Logger(),
	}
}

// HandleInit creates a zeroed stats record.
// Route: POST /v1/stats/init
func (h *HTTPHandler) HandleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "email is required", "email")
		return
	}

	rec, err := h.engine.InitializeStats(r.Context(), req.Email, req.Name)
	if err != nil {
		h.logger.Error().Err(err).Str("email", req.Email).Msg("stats init failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsInitFailed, "could not initialize stats")
		return
	}
	writeJSON(w, rec)
}

// HandleGet returns one stats record.
// Route: GET /v1/stats/{email}
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.PathValue("email")
	if email == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "email is required", "email")
		return
	}

	rec, err := h.engine.GetUserStats(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeStatsNotFound, "Stats not found")
			return
		}
		h.logger.Error().Err(err).Str("email", email).Msg("stats fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not load stats")
		return
	}
	writeJSON(w, rec)
}

// HandleGraderUpdate applies grading points outside the grading flow.
// Route: PUT /v1/stats/grader
func (h *HTTPHandler) HandleGraderUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ExaminerEmail string `json:"examinerEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.ExaminerEmail == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "examinerEmail is required", "examinerEmail")
		return
	}

	outcome, err := h.engine.UpdateGraderStats(r.Context(), req.ExaminerEmail)
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeStatsNotFound, "Stats not found")
			return
		}
		h.logger.Error().Err(err).Str("email", req.ExaminerEmail).Msg("grader stats update failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsUpdateFailed, "could not update grader stats")
		return
	}
	writeJSON(w, outcome)
}

// HandleMonthlyReset triggers the monthly reset. Intended caller is an
// external scheduler.
// Route: POST /v1/stats/reset-monthly
func (h *HTTPHandler) HandleMonthlyReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.engine.ResetMonthlyPoints(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("monthly reset failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeResetFailed, "could not reset monthly points")
		return
	}
	writeJSON(w, map[string]any{
		"message":    "Monthly points reset successful",
		"usersReset": summary.UsersReset,
		"winners":    summary.Winners,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
