package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/auth"
	"github.com/studycolab/groupstudy-platform/internal/stats"
	httperrors "github.com/studycolab/groupstudy-platform/pkg/http/errors"
)

// Repository is the persistence contract for submissions.
type Repository interface {
	Create(ctx context.Context, s Submission) (Submission, error)
	Get(ctx context.Context, id uuid.UUID) (Submission, error)
	List(ctx context.Context) ([]Submission, error)
	ListByUser(ctx context.Context, email string) ([]Submission, error)
	ApplyGrade(ctx context.Context, id uuid.UUID, g Grade) (Submission, error)
}

// HTTPHandler exposes submission endpoints, including the grading commit
// that feeds the stats engine.
type HTTPHandler struct {
	repo   Repository
	engine *stats.Engine
	logger zerolog.Logger
}

func NewHTTPHandler(repo Repository, engine *stats.Engine, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		repo:   repo,
		engine: engine,
		logger: logger.With().Str("component", "submission_http").Logger(),
	}
}

// HandleCollection serves the submission collection.
// Routes: POST /v1/submissions, GET /v1/submissions
func (h *HTTPHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleListByUser lists one user's submissions. Only the owner of the email
// may read them.
// Route: GET /v1/submissions/user/{email}
func (h *HTTPHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.PathValue("email")
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.Email != email {
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "forbidden access")
		return
	}

	recs, err := h.repo.ListByUser(r.Context(), email)
	if err != nil {
		h.logger.Error().Err(err).Str("email", email).Msg("submission list failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not list submissions")
		return
	}
	if recs == nil {
		recs = []Submission{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleGrade commits a grading decision onto a submission, then runs the
// stats engine for both the student and the examiner.
// Route: PUT /v1/submissions/{id}/grade
func (h *HTTPHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid submission id")
		return
	}

	var req struct {
		Status        string      `json:"status"`
		ExaminerEmail string      `json:"examinerEmail"`
		ExaminerName  string      `json:"examinerName"`
		ObtainedMarks json.Number `json:"obtainedMarks"`
		Feedback      string      `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.ExaminerEmail == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "examinerEmail is required", "examinerEmail")
		return
	}
	obtained, err := strconv.Atoi(req.ObtainedMarks.String())
	if err != nil || obtained < 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidMarks, "obtainedMarks must be a non-negative number", "obtainedMarks")
		return
	}
	status := req.Status
	if status == "" {
		status = StatusCompleted
	}

	updated, err := h.repo.ApplyGrade(r.Context(), id, Grade{
		Status:        status,
		ExaminerEmail: req.ExaminerEmail,
		ExaminerName:  req.ExaminerName,
		ObtainedMarks: obtained,
		Feedback:      req.Feedback,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeSubmissionNotFound, "submission not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("grade commit failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeGradeFailed, "could not commit grade")
		return
	}

	result, err := h.engine.GradeSubmission(r.Context(), stats.GradingEvent{
		SubmissionID:  updated.ID,
		ObtainedMarks: obtained,
		MaxMarks:      updated.Marks,
		ExaminerEmail: req.ExaminerEmail,
		ExaminerName:  req.ExaminerName,
		StudentEmail:  updated.UserEmail,
		StudentName:   updated.UserName,
	})
	if err != nil {
		// The grade itself is committed; only the scoring side failed.
		h.logger.Error().Err(err).Str("id", id.String()).Msg("stats update failed after grade commit")
		if errors.Is(err, stats.ErrStatsNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeStatsNotFound, "Stats not found")
			return
		}
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsUpdateFailed, "could not update stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"submission": updated,
		"student":    result.Student,
		"examiner":   result.Examiner,
	})
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssignmentID    uuid.UUID `json:"assignmentId"`
		AssignmentTitle string    `json:"assignmentTitle"`
		Marks           int       `json:"marks"`
		UserEmail       string    `json:"userEmail"`
		UserName        string    `json:"userName"`
		GoogleDocsURL   string    `json:"googleDocsUrl"`
		Note            string    `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.UserEmail == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "userEmail is required", "userEmail")
		return
	}

	rec, err := h.repo.Create(r.Context(), Submission{
		AssignmentID:    req.AssignmentID,
		AssignmentTitle: req.AssignmentTitle,
		Marks:           req.Marks,
		UserEmail:       req.UserEmail,
		UserName:        req.UserName,
		GoogleDocsURL:   req.GoogleDocsURL,
		Note:            req.Note,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("submission create failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not create submission")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("submission list failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not list submissions")
		return
	}
	if recs == nil {
		recs = []Submission{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
