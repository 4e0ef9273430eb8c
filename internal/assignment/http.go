package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/studycolab/groupstudy-platform/pkg/http/errors"
)

// Repository is the persistence contract for assignments.
type Repository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	Get(ctx context.Context, id uuid.UUID) (Assignment, error)
	List(ctx context.Context, f Filter) ([]Assignment, error)
	Update(ctx context.Context, a Assignment) (Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HTTPHandler exposes assignment CRUD and browse endpoints.
type HTTPHandler struct {
	repo   Repository
	logger zerolog.Logger
}

func NewHTTPHandler(repo Repository, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		repo:   repo,
		logger: logger.With().Str("component", "assignment_http").Logger(),
	}
}

type assignmentRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Marks           int       `json:"marks"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DifficultyLevel string    `json:"difficultyLevel"`
	DueDate         time.Time `json:"dueDate"`
	CreatorEmail    string    `json:"creatorEmail"`
	CreatorName     string    `json:"creatorName"`
}

// HandleCollection serves the assignment collection.
// Routes: POST /v1/assignments, GET /v1/assignments?search=&difficulty=
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

// HandleItem serves a single assignment.
// Routes: GET/PUT/DELETE /v1/assignments/{id}
func (h *HTTPHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid assignment id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "title is required", "title")
		return
	}
	if req.Marks <= 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidMarks, "marks must be positive", "marks")
		return
	}

	rec, err := h.repo.Create(r.Context(), Assignment{
		Title:           req.Title,
		Description:     req.Description,
		Marks:           req.Marks,
		ThumbnailURL:    req.ThumbnailURL,
		DifficultyLevel: req.DifficultyLevel,
		DueDate:         req.DueDate,
		CreatorEmail:    req.CreatorEmail,
		CreatorName:     req.CreatorName,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("assignment create failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not create assignment")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Search:          r.URL.Query().Get("search"),
		DifficultyLevel: r.URL.Query().Get("difficulty"),
	}
	recs, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("assignment list failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not list assignments")
		return
	}
	if recs == nil {
		recs = []Assignment{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeAssignmentNotFound, "assignment not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("assignment fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not load assignment")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	rec, err := h.repo.Update(r.Context(), Assignment{
		ID:              id,
		Title:           req.Title,
		Description:     req.Description,
		Marks:           req.Marks,
		ThumbnailURL:    req.ThumbnailURL,
		DifficultyLevel: req.DifficultyLevel,
		DueDate:         req.DueDate,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeAssignmentNotFound, "assignment not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("assignment update failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not update assignment")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeAssignmentNotFound, "assignment not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("assignment delete failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStorageError, "could not delete assignment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
