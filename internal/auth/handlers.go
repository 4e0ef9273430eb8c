package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/auth/jwt"
	httperrors "github.com/studycolab/groupstudy-platform/pkg/http/errors"
)

// HTTPHandlers exchanges a client-asserted identity for a first-party JWT
// and clears it on logout. Identity verification itself happens in the web
// client's auth provider; this boundary only signs and verifies tokens.
type HTTPHandlers struct {
	mgr        *jwt.Manager
	production bool
	logger     zerolog.Logger
}

func NewHTTPHandlers(mgr *jwt.Manager, env string, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		mgr:        mgr,
		production: env == "production",
		logger:     logger.With().Str("component", "auth_http").Logger(),
	}
}

// Token mints an access token and sets it as an httpOnly cookie.
// Route: POST /v1/auth/token
func (h *HTTPHandlers) Token(w http.ResponseWriter, r *http.Request) {
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

	token, err := h.mgr.Generate(jwt.Identity{Email: req.Email, Name: req.Name})
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		httperrors.RespondInternalError(w, "could not issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.mgr.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: h.sameSite(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "token": token})
}

// Logout clears the token cookie.
// Route: POST /v1/auth/logout
func (h *HTTPHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: h.sameSite(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// Cross-site cookies need SameSite=None in production where the SPA is
// served from another origin; strict works for local development.
func (h *HTTPHandlers) sameSite() http.SameSite {
	if h.production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}
