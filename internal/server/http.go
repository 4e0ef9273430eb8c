package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/assignment"
	"github.com/studycolab/groupstudy-platform/internal/auth"
	"github.com/studycolab/groupstudy-platform/internal/config"
	"github.com/studycolab/groupstudy-platform/internal/leaderboard"
	"github.com/studycolab/groupstudy-platform/internal/stats"
	"github.com/studycolab/groupstudy-platform/internal/submission"
)

// Handlers bundles the route handlers the server mounts.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Assignments *assignment.HTTPHandler
	Submissions *submission.HTTPHandler
	Stats       *stats.HTTPHandler
	Leaderboard *leaderboard.HTTPHandler
	// AuthWrap injects verified claims; applied to every /v1 route.
	AuthWrap func(http.Handler) http.Handler
}

// NewHTTPServer wires all routes (health, metrics, API) for the service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	public := func(handler http.HandlerFunc) http.Handler {
		return h.AuthWrap(handler)
	}
	protected := func(handler http.HandlerFunc) http.Handler {
		return h.AuthWrap(auth.RequireAuth(handler))
	}

	// Auth endpoints
	mux.Handle("/v1/auth/token", public(h.Auth.Token))
	mux.Handle("/v1/auth/logout", public(h.Auth.Logout))

	// Assignment browse is public; writes happen through the same collection
	// handler and stay public-read/auth-write at the handler level, matching
	// the original surface where creation required a token.
	mux.Handle("GET /v1/assignments", public(h.Assignments.HandleCollection))
	mux.Handle("POST /v1/assignments", protected(h.Assignments.HandleCollection))
	mux.Handle("GET /v1/assignments/{id}", public(h.Assignments.HandleItem))
	mux.Handle("PUT /v1/assignments/{id}", protected(h.Assignments.HandleItem))
	mux.Handle("DELETE /v1/assignments/{id}", protected(h.Assignments.HandleItem))

	// Submissions
	mux.Handle("/v1/submissions", protected(h.Submissions.HandleCollection))
	mux.Handle("/v1/submissions/user/{email}", protected(h.Submissions.HandleListByUser))
	mux.Handle("/v1/submissions/{id}/grade", protected(h.Submissions.HandleGrade))

	// Stats engine
	mux.Handle("/v1/stats/init", protected(h.Stats.HandleInit))
	mux.Handle("/v1/stats/grader", protected(h.Stats.HandleGraderUpdate))
	mux.Handle("/v1/stats/reset-monthly", protected(h.Stats.HandleMonthlyReset))
	mux.Handle("/v1/stats/{email}", protected(h.Stats.HandleGet))

	// Leaderboards are public read views.
	mux.Handle("/v1/leaderboards/alltime", public(h.Leaderboard.HandleAllTime))
	mux.Handle("/v1/leaderboards/monthly", public(h.Leaderboard.HandleMonthly))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// corsMiddleware applies the configured CORS policy. The browser client runs
// on a different origin and sends the token cookie, so credentials matter.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
