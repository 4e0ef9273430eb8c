package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/assignment"
	"github.com/studycolab/groupstudy-platform/internal/auth"
	"github.com/studycolab/groupstudy-platform/internal/auth/jwt"
	"github.com/studycolab/groupstudy-platform/internal/config"
	"github.com/studycolab/groupstudy-platform/internal/db/repository"
	"github.com/studycolab/groupstudy-platform/internal/leaderboard"
	"github.com/studycolab/groupstudy-platform/internal/logging"
	"github.com/studycolab/groupstudy-platform/internal/server"
	"github.com/studycolab/groupstudy-platform/internal/stats"
	"github.com/studycolab/groupstudy-platform/internal/submission"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	resetWorker *stats.ResetWorker
	bgCancels   []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	statsRepo := repository.NewStatsRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	tokenMgr := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		TTL:    cfg.Security.TokenTTL,
		Issuer: cfg.Name,
	})
	authHandlers := auth.NewHTTPHandlers(tokenMgr, cfg.Env, logger)

	catalog := stats.NewCatalog()
	engine := stats.NewEngine(statsRepo, catalog, stats.DefaultPolicy(), logger)

	lbCache := leaderboard.NewCache(redisClient, cfg.Leaderboard.CacheTTL)
	lbService := leaderboard.NewService(statsRepo, lbCache, logger, leaderboard.ServiceOptions{
		TopN: cfg.Leaderboard.TopN,
	})

	handlers := server.Handlers{
		Auth:        authHandlers,
		Assignments: assignment.NewHTTPHandler(assignmentRepo, logger),
		Submissions: submission.NewHTTPHandler(submissionRepo, engine, logger),
		Stats:       stats.NewHTTPHandler(engine, logger),
		Leaderboard: leaderboard.NewHTTPHandler(lbService, logger),
		AuthWrap:    auth.Middleware(tokenMgr, logger),
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, handlers)

	var resetWorker *stats.ResetWorker
	if interval := cfg.Stats.MonthlyResetInterval; interval > 0 {
		resetWorker = stats.NewResetWorker(engine, interval, logger)
		logger.Info().Dur("interval", interval).Msg("in-process monthly reset worker enabled")
	}

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		resetWorker: resetWorker,
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.resetWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.resetWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("monthly reset worker stopped")
			}
		}()
	}
}
