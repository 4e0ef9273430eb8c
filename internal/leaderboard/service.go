package leaderboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/stats"
)

// Windows served by the leaderboard.
const (
	WindowAllTime = "alltime"
	WindowMonthly = "monthly"
)

const defaultLimit = 10

// Entry represents a ranked leaderboard record sent to clients.
type Entry struct {
	Rank                 int    `json:"rank"`
	UserEmail            string `json:"userEmail"`
	UserName             string `json:"userName"`
	Points               int    `json:"points"`
	MonthlyPoints        int    `json:"monthlyPoints"`
	AssignmentsCompleted int    `json:"assignmentsCompleted"`
	AssignmentsGraded    int    `json:"assignmentsGraded"`
	PerfectScores        int    `json:"perfectScores"`
	CurrentStreak        int    `json:"currentStreak"`
}

// statsReader is the slice of the stats store the leaderboard reads from.
type statsReader interface {
	TopByPoints(ctx context.Context, limit int) ([]stats.UserStats, error)
	TopByMonthlyPoints(ctx context.Context, limit int) ([]stats.UserStats, error)
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN int
}

// Service serves ranked read-only projections over the stats store, with a
// short-TTL Redis cache in front. Entries may be a little stale; writers
// never invalidate, the TTL does.
type Service struct {
	store  statsReader
	cache  *Cache
	logger zerolog.Logger
	topN   int
}

// NewService constructs a leaderboard service. cache may be nil.
func NewService(store statsReader, cache *Cache, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "leaderboard").Logger(),
		topN:   topN,
	}
}

// Top returns the top N users by all-time points.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	return s.window(ctx, WindowAllTime, limit, s.store.TopByPoints)
}

// MonthlyTop returns the top N users by monthly points.
func (s *Service) MonthlyTop(ctx context.Context, limit int) ([]Entry, error) {
	return s.window(ctx, WindowMonthly, limit, s.store.TopByMonthlyPoints)
}

func (s *Service) window(ctx context.Context, window string, limit int, fetch func(context.Context, int) ([]stats.UserStats, error)) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = defaultLimit
	}

	key := fmt.Sprintf("lb:%s:%d", window, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("window", window).Msg("leaderboard cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	records, err := fetch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s leaderboard: %w", window, err)
	}

	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, Entry{
			Rank:                 i + 1,
			UserEmail:            rec.UserEmail,
			UserName:             rec.UserName,
			Points:               rec.Points,
			MonthlyPoints:        rec.MonthlyPoints,
			AssignmentsCompleted: rec.AssignmentsCompleted,
			AssignmentsGraded:    rec.AssignmentsGraded,
			PerfectScores:        rec.PerfectScores,
			CurrentStreak:        rec.CurrentStreak,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries); err != nil {
			s.logger.Warn().Err(err).Str("window", window).Msg("leaderboard cache write failed")
		}
	}
	return entries, nil
}
