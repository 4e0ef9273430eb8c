package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/studycolab/groupstudy-platform/internal/stats"
)

// StatsRepository owns the user_stats table. All increments happen inside
// single UPDATE statements so concurrent deltas on one key never lose
// updates to read-modify-write races.
type StatsRepository struct {
	db querier
}

// NewStatsRepository wraps a pgx pool (or compatible querier).
func NewStatsRepository(db querier) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ stats.Store = (*StatsRepository)(nil)

const statsColumns = `user_email, user_name, points, monthly_points,
	assignments_completed, assignments_graded, perfect_scores, current_streak,
	last_activity_date, achievements, last_month_reset, rank, created_at`

// Get fetches one stats record by email.
func (r *StatsRepository) Get(ctx context.Context, email string) (stats.UserStats, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+statsColumns+` FROM user_stats WHERE user_email = $1`, email)
	rec, err := scanStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats.UserStats{}, stats.ErrStatsNotFound
		}
		return stats.UserStats{}, fmt.Errorf("get user stats: %w", err)
	}
	return rec, nil
}

// CreateIfAbsent inserts a zeroed record with rank "Novice" unless one
// already exists, and returns whichever row won. The no-op DO UPDATE makes
// the statement return the existing row in the same round trip, so at most
// one record per key is ever visible regardless of racing callers.
func (r *StatsRepository) CreateIfAbsent(ctx context.Context, email, name string) (stats.UserStats, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_stats (user_email, user_name, rank, last_activity_date, last_month_reset)
		VALUES ($1, $2, 'Novice', now(), now())
		ON CONFLICT (user_email) DO UPDATE SET user_email = excluded.user_email
		RETURNING `+statsColumns, email, name)
	rec, err := scanStats(row)
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("create user stats: %w", err)
	}
	return rec, nil
}

// ApplyDelta applies one scoring delta as a single atomic statement.
// Achievement records whose id already exists on the row are filtered out
// inside the UPDATE, which also closes the concurrent double-grant window.
func (r *StatsRepository) ApplyDelta(ctx context.Context, email string, delta stats.Delta) (stats.UserStats, error) {
	unlocked := delta.Achievements
	if unlocked == nil {
		unlocked = []stats.AchievementRecord{}
	}
	achJSON, err := json.Marshal(unlocked)
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("encode achievements: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE user_stats SET
			points = points + $2,
			monthly_points = monthly_points + $3,
			assignments_completed = assignments_completed + $4,
			assignments_graded = assignments_graded + $5,
			perfect_scores = perfect_scores + $6,
			current_streak = COALESCE($7, current_streak),
			last_activity_date = CASE WHEN $8 THEN now() ELSE last_activity_date END,
			achievements = achievements || COALESCE(
				(SELECT jsonb_agg(elem) FROM jsonb_array_elements($9::jsonb) AS elem
				 WHERE NOT achievements @> jsonb_build_array(jsonb_build_object('id', elem->>'id'))),
				'[]'::jsonb)
		WHERE user_email = $1
		RETURNING `+statsColumns,
		email,
		delta.Points,
		delta.MonthlyPoints,
		delta.AssignmentsCompleted,
		delta.AssignmentsGraded,
		delta.PerfectScores,
		delta.NewStreak,
		delta.TouchActivity,
		achJSON,
	)
	rec, err := scanStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats.UserStats{}, stats.ErrStatsNotFound
		}
		return stats.UserStats{}, fmt.Errorf("apply stats delta: %w", err)
	}
	return rec, nil
}

// ListAll returns every stats record in insertion order, which keeps rank
// ties stable across repeated reads.
func (r *StatsRepository) ListAll(ctx context.Context) ([]stats.UserStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+statsColumns+` FROM user_stats ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list user stats: %w", err)
	}
	defer rows.Close()
	return collectStats(rows)
}

// TopByPoints returns the top N records by all-time points.
func (r *StatsRepository) TopByPoints(ctx context.Context, limit int) ([]stats.UserStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+statsColumns+` FROM user_stats
		 ORDER BY points DESC, created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top by points: %w", err)
	}
	defer rows.Close()
	return collectStats(rows)
}

// TopByMonthlyPoints returns the top N records by monthly points.
func (r *StatsRepository) TopByMonthlyPoints(ctx context.Context, limit int) ([]stats.UserStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+statsColumns+` FROM user_stats
		 ORDER BY monthly_points DESC, created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top by monthly points: %w", err)
	}
	defer rows.Close()
	return collectStats(rows)
}

// ResetAllMonthly zeroes monthly points for every user and stamps the reset
// time, as one statement. Racing deltas serialize row-by-row against it and
// land before or after, never lost.
func (r *StatsRepository) ResetAllMonthly(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_stats SET monthly_points = 0, last_month_reset = $1`, now)
	if err != nil {
		return 0, fmt.Errorf("reset monthly points: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanStats(row rowScanner) (stats.UserStats, error) {
	var rec stats.UserStats
	var achievements []byte
	if err := row.Scan(
		&rec.UserEmail,
		&rec.UserName,
		&rec.Points,
		&rec.MonthlyPoints,
		&rec.AssignmentsCompleted,
		&rec.AssignmentsGraded,
		&rec.PerfectScores,
		&rec.CurrentStreak,
		&rec.LastActivityDate,
		&achievements,
		&rec.LastMonthReset,
		&rec.Rank,
		&rec.CreatedAt,
	); err != nil {
		return stats.UserStats{}, err
	}
	if len(achievements) > 0 {
		if err := json.Unmarshal(achievements, &rec.Achievements); err != nil {
			return stats.UserStats{}, fmt.Errorf("decode achievements: %w", err)
		}
	}
	if rec.Achievements == nil {
		rec.Achievements = []stats.AchievementRecord{}
	}
	return rec, nil
}

func collectStats(rows pgx.Rows) ([]stats.UserStats, error) {
	var out []stats.UserStats
	for rows.Next() {
		rec, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
