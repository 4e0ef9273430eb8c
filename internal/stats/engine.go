package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studycolab/groupstudy-platform/internal/metrics"
)

// Store is the persistence contract the engine needs. Every method is a
// single round trip; ApplyDelta and CreateIfAbsent must be atomic per key.
type Store interface {
	Get(ctx context.Context, email string) (UserStats, error)
	CreateIfAbsent(ctx context.Context, email, name string) (UserStats, error)
	ApplyDelta(ctx context.Context, email string, delta Delta) (UserStats, error)
	ListAll(ctx context.Context) ([]UserStats, error)
	TopByMonthlyPoints(ctx context.Context, limit int) ([]UserStats, error)
	ResetAllMonthly(ctx context.Context, now time.Time) (int64, error)
}

// Engine converts grading events into point awards, streak updates,
// achievement unlocks and live ranks.
type Engine struct {
	store   Store
	catalog *Catalog
	policy  Policy
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEngine constructs the stats engine.
func NewEngine(store Store, catalog *Catalog, policy Policy, logger zerolog.Logger) *Engine {
	return &Engine{
		store:   store,
		catalog: catalog,
		policy:  policy,
		logger:  logger.With().Str("component", "stats_engine").Logger(),
		now:     time.Now,
	}
}

// GradeSubmission applies the downstream scoring effects of one committed
// grading decision: student side first, then examiner side. The two applies
// are independent atomic operations, not a joint transaction; a failure
// after the student commit surfaces the error with the student side kept.
func (e *Engine) GradeSubmission(ctx context.Context, event GradingEvent) (GradeResult, error) {
	if event.StudentEmail == "" || event.ExaminerEmail == "" {
		return GradeResult{}, ErrInvalidEvent
	}

	now := e.now()

	studentStats, err := e.store.CreateIfAbsent(ctx, event.StudentEmail, event.StudentName)
	if err != nil {
		return GradeResult{}, fmt.Errorf("ensure student stats: %w", err)
	}

	points, perfect, milestoneID := e.policy.SubmissionPoints(event.ObtainedMarks, event.MaxMarks, studentStats.PerfectScores)

	var unlocks []AchievementRecord
	if studentStats.AssignmentsCompleted == 0 {
		unlocks = e.appendUnlock(unlocks, studentStats, AchievementFirstSubmission)
	}
	if milestoneID != "" {
		unlocks = e.appendUnlock(unlocks, studentStats, milestoneID)
	}

	streak := UpdateStreak(studentStats, now, e.policy)
	for _, id := range streak.AchievementIDs {
		before := len(unlocks)
		unlocks = e.appendUnlock(unlocks, studentStats, id)
		if len(unlocks) > before {
			points += streak.BonusPoints
		}
	}

	perfectDelta := 0
	if perfect {
		perfectDelta = 1
	}

	studentUpdated, err := e.store.ApplyDelta(ctx, event.StudentEmail, Delta{
		Points:               points,
		MonthlyPoints:        points,
		AssignmentsCompleted: 1,
		PerfectScores:        perfectDelta,
		NewStreak:            &streak.NewStreak,
		TouchActivity:        true,
		Achievements:         unlocks,
	})
	if err != nil {
		return GradeResult{}, fmt.Errorf("apply student delta: %w", err)
	}

	examinerStats, err := e.store.CreateIfAbsent(ctx, event.ExaminerEmail, event.ExaminerName)
	if err != nil {
		return GradeResult{}, fmt.Errorf("ensure examiner stats: %w", err)
	}

	exPoints, exAchievementID := e.policy.GradingPoints(examinerStats.AssignmentsGraded)
	var exUnlocks []AchievementRecord
	if exAchievementID != "" {
		before := len(exUnlocks)
		exUnlocks = e.appendUnlock(exUnlocks, examinerStats, exAchievementID)
		if len(exUnlocks) > before {
			// Grading master pays its catalog value on top of the base grade points.
			exPoints += exUnlocks[len(exUnlocks)-1].Points
		}
	}

	_, err = e.store.ApplyDelta(ctx, event.ExaminerEmail, Delta{
		Points:            exPoints,
		MonthlyPoints:     exPoints,
		AssignmentsGraded: 1,
		TouchActivity:     true,
		Achievements:      exUnlocks,
	})
	if err != nil {
		return GradeResult{}, fmt.Errorf("apply examiner delta: %w", err)
	}

	studentRank, examinerRank, err := e.ranks(ctx, event.StudentEmail, event.ExaminerEmail)
	if err != nil {
		return GradeResult{}, fmt.Errorf("compute ranks: %w", err)
	}

	metrics.GradingsProcessed.Inc()
	metrics.PointsAwarded.WithLabelValues("student").Add(float64(points))
	metrics.PointsAwarded.WithLabelValues("examiner").Add(float64(exPoints))
	for _, a := range append(unlocks, exUnlocks...) {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
	}

	e.logger.Info().
		Str("submission_id", event.SubmissionID.String()).
		Str("student", event.StudentEmail).
		Str("examiner", event.ExaminerEmail).
		Int("student_points", points).
		Int("examiner_points", exPoints).
		Int("streak", studentUpdated.CurrentStreak).
		Msg("grading event scored")

	return GradeResult{
		Student: Outcome{
			PointsEarned:    points,
			NewAchievements: nonNil(unlocks),
			CurrentStreak:   studentUpdated.CurrentStreak,
			Rank:            studentRank,
		},
		Examiner: Outcome{
			PointsEarned:    exPoints,
			NewAchievements: nonNil(exUnlocks),
			Rank:            examinerRank,
		},
	}, nil
}

// InitializeStats creates a zeroed stats record for a user. Calling it for
// an existing user returns the existing record unchanged.
func (e *Engine) InitializeStats(ctx context.Context, email, name string) (UserStats, error) {
	if email == "" {
		return UserStats{}, ErrInvalidEvent
	}
	return e.store.CreateIfAbsent(ctx, email, name)
}

// GetUserStats returns a single stats record.
func (e *Engine) GetUserStats(ctx context.Context, email string) (UserStats, error) {
	return e.store.Get(ctx, email)
}

// UpdateGraderStats applies grading points outside the grading flow
// (administrative correction path). Unlike GradeSubmission it requires an
// existing record and fails with ErrStatsNotFound otherwise.
func (e *Engine) UpdateGraderStats(ctx context.Context, examinerEmail string) (Outcome, error) {
	statsRec, err := e.store.Get(ctx, examinerEmail)
	if err != nil {
		return Outcome{}, err
	}

	points, achievementID := e.policy.GradingPoints(statsRec.AssignmentsGraded)
	var unlocks []AchievementRecord
	if achievementID != "" {
		before := len(unlocks)
		unlocks = e.appendUnlock(unlocks, statsRec, achievementID)
		if len(unlocks) > before {
			points += unlocks[len(unlocks)-1].Points
		}
	}

	if _, err := e.store.ApplyDelta(ctx, examinerEmail, Delta{
		Points:            points,
		MonthlyPoints:     points,
		AssignmentsGraded: 1,
		Achievements:      unlocks,
	}); err != nil {
		return Outcome{}, fmt.Errorf("apply grader delta: %w", err)
	}

	metrics.PointsAwarded.WithLabelValues("examiner").Add(float64(points))
	for _, a := range unlocks {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
	}

	return Outcome{PointsEarned: points, NewAchievements: nonNil(unlocks)}, nil
}

// ResetMonthlyPoints pays the top-3 monthly bonuses into all-time points,
// unlocks top-performer for position 0, then zeroes monthly points for every
// user. Not idempotent: a second run in the same period pays again.
func (e *Engine) ResetMonthlyPoints(ctx context.Context) (ResetSummary, error) {
	top, err := e.store.TopByMonthlyPoints(ctx, len(e.policy.MonthlyTopThree))
	if err != nil {
		return ResetSummary{}, fmt.Errorf("read monthly top: %w", err)
	}

	winners := make([]string, 0, len(top))
	for i, winner := range top {
		delta := Delta{Points: e.policy.MonthlyBonus(i)}
		if i == 0 {
			delta.Achievements = e.appendUnlock(nil, winner, AchievementTopPerformer)
		}
		if _, err := e.store.ApplyDelta(ctx, winner.UserEmail, delta); err != nil {
			return ResetSummary{}, fmt.Errorf("award monthly bonus to %s: %w", winner.UserEmail, err)
		}
		winners = append(winners, winner.UserEmail)
	}

	count, err := e.store.ResetAllMonthly(ctx, e.now())
	if err != nil {
		return ResetSummary{}, fmt.Errorf("reset monthly points: %w", err)
	}

	metrics.MonthlyResets.Inc()
	e.logger.Info().
		Strs("winners", winners).
		Int64("users_reset", count).
		Msg("monthly points reset")

	return ResetSummary{UsersReset: count, Winners: winners}, nil
}

// ranks returns 1-based positions by all-time points. Ties keep insertion
// order via a stable sort over the store's listing order.
func (e *Engine) ranks(ctx context.Context, emails ...string) (int, int, error) {
	all, err := e.store.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Points > all[j].Points
	})

	positions := make([]int, len(emails))
	for idx, email := range emails {
		for i, rec := range all {
			if rec.UserEmail == email {
				positions[idx] = i + 1
				break
			}
		}
	}
	return positions[0], positions[1], nil
}

// appendUnlock adds the catalog record for id unless the user already holds
// it or it was already queued for this event.
func (e *Engine) appendUnlock(unlocks []AchievementRecord, current UserStats, id string) []AchievementRecord {
	if current.HasAchievement(id) {
		return unlocks
	}
	for _, a := range unlocks {
		if a.ID == id {
			return unlocks
		}
	}
	rec, ok := e.catalog.Lookup(id)
	if !ok {
		e.logger.Warn().Str("achievement", id).Msg("achievement id missing from catalog")
		return unlocks
	}
	return append(unlocks, rec)
}

func nonNil(records []AchievementRecord) []AchievementRecord {
	if records == nil {
		return []AchievementRecord{}
	}
	return records
}
