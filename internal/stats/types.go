package stats

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStatsNotFound signals that no stats record exists for the given email.
	ErrStatsNotFound = errors.New("stats not found")
	// ErrInvalidEvent signals a grading event missing required identity fields.
	ErrInvalidEvent = errors.New("invalid grading event")
)

// AchievementRecord is an unlocked achievement copied by value from the
// catalog at unlock time, so later catalog edits never rewrite history.
type AchievementRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Icon        string `json:"icon"`
}

// UserStats is the per-user aggregate of points, counters, streak and
// achievements, keyed by email.
type UserStats struct {
	UserEmail            string              `json:"userEmail"`
	UserName             string              `json:"userName"`
	Points               int                 `json:"points"`
	MonthlyPoints        int                 `json:"monthlyPoints"`
	AssignmentsCompleted int                 `json:"assignmentsCompleted"`
	AssignmentsGraded    int                 `json:"assignmentsGraded"`
	PerfectScores        int                 `json:"perfectScores"`
	CurrentStreak        int                 `json:"currentStreak"`
	LastActivityDate     time.Time           `json:"lastActivityDate"`
	Achievements         []AchievementRecord `json:"achievements"`
	LastMonthReset       time.Time           `json:"lastMonthReset"`
	Rank                 string              `json:"rank"`
	CreatedAt            time.Time           `json:"-"`
}

// HasAchievement reports whether the achievement id was already unlocked.
func (s UserStats) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// GradingEvent is the transient input produced when an examiner commits a
// grade for a submission. It is consumed once and never persisted here.
type GradingEvent struct {
	SubmissionID  uuid.UUID
	ObtainedMarks int
	MaxMarks      int
	ExaminerEmail string
	ExaminerName  string
	StudentEmail  string
	StudentName   string
}

// Delta is one atomic incremental update against a stats record. All fields
// are applied as a single unit relative to concurrent deltas on the same key.
type Delta struct {
	Points               int
	MonthlyPoints        int
	AssignmentsCompleted int
	AssignmentsGraded    int
	PerfectScores        int
	// NewStreak overwrites the streak counter when non-nil.
	NewStreak *int
	// TouchActivity stamps lastActivityDate with the storage clock.
	TouchActivity bool
	// Achievements are appended; records whose id is already present on the
	// row are discarded by the store.
	Achievements []AchievementRecord
}

// Outcome reports what a single grading event earned one user.
type Outcome struct {
	PointsEarned    int                 `json:"pointsEarned"`
	NewAchievements []AchievementRecord `json:"newAchievements"`
	CurrentStreak   int                 `json:"currentStreak,omitempty"`
	Rank            int                 `json:"rank"`
}

// GradeResult bundles both sides of a grading event.
type GradeResult struct {
	Student  Outcome `json:"student"`
	Examiner Outcome `json:"examiner"`
}

// ResetSummary reports the effect of a monthly reset run.
type ResetSummary struct {
	UsersReset int64    `json:"usersReset"`
	Winners    []string `json:"winners"`
}
