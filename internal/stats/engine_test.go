package stats

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// memStore mirrors the persistence contract in memory: per-key atomic deltas,
// achievement dedup on write, and insertion-ordered listing.
type memStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]UserStats
}

func newMemStore() *memStore {
	return &memStore{records: map[string]UserStats{}}
}

func (m *memStore) seed(rec UserStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.UserEmail]; !ok {
		m.order = append(m.order, rec.UserEmail)
	}
	m.records[rec.UserEmail] = rec
}

func (m *memStore) Get(_ context.Context, email string) (UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok {
		return UserStats{}, ErrStatsNotFound
	}
	return rec, nil
}

func (m *memStore) CreateIfAbsent(_ context.Context, email, name string) (UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[email]; ok {
		return rec, nil
	}
	rec := UserStats{
		UserEmail:    email,
		UserName:     name,
		Achievements: []AchievementRecord{},
		CreatedAt:    time.Now(),
	}
	m.records[email] = rec
	m.order = append(m.order, email)
	return rec, nil
}

func (m *memStore) ApplyDelta(_ context.Context, email string, delta Delta) (UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok {
		return UserStats{}, ErrStatsNotFound
	}
	rec.Points += delta.Points
	rec.MonthlyPoints += delta.MonthlyPoints
	rec.AssignmentsCompleted += delta.AssignmentsCompleted
	rec.AssignmentsGraded += delta.AssignmentsGraded
	rec.PerfectScores += delta.PerfectScores
	if delta.NewStreak != nil {
		rec.CurrentStreak = *delta.NewStreak
	}
	if delta.TouchActivity {
		rec.LastActivityDate = time.Now()
	}
	for _, a := range delta.Achievements {
		if !rec.HasAchievement(a.ID) {
			rec.Achievements = append(rec.Achievements, a)
		}
	}
	m.records[email] = rec
	return rec, nil
}

func (m *memStore) ListAll(_ context.Context) ([]UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UserStats, 0, len(m.order))
	for _, email := range m.order {
		out = append(out, m.records[email])
	}
	return out, nil
}

func (m *memStore) TopByMonthlyPoints(_ context.Context, limit int) ([]UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UserStats, 0, len(m.order))
	for _, email := range m.order {
		out = append(out, m.records[email])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MonthlyPoints > out[j].MonthlyPoints
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ResetAllMonthly(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, rec := range m.records {
		rec.MonthlyPoints = 0
		rec.LastMonthReset = now
		m.records[email] = rec
	}
	return int64(len(m.records)), nil
}

func newTestEngine(store Store) *Engine {
	return NewEngine(store, NewCatalog(), DefaultPolicy(), zerolog.Nop())
}

func gradingEvent(student, examiner string, obtained, max int) GradingEvent {
	return GradingEvent{
		SubmissionID:  uuid.New(),
		ObtainedMarks: obtained,
		MaxMarks:      max,
		StudentEmail:  student,
		StudentName:   "Student",
		ExaminerEmail: examiner,
		ExaminerName:  "Examiner",
	}
}

func TestGradeSubmissionFirstTime(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	result, err := engine.GradeSubmission(context.Background(), gradingEvent("alice@example.com", "bob@example.com", 70, 100))
	assert.NoError(t, err)

	// 10 submit points plus the first-submission unlock record.
	assert.Equal(t, 10, result.Student.PointsEarned)
	assert.Len(t, result.Student.NewAchievements, 1)
	assert.Equal(t, AchievementFirstSubmission, result.Student.NewAchievements[0].ID)
	assert.Equal(t, 1, result.Student.CurrentStreak)

	assert.Equal(t, 5, result.Examiner.PointsEarned)
	assert.Empty(t, result.Examiner.NewAchievements)

	alice, err := store.Get(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 10, alice.Points)
	assert.Equal(t, 10, alice.MonthlyPoints)
	assert.Equal(t, 1, alice.AssignmentsCompleted)
	assert.True(t, alice.HasAchievement(AchievementFirstSubmission))

	bob, err := store.Get(context.Background(), "bob@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 5, bob.Points)
	assert.Equal(t, 1, bob.AssignmentsGraded)
}

func TestGradeSubmissionFirstSubmissionOnlyOnce(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	first, err := engine.GradeSubmission(ctx, gradingEvent("alice@example.com", "bob@example.com", 50, 100))
	assert.NoError(t, err)
	assert.Len(t, first.Student.NewAchievements, 1)

	second, err := engine.GradeSubmission(ctx, gradingEvent("alice@example.com", "bob@example.com", 60, 100))
	assert.NoError(t, err)
	assert.Empty(t, second.Student.NewAchievements)

	alice, _ := store.Get(ctx, "alice@example.com")
	assert.Len(t, alice.Achievements, 1)
}

func TestGradeSubmissionPerfectScore(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{
		UserEmail:            "alice@example.com",
		AssignmentsCompleted: 3,
		Achievements:         []AchievementRecord{{ID: AchievementFirstSubmission}},
		LastActivityDate:     time.Now().Add(-2 * time.Hour),
		CurrentStreak:        2,
	})
	engine := newTestEngine(store)

	result, err := engine.GradeSubmission(context.Background(), gradingEvent("alice@example.com", "bob@example.com", 100, 100))
	assert.NoError(t, err)

	assert.Equal(t, 25, result.Student.PointsEarned)
	assert.Empty(t, result.Student.NewAchievements)

	alice, _ := store.Get(context.Background(), "alice@example.com")
	assert.Equal(t, 1, alice.PerfectScores)
}

func TestGradeSubmissionPerfectScorerMilestone(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{
		UserEmail:            "alice@example.com",
		AssignmentsCompleted: 8,
		PerfectScores:        4,
		Achievements:         []AchievementRecord{{ID: AchievementFirstSubmission}},
		LastActivityDate:     time.Now().Add(-time.Hour),
		CurrentStreak:        1,
	})
	engine := newTestEngine(store)

	result, err := engine.GradeSubmission(context.Background(), gradingEvent("alice@example.com", "bob@example.com", 40, 40))
	assert.NoError(t, err)

	assert.Len(t, result.Student.NewAchievements, 1)
	assert.Equal(t, AchievementPerfectScorer, result.Student.NewAchievements[0].ID)

	alice, _ := store.Get(context.Background(), "alice@example.com")
	assert.Equal(t, 5, alice.PerfectScores)
}

func TestGradeSubmissionStreakCrossing(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{
		UserEmail:            "alice@example.com",
		AssignmentsCompleted: 6,
		CurrentStreak:        6,
		LastActivityDate:     time.Now().Add(-24 * time.Hour),
		Achievements:         []AchievementRecord{{ID: AchievementFirstSubmission}},
	})
	engine := newTestEngine(store)

	result, err := engine.GradeSubmission(context.Background(), gradingEvent("alice@example.com", "bob@example.com", 30, 100))
	assert.NoError(t, err)

	// 10 submit points plus the 20 point streak bonus.
	assert.Equal(t, 30, result.Student.PointsEarned)
	assert.Equal(t, 7, result.Student.CurrentStreak)
	assert.Len(t, result.Student.NewAchievements, 1)
	assert.Equal(t, AchievementPerfectStreak, result.Student.NewAchievements[0].ID)
}

func TestGradeSubmissionGradingMasterOnce(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{
		UserEmail:         "bob@example.com",
		AssignmentsGraded: 9,
		Achievements:      []AchievementRecord{},
	})
	engine := newTestEngine(store)
	ctx := context.Background()

	result, err := engine.GradeSubmission(ctx, gradingEvent("alice@example.com", "bob@example.com", 80, 100))
	assert.NoError(t, err)

	// 5 grade points plus the 75 point grading-master award.
	assert.Equal(t, 80, result.Examiner.PointsEarned)
	assert.Len(t, result.Examiner.NewAchievements, 1)
	assert.Equal(t, AchievementGradingMaster, result.Examiner.NewAchievements[0].ID)

	// The eleventh grading pays base points only.
	result, err = engine.GradeSubmission(ctx, gradingEvent("carol@example.com", "bob@example.com", 80, 100))
	assert.NoError(t, err)
	assert.Equal(t, 5, result.Examiner.PointsEarned)
	assert.Empty(t, result.Examiner.NewAchievements)

	bob, _ := store.Get(ctx, "bob@example.com")
	assert.Equal(t, 11, bob.AssignmentsGraded)
	assert.Len(t, bob.Achievements, 1)
}

func TestGradeSubmissionConcurrentDeltas(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.GradeSubmission(ctx, gradingEvent("alice@example.com", "bob@example.com", 60, 100))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	alice, _ := store.Get(ctx, "alice@example.com")
	assert.Equal(t, n, alice.AssignmentsCompleted)
	assert.Equal(t, n*10, alice.Points)
	assert.Len(t, alice.Achievements, 1)

	bob, _ := store.Get(ctx, "bob@example.com")
	assert.Equal(t, n, bob.AssignmentsGraded)
}

func TestGradeSubmissionRanks(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{UserEmail: "top@example.com", Points: 500})
	store.seed(UserStats{
		UserEmail:            "alice@example.com",
		AssignmentsCompleted: 1,
		Points:               100,
		Achievements:         []AchievementRecord{{ID: AchievementFirstSubmission}},
		LastActivityDate:     time.Now().Add(-time.Hour),
		CurrentStreak:        1,
	})
	engine := newTestEngine(store)

	result, err := engine.GradeSubmission(context.Background(), gradingEvent("alice@example.com", "bob@example.com", 10, 100))
	assert.NoError(t, err)

	assert.Equal(t, 2, result.Student.Rank)
	assert.Equal(t, 3, result.Examiner.Rank)
}

func TestGradeSubmissionInvalidEvent(t *testing.T) {
	engine := newTestEngine(newMemStore())

	_, err := engine.GradeSubmission(context.Background(), GradingEvent{StudentEmail: "alice@example.com"})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = engine.GradeSubmission(context.Background(), GradingEvent{ExaminerEmail: "bob@example.com"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestInitializeStatsIdempotent(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	created, err := engine.InitializeStats(ctx, "alice@example.com", "Alice")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", created.UserName)
	assert.Zero(t, created.Points)

	store.seed(UserStats{UserEmail: "alice@example.com", UserName: "Alice", Points: 40})
	again, err := engine.InitializeStats(ctx, "alice@example.com", "Someone Else")
	assert.NoError(t, err)
	assert.Equal(t, 40, again.Points)
	assert.Equal(t, "Alice", again.UserName)
}

func TestInitializeStatsEmptyEmail(t *testing.T) {
	engine := newTestEngine(newMemStore())

	_, err := engine.InitializeStats(context.Background(), "", "Alice")
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestUpdateGraderStatsRequiresRecord(t *testing.T) {
	engine := newTestEngine(newMemStore())

	_, err := engine.UpdateGraderStats(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrStatsNotFound)
}

func TestUpdateGraderStatsNoDuplicateMaster(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{
		UserEmail:         "bob@example.com",
		AssignmentsGraded: 9,
		Achievements: []AchievementRecord{
			{ID: AchievementGradingMaster, Points: 75},
		},
	})
	engine := newTestEngine(store)

	outcome, err := engine.UpdateGraderStats(context.Background(), "bob@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 5, outcome.PointsEarned)
	assert.Empty(t, outcome.NewAchievements)

	bob, _ := store.Get(context.Background(), "bob@example.com")
	assert.Len(t, bob.Achievements, 1)
}

func TestResetMonthlyPoints(t *testing.T) {
	store := newMemStore()
	store.seed(UserStats{UserEmail: "first@example.com", Points: 300, MonthlyPoints: 100})
	store.seed(UserStats{UserEmail: "second@example.com", Points: 250, MonthlyPoints: 80})
	store.seed(UserStats{UserEmail: "third@example.com", Points: 200, MonthlyPoints: 50})
	store.seed(UserStats{UserEmail: "fourth@example.com", Points: 150, MonthlyPoints: 10})
	engine := newTestEngine(store)
	ctx := context.Background()

	summary, err := engine.ResetMonthlyPoints(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), summary.UsersReset)
	assert.Equal(t, []string{"first@example.com", "second@example.com", "third@example.com"}, summary.Winners)

	first, _ := store.Get(ctx, "first@example.com")
	assert.Equal(t, 350, first.Points)
	assert.Zero(t, first.MonthlyPoints)
	assert.True(t, first.HasAchievement(AchievementTopPerformer))

	second, _ := store.Get(ctx, "second@example.com")
	assert.Equal(t, 280, second.Points)
	assert.False(t, second.HasAchievement(AchievementTopPerformer))

	third, _ := store.Get(ctx, "third@example.com")
	assert.Equal(t, 220, third.Points)

	fourth, _ := store.Get(ctx, "fourth@example.com")
	assert.Equal(t, 150, fourth.Points)
	assert.Zero(t, fourth.MonthlyPoints)
}

func TestResetMonthlyPointsEmptyTable(t *testing.T) {
	engine := newTestEngine(newMemStore())

	summary, err := engine.ResetMonthlyPoints(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, summary.UsersReset)
	assert.Empty(t, summary.Winners)
}
