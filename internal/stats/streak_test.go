package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var streakNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestUpdateStreakFirstActivity(t *testing.T) {
	prev := UserStats{CurrentStreak: 0}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 1, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
	assert.Zero(t, res.BonusPoints)
}

func TestUpdateStreakConsecutiveDay(t *testing.T) {
	prev := UserStats{
		CurrentStreak:    3,
		LastActivityDate: streakNow.Add(-24 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 4, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
}

func TestUpdateStreakSameDayPreserved(t *testing.T) {
	prev := UserStats{
		CurrentStreak:    5,
		LastActivityDate: streakNow.Add(-2 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 5, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
	assert.Zero(t, res.BonusPoints)
}

func TestUpdateStreakGapResets(t *testing.T) {
	prev := UserStats{
		CurrentStreak:    12,
		LastActivityDate: streakNow.Add(-72 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 1, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
}

func TestUpdateStreakTargetUnlocksPerfectWeek(t *testing.T) {
	prev := UserStats{
		CurrentStreak:    6,
		LastActivityDate: streakNow.Add(-24 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 7, res.NewStreak)
	assert.Equal(t, []string{AchievementPerfectStreak}, res.AchievementIDs)
	assert.Equal(t, 20, res.BonusPoints)
}

func TestUpdateStreakTargetSameDayNoReaward(t *testing.T) {
	// Already at the target; a second activity that day keeps the streak at 7
	// without paying the bonus again.
	prev := UserStats{
		CurrentStreak:    7,
		LastActivityDate: streakNow.Add(-1 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 7, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
	assert.Zero(t, res.BonusPoints)
}

func TestUpdateStreakPastTargetNoBonus(t *testing.T) {
	prev := UserStats{
		CurrentStreak:    7,
		LastActivityDate: streakNow.Add(-24 * time.Hour),
	}

	res := UpdateStreak(prev, streakNow, DefaultPolicy())
	assert.Equal(t, 8, res.NewStreak)
	assert.Empty(t, res.AchievementIDs)
}
