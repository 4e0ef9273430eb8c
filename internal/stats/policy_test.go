package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionPointsRegularScore(t *testing.T) {
	policy := DefaultPolicy()

	points, perfect, achievementID := policy.SubmissionPoints(70, 100, 0)
	assert.Equal(t, 10, points)
	assert.False(t, perfect)
	assert.Empty(t, achievementID)
}

func TestSubmissionPointsPerfectScore(t *testing.T) {
	policy := DefaultPolicy()

	points, perfect, achievementID := policy.SubmissionPoints(100, 100, 0)
	assert.Equal(t, 25, points)
	assert.True(t, perfect)
	assert.Empty(t, achievementID)
}

func TestSubmissionPointsZeroMaxNeverPerfect(t *testing.T) {
	policy := DefaultPolicy()

	points, perfect, achievementID := policy.SubmissionPoints(0, 0, 4)
	assert.Equal(t, 10, points)
	assert.False(t, perfect)
	assert.Empty(t, achievementID)
}

func TestSubmissionPointsPerfectScorerMilestone(t *testing.T) {
	policy := DefaultPolicy()

	// Fifth perfect score crosses the milestone.
	_, perfect, achievementID := policy.SubmissionPoints(50, 50, 4)
	assert.True(t, perfect)
	assert.Equal(t, AchievementPerfectScorer, achievementID)

	// Fourth and sixth do not.
	_, _, achievementID = policy.SubmissionPoints(50, 50, 3)
	assert.Empty(t, achievementID)
	_, _, achievementID = policy.SubmissionPoints(50, 50, 5)
	assert.Empty(t, achievementID)
}

func TestGradingPointsMilestoneBoundary(t *testing.T) {
	policy := DefaultPolicy()

	points, achievementID := policy.GradingPoints(8)
	assert.Equal(t, 5, points)
	assert.Empty(t, achievementID)

	points, achievementID = policy.GradingPoints(9)
	assert.Equal(t, 5, points)
	assert.Equal(t, AchievementGradingMaster, achievementID)

	_, achievementID = policy.GradingPoints(10)
	assert.Empty(t, achievementID)
}

func TestMonthlyBonusPositions(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, 50, policy.MonthlyBonus(0))
	assert.Equal(t, 30, policy.MonthlyBonus(1))
	assert.Equal(t, 20, policy.MonthlyBonus(2))
	assert.Equal(t, 0, policy.MonthlyBonus(3))
	assert.Equal(t, 0, policy.MonthlyBonus(-1))
}
