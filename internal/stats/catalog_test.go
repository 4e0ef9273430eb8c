package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogContainsAllAchievements(t *testing.T) {
	catalog := NewCatalog()

	expected := map[string]int{
		AchievementFirstSubmission: 50,
		AchievementPerfectStreak:   100,
		AchievementGradingMaster:   75,
		AchievementTopPerformer:    200,
		AchievementPerfectScorer:   125,
	}

	assert.Len(t, catalog.IDs(), len(expected))
	for id, points := range expected {
		rec, ok := catalog.Lookup(id)
		assert.True(t, ok, "missing achievement %s", id)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, points, rec.Points)
		assert.NotEmpty(t, rec.Name)
		assert.NotEmpty(t, rec.Description)
		assert.NotEmpty(t, rec.Icon)
	}
}

func TestCatalogLookupUnknownID(t *testing.T) {
	catalog := NewCatalog()

	rec, ok := catalog.Lookup("night_owl")
	assert.False(t, ok)
	assert.Equal(t, AchievementRecord{}, rec)
}

func TestCatalogLookupIsStable(t *testing.T) {
	catalog := NewCatalog()

	first, _ := catalog.Lookup(AchievementPerfectStreak)
	second, _ := catalog.Lookup(AchievementPerfectStreak)
	assert.Equal(t, first, second)
}
