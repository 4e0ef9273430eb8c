package stats

// Achievement ids known to the catalog.
const (
	AchievementFirstSubmission = "first_submission"
	AchievementPerfectStreak   = "perfect_streak"
	AchievementGradingMaster   = "grading_master"
	AchievementTopPerformer    = "top_performer"
	AchievementPerfectScorer   = "perfect_scorer"
)

// Catalog is the immutable achievement table, loaded once at startup and
// passed by reference into the engine.
type Catalog struct {
	records map[string]AchievementRecord
}

// NewCatalog returns the fixed achievement set for this platform.
func NewCatalog() *Catalog {
	return &Catalog{records: map[string]AchievementRecord{
		AchievementFirstSubmission: {
			ID:          AchievementFirstSubmission,
			Name:        "First Steps",
			Description: "Submit your first assignment",
			Points:      50,
			Icon:        "🎯",
		},
		AchievementPerfectStreak: {
			ID:          AchievementPerfectStreak,
			Name:        "Perfect Week",
			Description: "Maintain a 7-day submission streak",
			Points:      100,
			Icon:        "🔥",
		},
		AchievementGradingMaster: {
			ID:          AchievementGradingMaster,
			Name:        "Grading Master",
			Description: "Grade 10 assignments",
			Points:      75,
			Icon:        "📝",
		},
		AchievementTopPerformer: {
			ID:          AchievementTopPerformer,
			Name:        "Top Performer",
			Description: "Achieve #1 in monthly leaderboard",
			Points:      200,
			Icon:        "👑",
		},
		AchievementPerfectScorer: {
			ID:          AchievementPerfectScorer,
			Name:        "Perfectionist",
			Description: "Score full marks on 5 assignments",
			Points:      125,
			Icon:        "🌟",
		},
	}}
}

// Lookup returns the record for an achievement id.
func (c *Catalog) Lookup(id string) (AchievementRecord, bool) {
	rec, ok := c.records[id]
	return rec, ok
}

// IDs lists every achievement id in the catalog.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	return ids
}
