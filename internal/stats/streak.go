package stats

import "time"

// StreakResult is the outcome of folding one activity into a user's streak.
type StreakResult struct {
	NewStreak      int
	AchievementIDs []string
	BonusPoints    int
}

// UpdateStreak recomputes the consecutive-day streak from the previous stats
// and "now". Pure function; the caller persists the result atomically with
// the rest of the scoring delta.
//
// A qualifying activity exactly one day after the last one extends the
// streak. A repeat on the same calendar day preserves it. Any longer gap
// resets it to 1. Crossing the streak target unlocks the perfect-week
// achievement and pays the streak bonus exactly once for that crossing.
func UpdateStreak(prev UserStats, now time.Time, policy Policy) StreakResult {
	daysDiff := int(now.Sub(prev.LastActivityDate).Hours() / 24)

	var newStreak int
	switch {
	case prev.CurrentStreak == 0:
		newStreak = 1
	case daysDiff == 0:
		newStreak = prev.CurrentStreak
	case daysDiff == 1:
		newStreak = prev.CurrentStreak + 1
	default:
		newStreak = 1
	}

	res := StreakResult{NewStreak: newStreak}
	if newStreak == policy.StreakTarget && newStreak != prev.CurrentStreak {
		res.AchievementIDs = append(res.AchievementIDs, AchievementPerfectStreak)
		res.BonusPoints = policy.StreakBonus
	}
	return res
}
