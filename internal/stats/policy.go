package stats

// Policy holds the scoring constants (defaults match product requirements).
// All methods are deterministic and side-effect free.
type Policy struct {
	SubmitPoints       int    // default: 10
	GradePoints        int    // default: 5
	PerfectScoreBonus  int    // default: 15
	StreakBonus        int    // default: 20, paid once at the streak target
	MonthlyTopThree    [3]int // default: 50/30/20 by leaderboard position
	StreakTarget       int    // default: 7 consecutive days
	GradingMasterCount int    // default: 10 graded assignments
	PerfectScorerCount int    // default: 5 perfect scores
}

// DefaultPolicy returns production defaults.
func DefaultPolicy() Policy {
	return Policy{
		SubmitPoints:       10,
		GradePoints:        5,
		PerfectScoreBonus:  15,
		StreakBonus:        20,
		MonthlyTopThree:    [3]int{50, 30, 20},
		StreakTarget:       7,
		GradingMasterCount: 10,
		PerfectScorerCount: 5,
	}
}

// SubmissionPoints computes the student delta for one graded submission.
// perfectScoresBefore is the count prior to this event; crossing the
// perfect-scorer milestone returns that achievement id.
func (p Policy) SubmissionPoints(obtained, max, perfectScoresBefore int) (points int, perfect bool, achievementID string) {
	points = p.SubmitPoints
	perfect = max > 0 && obtained == max
	if perfect {
		points += p.PerfectScoreBonus
		if perfectScoresBefore+1 == p.PerfectScorerCount {
			achievementID = AchievementPerfectScorer
		}
	}
	return points, perfect, achievementID
}

// GradingPoints computes the examiner delta for grading one submission.
// gradedBefore is the count prior to this event; the grading-master id is
// returned exactly on the crossing to the milestone count.
func (p Policy) GradingPoints(gradedBefore int) (points int, achievementID string) {
	points = p.GradePoints
	if gradedBefore+1 == p.GradingMasterCount {
		achievementID = AchievementGradingMaster
	}
	return points, achievementID
}

// MonthlyBonus returns the all-time point bonus for a 0-based monthly
// leaderboard position, or 0 for positions outside the paid range.
func (p Policy) MonthlyBonus(position int) int {
	if position < 0 || position >= len(p.MonthlyTopThree) {
		return 0
	}
	return p.MonthlyTopThree[position]
}
