package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exported on /metrics alongside the default collectors.
var (
	GradingsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupstudy_gradings_total",
		Help: "Grading events processed by the stats engine.",
	})

	PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupstudy_points_awarded_total",
		Help: "Points awarded by the stats engine, by recipient role.",
	}, []string{"role"})

	AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupstudy_achievements_unlocked_total",
		Help: "Achievements unlocked, by achievement id.",
	}, []string{"achievement"})

	MonthlyResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupstudy_monthly_resets_total",
		Help: "Monthly point reset runs.",
	})
)
