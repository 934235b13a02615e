// Package metrics provides Prometheus metrics for fitpet.
// Counters and gauges for workouts, progression, pets, the essence
// economy, the HTTP surface, and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Workouts ───────────────────────────────────────────────────────────────

// WorkoutsLogged tracks logged workouts by type.
var WorkoutsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "workouts_logged_total",
	Help:      "Total workouts logged.",
}, []string{"type"})

// WorkoutsRejected tracks workouts refused for malformed metrics.
var WorkoutsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "workouts_rejected_total",
	Help:      "Total workouts rejected by validation.",
}, []string{"type"})

// WorkoutXP tracks the XP awarded per workout.
var WorkoutXP = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fitpet",
	Name:      "workout_xp",
	Help:      "XP awarded per workout.",
	Buckets:   []float64{5, 10, 20, 40, 80, 160, 320, 640},
}, []string{"type"})

// ─── Progression ────────────────────────────────────────────────────────────

// XPAwarded tracks total XP granted to players and pets.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
}, []string{"track"})

// LevelUps tracks player level-ups.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "level_ups_total",
	Help:      "Total player level-ups.",
})

// StreaksBroken tracks streak resets.
var StreaksBroken = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "streaks_broken_total",
	Help:      "Total streaks reset by a missed day.",
})

// Unlocks tracks cosmetic unlocks granted by key.
var Unlocks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "unlocks_total",
	Help:      "Total cosmetic unlocks granted.",
}, []string{"key"})

// ─── Pets ───────────────────────────────────────────────────────────────────

// PetsWentAway tracks pets whose happiness reached zero.
var PetsWentAway = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "pets_went_away_total",
	Help:      "Total pets that left after happiness hit zero.",
})

// PetRecoveries tracks away pets brought back, by method.
var PetRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "pet_recoveries_total",
	Help:      "Total pet recoveries by method.",
}, []string{"method"})

// PetEvolutions tracks stage transitions by the stage reached.
var PetEvolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "pet_evolutions_total",
	Help:      "Total pet evolutions by stage reached.",
}, []string{"stage"})

// TreatsFed tracks treats fed by tier.
var TreatsFed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "treats_fed_total",
	Help:      "Total treats fed by tier.",
}, []string{"tier"})

// ─── Economy ────────────────────────────────────────────────────────────────

// EssenceEarned tracks total essence credited.
var EssenceEarned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "essence_earned_total",
	Help:      "Total essence earned by players.",
})

// EssenceSpent tracks total essence debited.
var EssenceSpent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "essence_spent_total",
	Help:      "Total essence spent by purpose.",
}, []string{"purpose"})

// AccessoriesPurchased tracks shop purchases by rarity.
var AccessoriesPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "accessories_purchased_total",
	Help:      "Total accessories purchased by rarity.",
}, []string{"rarity"})

// ─── API ────────────────────────────────────────────────────────────────────

// APIRequests tracks HTTP requests by route pattern and status class.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "api_requests_total",
	Help:      "Total API requests by route and status.",
}, []string{"route", "status"})

// APILatency tracks HTTP handler duration in seconds.
var APILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fitpet",
	Name:      "api_latency_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "fitpet",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fitpet",
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts per check.",
}, []string{"check"})
