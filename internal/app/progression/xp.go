// Package progression implements the player-side rules of the engine:
// workout XP, the level curve and rank bands, daily streaks, and
// milestone unlocks. Everything here is pure: no I/O, no clock reads.
package progression

import (
	"fmt"
	"math"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// XPRules holds the tuning constants of the XP Calculator.
//
//	xp = round(base × performance × streak × firstOfDay)
//
// performance = 1 + scale·ln(1 + effort), capped at MaxPerformanceMultiplier.
// streak      = 1 + min(days·StreakStep, StreakCap).
type XPRules struct {
	DefaultBaseXP            int64   `toml:"default_base_xp"`
	StrengthVolumeUnit       float64 `toml:"strength_volume_unit"`
	CardioMinutesUnit        float64 `toml:"cardio_minutes_unit"`
	CardioStepsUnit          float64 `toml:"cardio_steps_unit"`
	CardioCaloriesUnit       float64 `toml:"cardio_calories_unit"`
	PerformanceScale         float64 `toml:"performance_scale"`
	MaxPerformanceMultiplier float64 `toml:"max_performance_multiplier"`
	StreakStep               float64 `toml:"streak_step"`
	StreakCap                float64 `toml:"streak_cap"`
	FirstWorkoutBonus        float64 `toml:"first_workout_bonus"`
}

// DefaultXPRules returns the production tuning.
func DefaultXPRules() XPRules {
	return XPRules{
		DefaultBaseXP:            20,
		StrengthVolumeUnit:       1000,
		CardioMinutesUnit:        30,
		CardioStepsUnit:          5000,
		CardioCaloriesUnit:       300,
		PerformanceScale:         0.5,
		MaxPerformanceMultiplier: 3.0,
		StreakStep:               0.05, // +5% per day
		StreakCap:                0.50, // capped at +50%
		FirstWorkoutBonus:        1.25,
	}
}

// Validate rejects tunings that would break monotonicity or produce
// negative XP.
func (r XPRules) Validate() error {
	switch {
	case r.DefaultBaseXP < 0:
		return fmt.Errorf("xp: default_base_xp must be >= 0")
	case r.StrengthVolumeUnit <= 0, r.CardioMinutesUnit <= 0,
		r.CardioStepsUnit <= 0, r.CardioCaloriesUnit <= 0:
		return fmt.Errorf("xp: performance units must be > 0")
	case r.PerformanceScale < 0:
		return fmt.Errorf("xp: performance_scale must be >= 0")
	case r.MaxPerformanceMultiplier < 1:
		return fmt.Errorf("xp: max_performance_multiplier must be >= 1")
	case r.StreakStep < 0 || r.StreakCap < 0:
		return fmt.Errorf("xp: streak step and cap must be >= 0")
	case r.FirstWorkoutBonus < 1:
		return fmt.Errorf("xp: first_workout_bonus must be >= 1")
	}
	return nil
}

// ComputeXP returns the experience awarded for one workout.
// streak is the player's streak including this workout's day.
func (r XPRules) ComputeXP(baseXP int64, t domain.WorkoutType, streak int, firstOfDay bool,
	strength *domain.StrengthMetrics, cardio *domain.CardioMetrics) (int64, error) {
	if baseXP < 0 {
		return 0, fmt.Errorf("%w: base xp must be >= 0, got %d", domain.ErrInvalidMetric, baseXP)
	}

	perf, err := r.PerformanceMultiplier(t, strength, cardio)
	if err != nil {
		return 0, err
	}

	xp := float64(baseXP) * perf * r.StreakMultiplier(streak)
	if firstOfDay {
		xp *= r.FirstWorkoutBonus
	}

	xp = math.Round(xp)
	if xp <= 0 {
		return 0, nil
	}
	if xp >= math.MaxInt64 {
		return math.MaxInt64, nil
	}
	return int64(xp), nil
}

// PerformanceMultiplier scales base XP by volume (strength) or effort
// (cardio). Never below 1.0, never above MaxPerformanceMultiplier.
func (r XPRules) PerformanceMultiplier(t domain.WorkoutType, strength *domain.StrengthMetrics, cardio *domain.CardioMetrics) (float64, error) {
	var effort float64
	switch t {
	case domain.WorkoutStrength:
		if strength == nil {
			return 0, fmt.Errorf("%w: strength workout without strength metrics", domain.ErrInvalidMetric)
		}
		if err := ValidateStrength(*strength); err != nil {
			return 0, err
		}
		effort = strength.Volume() / r.StrengthVolumeUnit

	case domain.WorkoutCardio:
		if cardio == nil {
			return 0, fmt.Errorf("%w: cardio workout without cardio metrics", domain.ErrInvalidMetric)
		}
		if err := ValidateCardio(*cardio); err != nil {
			return 0, err
		}
		effort = cardio.DurationMinutes / r.CardioMinutesUnit
		if cardio.Steps != nil {
			effort += float64(*cardio.Steps) / r.CardioStepsUnit
		}
		if cardio.Calories != nil {
			effort += *cardio.Calories / r.CardioCaloriesUnit
		}

	default:
		return 0, fmt.Errorf("%w: unknown workout type %q", domain.ErrInvalidMetric, t)
	}

	return math.Min(1+r.PerformanceScale*math.Log1p(effort), r.MaxPerformanceMultiplier), nil
}

// StreakMultiplier returns 1 + min(streak·step, cap). Zero and negative
// streaks earn no bonus.
func (r XPRules) StreakMultiplier(streak int) float64 {
	if streak <= 0 {
		return 1.0
	}
	return 1.0 + math.Min(float64(streak)*r.StreakStep, r.StreakCap)
}

// StreakBonusText describes the streak bonus for display.
func (r XPRules) StreakBonusText(streak int) string {
	if streak <= 0 {
		return "No streak bonus yet. Work out today to start one"
	}
	pct := int(math.Round((r.StreakMultiplier(streak) - 1) * 100))
	if float64(streak)*r.StreakStep >= r.StreakCap {
		return fmt.Sprintf("%d-day streak: +%d%% XP (max bonus)", streak, pct)
	}
	return fmt.Sprintf("%d-day streak: +%d%% XP", streak, pct)
}

// ValidateStrength rejects negative or non-finite strength metrics.
func ValidateStrength(m domain.StrengthMetrics) error {
	if !finiteNonNegative(m.Weight) {
		return fmt.Errorf("%w: weight must be finite and >= 0", domain.ErrInvalidMetric)
	}
	if m.Reps < 0 {
		return fmt.Errorf("%w: reps must be >= 0", domain.ErrInvalidMetric)
	}
	if m.Sets < 0 {
		return fmt.Errorf("%w: sets must be >= 0", domain.ErrInvalidMetric)
	}
	return nil
}

// ValidateCardio rejects negative or non-finite cardio metrics.
func ValidateCardio(m domain.CardioMetrics) error {
	if !finiteNonNegative(m.DurationMinutes) {
		return fmt.Errorf("%w: duration must be finite and >= 0", domain.ErrInvalidMetric)
	}
	if m.Steps != nil && *m.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0", domain.ErrInvalidMetric)
	}
	if m.Calories != nil && !finiteNonNegative(*m.Calories) {
		return fmt.Errorf("%w: calories must be finite and >= 0", domain.ErrInvalidMetric)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
