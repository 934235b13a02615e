package domain

import "time"

// WorkoutType distinguishes the two performance models.
type WorkoutType string

const (
	WorkoutStrength WorkoutType = "strength"
	WorkoutCardio   WorkoutType = "cardio"
)

// Valid reports whether t is a known workout type.
func (t WorkoutType) Valid() bool {
	return t == WorkoutStrength || t == WorkoutCardio
}

// StrengthMetrics describes a lifting session. Weight may be zero for
// bodyweight work.
type StrengthMetrics struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Sets   int     `json:"sets"`
}

// Volume returns weight × reps × sets. Bodyweight sessions count as
// reps × sets so they are never worth less than doing nothing.
func (m StrengthMetrics) Volume() float64 {
	w := m.Weight
	if w < 1 {
		w = 1
	}
	return w * float64(m.Reps) * float64(m.Sets)
}

// CardioMetrics describes an endurance session. Steps and Calories are
// optional; nil means "not recorded", not zero.
type CardioMetrics struct {
	DurationMinutes float64  `json:"duration_minutes"`
	Steps           *int64   `json:"steps,omitempty"`
	Calories        *float64 `json:"calories,omitempty"`
}

// Workout is an immutable, append-only history record.
// XPEarned is computed once by the workout pipeline.
type Workout struct {
	ID          string           `json:"id"`
	PlayerID    string           `json:"player_id"`
	Type        WorkoutType      `json:"type"`
	XPEarned    int64            `json:"xp_earned"`
	PetXPEarned int64            `json:"pet_xp_earned"`
	Strength    *StrengthMetrics `json:"strength,omitempty"`
	Cardio      *CardioMetrics   `json:"cardio,omitempty"`
	At          time.Time        `json:"at"`
	TemplateID  string           `json:"template_id,omitempty"`
}

// WorkoutTemplate is a reusable named workout carrying its own base XP.
type WorkoutTemplate struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      WorkoutType `json:"type"`
	BaseXP    int64       `json:"base_xp"`
	CreatedAt time.Time   `json:"created_at"`
}
