package progression

import (
	"sort"

	"github.com/gosimple/slug"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// Requirement gates one cosmetic/achievement key behind thresholds.
// All non-zero thresholds must be met. Check, when set, replaces the
// thresholds entirely.
type Requirement struct {
	Key              string `toml:"key" json:"key"`
	Name             string `toml:"name" json:"name"`
	MinLevel         int    `toml:"min_level" json:"min_level,omitempty"`
	MinHighestStreak int    `toml:"min_highest_streak" json:"min_highest_streak,omitempty"`
	MinWorkouts      int    `toml:"min_workouts" json:"min_workouts,omitempty"`

	Check func(domain.UnlockStats) bool `toml:"-" json:"-"`
}

// Predicate returns the check function for this requirement.
func (r Requirement) Predicate() func(domain.UnlockStats) bool {
	if r.Check != nil {
		return r.Check
	}
	return func(s domain.UnlockStats) bool {
		return s.Level >= r.MinLevel &&
			s.HighestStreak >= r.MinHighestStreak &&
			s.WorkoutCount >= r.MinWorkouts
	}
}

// Evaluator maps unlock keys to predicates over UnlockStats.
// It holds no unlock state: callers merge its output into the player's
// set, which only ever grows.
type Evaluator struct {
	requirements []Requirement
	predicates   []func(domain.UnlockStats) bool
}

// NewEvaluator builds an evaluator. Requirements without a key get one
// derived from their name.
func NewEvaluator(reqs []Requirement) *Evaluator {
	e := &Evaluator{}
	for _, r := range reqs {
		if r.Key == "" {
			r.Key = slug.Make(r.Name)
		}
		e.requirements = append(e.requirements, r)
		e.predicates = append(e.predicates, r.Predicate())
	}
	return e
}

// Satisfied returns every key whose predicate holds, sorted.
func (e *Evaluator) Satisfied(stats domain.UnlockStats) []string {
	var keys []string
	for i, r := range e.requirements {
		if e.predicates[i](stats) {
			keys = append(keys, r.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Evaluate returns keys newly satisfied by stats, i.e. satisfied and not
// already in unlocked. Idempotent: merging the result and calling again
// with the same stats returns nothing.
func (e *Evaluator) Evaluate(stats domain.UnlockStats, unlocked domain.KeySet) []string {
	var fresh []string
	for _, key := range e.Satisfied(stats) {
		if !unlocked.Has(key) {
			fresh = append(fresh, key)
		}
	}
	return fresh
}

// Requirements returns the requirement table (for display).
func (e *Evaluator) Requirements() []Requirement {
	return append([]Requirement(nil), e.requirements...)
}

// UnlocksAtLevel returns keys whose level threshold is exactly level.
// Used to preview what a milestone grants.
func (e *Evaluator) UnlocksAtLevel(level int) []string {
	var keys []string
	for _, r := range e.requirements {
		if r.Check == nil && r.MinLevel == level {
			keys = append(keys, r.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// DefaultUnlocks returns the cosmetic/achievement requirement table.
func DefaultUnlocks() []Requirement {
	return []Requirement{
		// ── Getting started ────────────────────────────────────────────
		{Key: "badge_first_steps", Name: "First Steps", MinWorkouts: 1},
		{Key: "badge_ten_sessions", Name: "Regular", MinWorkouts: 10},
		{Key: "badge_fifty_sessions", Name: "Committed", MinWorkouts: 50},
		{Key: "badge_century", Name: "Centurion", MinWorkouts: 100},

		// ── Streaks ────────────────────────────────────────────────────
		{Key: "aura_spark", Name: "Spark Aura", MinHighestStreak: 3},
		{Key: "aura_flame", Name: "Flame Aura", MinHighestStreak: 7},
		{Key: "aura_inferno", Name: "Inferno Aura", MinHighestStreak: 30},
		{Key: "title_unbreakable", Name: "Unbreakable", MinHighestStreak: 100},

		// ── Levels ─────────────────────────────────────────────────────
		{Key: "outfit_track_suit", Name: "Track Suit", MinLevel: 5},
		{Key: "outfit_gym_tank", Name: "Gym Tank", MinLevel: 10},
		{Key: "frame_silver", Name: "Silver Frame", MinLevel: 11},
		{Key: "outfit_champion", Name: "Champion Belt", MinLevel: 20},
		{Key: "frame_gold", Name: "Gold Frame", MinLevel: 26},
		{Key: "frame_platinum", Name: "Platinum Frame", MinLevel: 51},
		{Key: "frame_diamond", Name: "Diamond Frame", MinLevel: 101},

		// ── Mixed ──────────────────────────────────────────────────────
		{Key: "title_dedicated", Name: "Dedicated", MinLevel: 15, MinHighestStreak: 14},
	}
}
