package pet

import (
	"fmt"

	"github.com/fitpet-app/fitpet/internal/app/progression"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// StageBand is the lowest pet level at which a stage applies.
type StageBand struct {
	Stage    domain.EvolutionStage `toml:"stage"`
	MinLevel int                   `toml:"min_level"`
}

// TreatRule prices a treat tier.
type TreatRule struct {
	Tier  domain.TreatTier `toml:"tier" json:"tier"`
	Cost  int64            `toml:"cost" json:"cost"`
	Boost float64          `toml:"boost" json:"boost"`
}

// SpeciesRule is a species' base XP multiplier per workout type.
type SpeciesRule struct {
	Strength float64 `toml:"strength"`
	Cardio   float64 `toml:"cardio"`
}

// Rules holds every tuning constant of the pet simulator.
type Rules struct {
	Curve  progression.Curve `toml:"curve"`
	Stages []StageBand       `toml:"stages"`

	DecayPerDay           float64 `toml:"decay_per_day"`
	WorkoutBoost          float64 `toml:"workout_boost"`
	InitialHappiness      float64 `toml:"initial_happiness"`
	ResurrectionHappiness float64 `toml:"resurrection_happiness"`

	RecoveryCost       int64 `toml:"recovery_cost"`
	RecoveryWorkouts   int   `toml:"recovery_workouts"`
	RecoveryWindowDays int   `toml:"recovery_window_days"`

	HappinessBonusThreshold float64 `toml:"happiness_bonus_threshold"`
	HappinessBonusPct       float64 `toml:"happiness_bonus_pct"`

	PerLevelMultiplier float64 `toml:"per_level_multiplier"`
	MaxLevelMultiplier float64 `toml:"max_level_multiplier"`

	Treats  []TreatRule            `toml:"treats"`
	Species map[string]SpeciesRule `toml:"species"`
}

// DefaultRules returns the production pet tuning.
func DefaultRules() Rules {
	return Rules{
		Curve: progression.Curve{Base: 50, Exponent: 1.4, MaxLevel: 200},
		Stages: []StageBand{
			{Stage: domain.StageBaby, MinLevel: 1},
			{Stage: domain.StageChild, MinLevel: 6},
			{Stage: domain.StageTeen, MinLevel: 16},
			{Stage: domain.StageAdult, MinLevel: 31},
		},
		DecayPerDay:             2,
		WorkoutBoost:            10,
		InitialHappiness:        MaxHappiness,
		ResurrectionHappiness:   50,
		RecoveryCost:            150,
		RecoveryWorkouts:        3,
		RecoveryWindowDays:      7,
		HappinessBonusThreshold: 90,
		HappinessBonusPct:       10,
		PerLevelMultiplier:      0.005,
		MaxLevelMultiplier:      0.5,
		Treats: []TreatRule{
			{Tier: domain.TreatSmall, Cost: 15, Boost: 10},
			{Tier: domain.TreatMedium, Cost: 35, Boost: 25},
			{Tier: domain.TreatLarge, Cost: 60, Boost: 50},
		},
		Species: map[string]SpeciesRule{
			string(domain.SpeciesPlant):  {Strength: 1.00, Cardio: 1.15},
			string(domain.SpeciesCat):    {Strength: 1.05, Cardio: 1.10},
			string(domain.SpeciesDog):    {Strength: 1.10, Cardio: 1.20},
			string(domain.SpeciesWolf):   {Strength: 1.15, Cardio: 1.15},
			string(domain.SpeciesDragon): {Strength: 1.25, Cardio: 1.05},
		},
	}
}

// Validate rejects tunings that would break the happiness clamp or let a
// multiplier fall below 1.0.
func (r Rules) Validate() error {
	if err := r.Curve.Validate(); err != nil {
		return fmt.Errorf("pet %w", err)
	}
	if len(r.Stages) == 0 || r.Stages[0].MinLevel != 1 {
		return fmt.Errorf("pet: first stage must start at level 1")
	}
	for i := 1; i < len(r.Stages); i++ {
		if r.Stages[i].MinLevel <= r.Stages[i-1].MinLevel {
			return fmt.Errorf("pet: stage %q must start above %q", r.Stages[i].Stage, r.Stages[i-1].Stage)
		}
	}
	switch {
	case r.DecayPerDay < 0:
		return fmt.Errorf("pet: decay_per_day must be >= 0")
	case r.WorkoutBoost < 0:
		return fmt.Errorf("pet: workout_boost must be >= 0")
	case r.InitialHappiness <= MinHappiness || r.InitialHappiness > MaxHappiness:
		return fmt.Errorf("pet: initial_happiness must be in (0,100]")
	case r.ResurrectionHappiness <= MinHappiness || r.ResurrectionHappiness > MaxHappiness:
		return fmt.Errorf("pet: resurrection_happiness must be in (0,100]")
	case r.RecoveryCost < 0 || r.RecoveryWorkouts < 1 || r.RecoveryWindowDays < 1:
		return fmt.Errorf("pet: invalid recovery thresholds")
	case r.HappinessBonusPct < 0 || r.PerLevelMultiplier < 0 || r.MaxLevelMultiplier < 0:
		return fmt.Errorf("pet: bonuses must be >= 0")
	}
	for _, t := range r.Treats {
		if t.Cost < 0 || t.Boost < 0 {
			return fmt.Errorf("pet: treat %q has negative cost or boost", t.Tier)
		}
	}
	for name, s := range r.Species {
		if s.Strength < 1 || s.Cardio < 1 {
			return fmt.Errorf("pet: species %q multipliers must be >= 1.0", name)
		}
	}
	return nil
}

// Treat looks up a treat tier.
func (r Rules) Treat(tier domain.TreatTier) (TreatRule, bool) {
	for _, t := range r.Treats {
		if t.Tier == tier {
			return t, true
		}
	}
	return TreatRule{}, false
}
