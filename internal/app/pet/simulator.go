// Package pet implements the pet life simulation: lazy happiness decay,
// mood, workout and treat boosts, the away state and its two recovery
// paths, evolution, and species XP multipliers.
//
// Decay is computed on read from LastHappinessUpdateAt; there is no timer.
// Callers run Decay before displaying or using pet state.
package pet

import (
	"fmt"
	"math"
	"time"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// Happiness bounds.
const (
	MinHappiness = 0.0
	MaxHappiness = 100.0
)

// Simulator applies Rules to pets. It holds no pet state.
type Simulator struct {
	rules Rules
}

// NewSimulator creates a simulator with the given rules.
func NewSimulator(rules Rules) *Simulator {
	return &Simulator{rules: rules}
}

// Rules returns the simulator's tuning.
func (s *Simulator) Rules() Rules { return s.rules }

// New creates a baby pet at full happiness.
func (s *Simulator) New(id, name string, species domain.Species, now time.Time) (domain.Pet, error) {
	if !species.Valid() {
		return domain.Pet{}, fmt.Errorf("%w: %q", domain.ErrUnknownSpecies, species)
	}
	return domain.Pet{
		ID:                    id,
		Name:                  name,
		Species:               species,
		Happiness:             s.rules.InitialHappiness,
		LastHappinessUpdateAt: now,
		EquippedAccessoryIDs:  domain.NewKeySet(),
		Stage:                 s.StageFor(1),
		CreatedAt:             now,
	}, nil
}

// ─── Happiness ──────────────────────────────────────────────────────────────

// DecayResult reports what a Decay call changed.
type DecayResult struct {
	Lost     float64 `json:"lost"`
	WentAway bool    `json:"went_away"`
}

// Decay brings happiness up to date with now at DecayPerDay, clamped at 0.
// Reaching 0 sends the pet away. A clock that moved backwards changes nothing.
func (s *Simulator) Decay(p *domain.Pet, now time.Time) DecayResult {
	if p.LastHappinessUpdateAt.IsZero() {
		p.LastHappinessUpdateAt = now
		return DecayResult{}
	}
	elapsed := now.Sub(p.LastHappinessUpdateAt)
	if elapsed <= 0 {
		return DecayResult{}
	}
	p.LastHappinessUpdateAt = now

	if p.IsAway {
		p.Happiness = MinHappiness
		return DecayResult{}
	}

	before := p.Happiness
	p.Happiness = clamp(p.Happiness - s.rules.DecayPerDay*elapsed.Hours()/24)
	res := DecayResult{Lost: before - p.Happiness}
	if p.Happiness <= MinHappiness {
		p.Happiness = MinHappiness
		p.IsAway = true
		res.WentAway = true
	}
	return res
}

// MoodFor classifies happiness. Bands are inclusive at the bottom:
// ecstatic ≥90, happy 70–89, content 50–69, sad 30–49, unhappy 10–29,
// miserable <10.
func MoodFor(happiness float64) domain.Mood {
	switch {
	case happiness >= 90:
		return domain.MoodEcstatic
	case happiness >= 70:
		return domain.MoodHappy
	case happiness >= 50:
		return domain.MoodContent
	case happiness >= 30:
		return domain.MoodSad
	case happiness >= 10:
		return domain.MoodUnhappy
	default:
		return domain.MoodMiserable
	}
}

// ApplyWorkoutBoost raises happiness by WorkoutBoost, clamped to 100.
func (s *Simulator) ApplyWorkoutBoost(p *domain.Pet) error {
	if p.IsAway {
		return domain.ErrPetAway
	}
	p.Happiness = clamp(p.Happiness + s.rules.WorkoutBoost)
	return nil
}

// Feed gives the pet a treat and returns the balance after paying for it.
// Nothing changes on error.
func (s *Simulator) Feed(p *domain.Pet, tier domain.TreatTier, balance int64) (int64, error) {
	treat, ok := s.rules.Treat(tier)
	if !ok {
		return balance, fmt.Errorf("%w: %q", domain.ErrUnknownTreat, tier)
	}
	if p.IsAway {
		return balance, domain.ErrPetAway
	}
	if balance < treat.Cost {
		return balance, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCurrency, balance, treat.Cost)
	}
	p.Happiness = clamp(p.Happiness + treat.Boost)
	return balance - treat.Cost, nil
}

// ─── Recovery ───────────────────────────────────────────────────────────────

// RecentWorkouts counts workouts in the trailing recovery window ending at now.
func (s *Simulator) RecentWorkouts(history []domain.Workout, now time.Time) int {
	since := now.Add(-time.Duration(s.rules.RecoveryWindowDays) * 24 * time.Hour)
	n := 0
	for _, w := range history {
		if w.At.After(since) && !w.At.After(now) {
			n++
		}
	}
	return n
}

// RecoverWithWorkouts brings an away pet back once the player has logged
// RecoveryWorkouts workouts in the trailing window.
func (s *Simulator) RecoverWithWorkouts(p *domain.Pet, recent int, now time.Time) error {
	if !p.IsAway {
		return fmt.Errorf("%w: pet is not away", domain.ErrRecoveryIneligible)
	}
	if recent < s.rules.RecoveryWorkouts {
		return fmt.Errorf("%w: %d of %d workouts in the last %d days",
			domain.ErrRecoveryIneligible, recent, s.rules.RecoveryWorkouts, s.rules.RecoveryWindowDays)
	}
	s.resurrect(p, now)
	return nil
}

// RecoverWithEssence buys an away pet back for RecoveryCost essence and
// returns the new balance.
func (s *Simulator) RecoverWithEssence(p *domain.Pet, balance int64, now time.Time) (int64, error) {
	if !p.IsAway {
		return balance, fmt.Errorf("%w: pet is not away", domain.ErrRecoveryIneligible)
	}
	if balance < s.rules.RecoveryCost {
		return balance, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCurrency, balance, s.rules.RecoveryCost)
	}
	s.resurrect(p, now)
	return balance - s.rules.RecoveryCost, nil
}

func (s *Simulator) resurrect(p *domain.Pet, now time.Time) {
	p.Happiness = s.rules.ResurrectionHappiness
	p.IsAway = false
	p.LastHappinessUpdateAt = now
}

// ─── Evolution & XP ─────────────────────────────────────────────────────────

// Level returns the pet's level on its own XP track.
func (s *Simulator) Level(p domain.Pet) int {
	return s.rules.Curve.LevelFor(p.TotalXP)
}

// StageFor maps a pet level to its evolution stage.
func (s *Simulator) StageFor(level int) domain.EvolutionStage {
	for i := len(s.rules.Stages) - 1; i >= 0; i-- {
		if level >= s.rules.Stages[i].MinLevel {
			return s.rules.Stages[i].Stage
		}
	}
	return domain.StageBaby
}

// Stage returns the pet's current evolution stage.
func (s *Simulator) Stage(p domain.Pet) domain.EvolutionStage {
	return s.StageFor(s.Level(p))
}

// Multiplier scales workout XP into the pet's track:
// species base for the workout type + PerLevelMultiplier per level above 1
// (capped at MaxLevelMultiplier). Never below 1.0.
func (s *Simulator) Multiplier(species domain.Species, t domain.WorkoutType, level int) float64 {
	base := 1.0
	if rule, ok := s.rules.Species[string(species)]; ok {
		switch t {
		case domain.WorkoutStrength:
			base = rule.Strength
		case domain.WorkoutCardio:
			base = rule.Cardio
		}
	}
	if level < 1 {
		level = 1
	}
	m := base + math.Min(float64(level-1)*s.rules.PerLevelMultiplier, s.rules.MaxLevelMultiplier)
	return math.Max(1.0, m)
}

// HappinessXPBonus is the read-only pet XP qualifier: 1 + HappinessBonusPct%
// at or above HappinessBonusThreshold, else 1.
func (s *Simulator) HappinessXPBonus(happiness float64) float64 {
	if happiness >= s.rules.HappinessBonusThreshold {
		return 1 + s.rules.HappinessBonusPct/100
	}
	return 1.0
}

// XPAward is the outcome of feeding workout XP into the pet track.
type XPAward struct {
	Amount   int64                 `json:"amount"`
	OldLevel int                   `json:"old_level"`
	NewLevel int                   `json:"new_level"`
	OldStage domain.EvolutionStage `json:"old_stage"`
	NewStage domain.EvolutionStage `json:"new_stage"`
}

// Evolved reports whether the award crossed a stage boundary.
func (a XPAward) Evolved() bool { return a.OldStage != a.NewStage }

// LeveledUp reports whether the award crossed a level boundary.
func (a XPAward) LeveledUp() bool { return a.NewLevel > a.OldLevel }

// AwardXP credits the pet with its share of a workout's XP. Away pets earn
// nothing. Happiness is read, never changed.
func (s *Simulator) AwardXP(p *domain.Pet, workoutXP int64, t domain.WorkoutType) XPAward {
	oldLevel := s.Level(*p)
	award := XPAward{OldLevel: oldLevel, NewLevel: oldLevel, OldStage: s.StageFor(oldLevel)}
	award.NewStage = award.OldStage

	if p.IsAway || workoutXP <= 0 {
		p.Stage = award.NewStage
		return award
	}

	amount := math.Round(float64(workoutXP) * s.Multiplier(p.Species, t, oldLevel) * s.HappinessXPBonus(p.Happiness))
	if amount >= math.MaxInt64 {
		award.Amount = math.MaxInt64
	} else {
		award.Amount = int64(amount)
	}
	if p.TotalXP > math.MaxInt64-award.Amount {
		p.TotalXP = math.MaxInt64
	} else {
		p.TotalXP += award.Amount
	}

	award.NewLevel = s.Level(*p)
	award.NewStage = s.StageFor(award.NewLevel)
	p.Stage = award.NewStage
	return award
}

func clamp(h float64) float64 {
	if math.IsNaN(h) {
		return MinHappiness
	}
	return math.Max(MinHappiness, math.Min(MaxHappiness, h))
}
