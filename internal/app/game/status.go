package game

import (
	"github.com/fitpet-app/fitpet/internal/app/pet"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// Status is the read model shown after every command.
type Status struct {
	Player        domain.Player `json:"player"`
	Level         int           `json:"level"`
	Rank          domain.Rank   `json:"rank"`
	LevelStartXP  int64         `json:"level_start_xp"`
	LevelEndXP    int64         `json:"level_end_xp"`
	XPToNext      int64         `json:"xp_to_next"`
	ProgressPct   float64       `json:"progress_pct"`
	NextMilestone int           `json:"next_milestone,omitempty"`
	StreakBonus   string        `json:"streak_bonus"`
	WorkoutCount  int           `json:"workout_count"`
	Pet           *PetStatus    `json:"pet,omitempty"`
}

// PetStatus is the pet's derived state.
type PetStatus struct {
	domain.Pet
	Level          int         `json:"level"`
	Mood           domain.Mood `json:"mood"`
	XPToNext       int64       `json:"xp_to_next"`
	HappinessBonus float64     `json:"happiness_bonus"`
	RecentWorkouts int         `json:"recent_workouts"`
	CanRecover     bool        `json:"can_recover"`
}

func (e *Engine) statusOf(agg *domain.Aggregate) *Status {
	p := agg.Player
	level := e.rules.Levels.LevelFor(p.TotalXP)
	start, end := e.rules.Levels.XPRangeFor(level)

	s := &Status{
		Player:       p,
		Level:        level,
		Rank:         e.rules.Levels.RankFor(level),
		LevelStartXP: start,
		LevelEndXP:   end,
		XPToNext:     e.rules.Levels.Curve.XPToNextLevel(p.TotalXP),
		ProgressPct:  e.rules.Levels.Curve.ProgressPct(p.TotalXP),
		StreakBonus:  e.rules.XP.StreakBonusText(p.CurrentStreak),
		WorkoutCount: len(agg.Workouts),
	}
	for _, m := range e.rules.Levels.MilestoneLevels() {
		if m > level {
			s.NextMilestone = m
			break
		}
	}
	if agg.Pet != nil {
		s.Pet = e.petStatus(*agg.Pet, agg.Workouts, p.EssenceBalance)
	}
	return s
}

// petStatus derives level, mood, and recovery eligibility. CanRecover is
// true when either recovery path is open.
func (e *Engine) petStatus(p domain.Pet, history []domain.Workout, balance int64) *PetStatus {
	now := e.clock.Now()
	level := e.pets.Level(p)
	p.Stage = e.pets.StageFor(level)
	recent := e.pets.RecentWorkouts(history, now)
	return &PetStatus{
		Pet:            p,
		Level:          level,
		Mood:           pet.MoodFor(p.Happiness),
		XPToNext:       e.rules.Pet.Curve.XPToNextLevel(p.TotalXP),
		HappinessBonus: e.pets.HappinessXPBonus(p.Happiness),
		RecentWorkouts: recent,
		CanRecover: p.IsAway && (recent >= e.rules.Pet.RecoveryWorkouts ||
			balance >= e.rules.Pet.RecoveryCost),
	}
}
