package domain

import "time"

// Species is fixed at pet creation.
type Species string

const (
	SpeciesPlant  Species = "plant"
	SpeciesCat    Species = "cat"
	SpeciesDog    Species = "dog"
	SpeciesWolf   Species = "wolf" // legacy, no longer offered to new players
	SpeciesDragon Species = "dragon"
)

// AllSpecies lists every species, legacy included.
func AllSpecies() []Species {
	return []Species{SpeciesPlant, SpeciesCat, SpeciesDog, SpeciesWolf, SpeciesDragon}
}

// Valid reports whether s is a known species.
func (s Species) Valid() bool {
	for _, known := range AllSpecies() {
		if s == known {
			return true
		}
	}
	return false
}

// Legacy reports whether the species can only exist on old saves.
func (s Species) Legacy() bool { return s == SpeciesWolf }

// Mood is the discrete classification of happiness.
type Mood string

const (
	MoodEcstatic  Mood = "ecstatic"
	MoodHappy     Mood = "happy"
	MoodContent   Mood = "content"
	MoodSad       Mood = "sad"
	MoodUnhappy   Mood = "unhappy"
	MoodMiserable Mood = "miserable"
)

// EvolutionStage is the pet maturity tier.
type EvolutionStage string

const (
	StageBaby  EvolutionStage = "baby"
	StageChild EvolutionStage = "child"
	StageTeen  EvolutionStage = "teen"
	StageAdult EvolutionStage = "adult"
)

// TreatTier selects a treat size.
type TreatTier string

const (
	TreatSmall  TreatTier = "small"
	TreatMedium TreatTier = "medium"
	TreatLarge  TreatTier = "large"
)

// RecoveryMethod selects how an away pet is brought back.
type RecoveryMethod string

const (
	RecoverByWorkouts RecoveryMethod = "workouts"
	RecoverByEssence  RecoveryMethod = "essence"
)

// Pet is the player's companion. Happiness stays in [0,100];
// IsAway implies Happiness == 0. Stage is a cache of the level-derived stage.
type Pet struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Species               Species        `json:"species"`
	TotalXP               int64          `json:"total_xp"`
	Happiness             float64        `json:"happiness"`
	LastHappinessUpdateAt time.Time      `json:"last_happiness_update_at"`
	IsAway                bool           `json:"is_away"`
	EquippedAccessoryIDs  KeySet         `json:"equipped_accessory_ids"`
	Stage                 EvolutionStage `json:"stage"`
	CreatedAt             time.Time      `json:"created_at"`
}
