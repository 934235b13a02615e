// Package domain holds the entities, enums, errors, and collaborator
// interfaces of the progression and pet engine. Domain types are pure:
// no infrastructure dependency.
package domain

import "time"

// ─── Player ─────────────────────────────────────────────────────────────────

// Player is the aggregate root. TotalXP never decreases and
// CurrentStreak never exceeds HighestStreak.
type Player struct {
	ID                   string    `json:"id"`
	DisplayName          string    `json:"display_name"`
	TotalXP              int64     `json:"total_xp"`
	CurrentStreak        int       `json:"current_streak"`
	HighestStreak        int       `json:"highest_streak"`
	LastWorkoutDate      *Date     `json:"last_workout_date,omitempty"`
	EssenceBalance       int64     `json:"essence_balance"`
	UnlockedAccessoryIDs KeySet    `json:"unlocked_accessory_ids"`
	UnlockedCosmeticKeys KeySet    `json:"unlocked_cosmetic_keys"`
	CreatedAt            time.Time `json:"created_at"`
}

// Aggregate is one player with everything they own, loaded and committed
// as a unit.
type Aggregate struct {
	Player   Player    `json:"player"`
	Pet      *Pet      `json:"pet,omitempty"`
	Workouts []Workout `json:"workouts"`
}

// ─── Rank ───────────────────────────────────────────────────────────────────

// Rank is the player tier derived from level bands.
type Rank string

const (
	RankBronze   Rank = "bronze"
	RankSilver   Rank = "silver"
	RankGold     Rank = "gold"
	RankPlatinum Rank = "platinum"
	RankDiamond  Rank = "diamond"
)

// ─── Unlocks ────────────────────────────────────────────────────────────────

// UnlockStats is the snapshot fed to unlock predicates.
type UnlockStats struct {
	Level         int `json:"level"`
	HighestStreak int `json:"highest_streak"`
	WorkoutCount  int `json:"workout_count"`
}

// ─── Essence Ledger ─────────────────────────────────────────────────────────

// LedgerKind is the direction of an essence movement.
type LedgerKind string

const (
	LedgerEarn  LedgerKind = "earn"
	LedgerSpend LedgerKind = "spend"
)

// LedgerEntry records one essence balance mutation. Amount is the signed
// change to the balance (negative for spends) and Balance is the
// player's balance after the entry.
type LedgerEntry struct {
	ID       string     `json:"id"`
	PlayerID string     `json:"player_id"`
	At       time.Time  `json:"at"`
	Kind     LedgerKind `json:"kind"`
	Amount   int64      `json:"amount"`
	Reason   string     `json:"reason"`
	Balance  int64      `json:"balance"`
}

// ─── Accessories ────────────────────────────────────────────────────────────

// AccessoryCategory groups the cosmetic slot an accessory occupies.
type AccessoryCategory string

const (
	CategoryHat        AccessoryCategory = "hat"
	CategoryBackground AccessoryCategory = "background"
	CategoryEffect     AccessoryCategory = "effect"
)

// Rarity is the shop tier of an accessory.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Accessory is a static catalog entry, not player-owned state.
type Accessory struct {
	ID       string            `json:"id" toml:"id"`
	Name     string            `json:"name" toml:"name"`
	Cost     int64             `json:"cost" toml:"cost"`
	Rarity   Rarity            `json:"rarity" toml:"rarity"`
	Category AccessoryCategory `json:"category" toml:"category"`
}
