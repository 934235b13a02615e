package domain

import (
	"context"
	"time"
)

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the application layer depends on them.

// Clock supplies "now" and the player's calendar. Injected so calendar-day
// logic is deterministic under test.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Commit is everything one logical event changed. Stores apply it
// atomically: all of it or none of it.
type Commit struct {
	Player  Player
	Pet     *Pet
	Workout *Workout // nil unless the event logged a workout
	Ledger  []LedgerEntry
}

// Store abstracts persistence of player aggregates.
// Implemented by infra/sqlite.DB.
type Store interface {
	// CreateAggregate inserts a new player, its optional pet, and any
	// opening ledger entries. c.Workout must be nil.
	CreateAggregate(ctx context.Context, c Commit) error

	// LoadAggregate returns the player, pet, and full workout history.
	LoadAggregate(ctx context.Context, playerID string) (*Aggregate, error)

	// ListPlayers returns all players ordered by creation.
	ListPlayers(ctx context.Context) ([]Player, error)

	// Commit persists one event's mutations in a single transaction.
	Commit(ctx context.Context, c Commit) error

	// LedgerEntries returns the newest essence movements for a player.
	LedgerEntries(ctx context.Context, playerID string, limit int) ([]LedgerEntry, error)

	SaveTemplate(ctx context.Context, t WorkoutTemplate) error
	GetTemplate(ctx context.Context, id string) (*WorkoutTemplate, error)
	ListTemplates(ctx context.Context) ([]WorkoutTemplate, error)
}
