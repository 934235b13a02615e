package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fitpet-app/fitpet/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var created = time.Date(2026, 4, 1, 8, 30, 0, 123456789, time.UTC)

func seedAggregate(t *testing.T, db *DB, withPet bool) domain.Commit {
	t.Helper()
	c := domain.Commit{
		Player: domain.Player{
			ID:                   "player-1",
			DisplayName:          "Sam",
			EssenceBalance:       50,
			UnlockedAccessoryIDs: domain.NewKeySet(),
			UnlockedCosmeticKeys: domain.NewKeySet(),
			CreatedAt:            created,
		},
		Ledger: []domain.LedgerEntry{{
			ID: "le-welcome", PlayerID: "player-1", At: created,
			Kind: domain.LedgerEarn, Amount: 50, Reason: "welcome", Balance: 50,
		}},
	}
	if withPet {
		c.Pet = &domain.Pet{
			ID:                    "pet-1",
			Name:                  "Ember",
			Species:               domain.SpeciesDragon,
			Happiness:             100,
			LastHappinessUpdateAt: created,
			EquippedAccessoryIDs:  domain.NewKeySet(),
			Stage:                 domain.StageBaby,
			CreatedAt:             created,
		}
	}
	if err := db.CreateAggregate(context.Background(), c); err != nil {
		t.Fatalf("CreateAggregate() error: %v", err)
	}
	return c
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
	if db.Path() != filepath.Join(dir, "state.db") {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	db := newTestDB(t)

	var journal string
	if err := db.db.QueryRow(`PRAGMA journal_mode`).Scan(&journal); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if journal != "wal" {
		t.Errorf("journal_mode = %q, want wal", journal)
	}

	var fk, busy int
	if err := db.db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
	if err := db.db.QueryRow(`PRAGMA busy_timeout`).Scan(&busy); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if busy != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busy)
	}

	_, err := db.db.Exec(
		`INSERT INTO essence_ledger (id, player_id, timestamp, kind, amount, reason, balance)
		 VALUES ('le-orphan', 'no-such-player', 0, 'earn', 1, '', 1)`)
	if err == nil {
		t.Error("ledger row for a missing player should violate the foreign key")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	seedAggregate(t, db, false)
	db.Close()

	// Migrations are idempotent and data survives.
	db, err = Open(dir)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	defer db.Close()
	if _, err := db.LoadAggregate(context.Background(), "player-1"); err != nil {
		t.Fatalf("LoadAggregate() after reopen error: %v", err)
	}
}

// ─── Aggregates ─────────────────────────────────────────────────────────────

func TestCreateAndLoadAggregate(t *testing.T) {
	db := newTestDB(t)
	seedAggregate(t, db, true)

	agg, err := db.LoadAggregate(context.Background(), "player-1")
	if err != nil {
		t.Fatalf("LoadAggregate() error: %v", err)
	}
	if agg.Player.DisplayName != "Sam" || agg.Player.EssenceBalance != 50 {
		t.Errorf("player = %+v", agg.Player)
	}
	if !agg.Player.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v (nanosecond round trip)", agg.Player.CreatedAt, created)
	}
	if agg.Player.LastWorkoutDate != nil {
		t.Errorf("LastWorkoutDate = %v, want nil", agg.Player.LastWorkoutDate)
	}
	if agg.Pet == nil {
		t.Fatal("pet missing")
	}
	if agg.Pet.Species != domain.SpeciesDragon || agg.Pet.Happiness != 100 || agg.Pet.Stage != domain.StageBaby {
		t.Errorf("pet = %+v", agg.Pet)
	}
	if !agg.Pet.LastHappinessUpdateAt.Equal(created) {
		t.Errorf("LastHappinessUpdateAt = %v", agg.Pet.LastHappinessUpdateAt)
	}
	if len(agg.Workouts) != 0 {
		t.Errorf("workouts = %d, want 0", len(agg.Workouts))
	}
}

func TestLoadAggregate_NoPet(t *testing.T) {
	db := newTestDB(t)
	seedAggregate(t, db, false)

	agg, err := db.LoadAggregate(context.Background(), "player-1")
	if err != nil {
		t.Fatalf("LoadAggregate() error: %v", err)
	}
	if agg.Pet != nil {
		t.Errorf("Pet = %+v, want nil", agg.Pet)
	}
}

func TestLoadAggregate_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.LoadAggregate(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("error = %v, want ErrPlayerNotFound", err)
	}
}

func TestCreateAggregate_Duplicate(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, false)
	c.Ledger = nil
	if err := db.CreateAggregate(context.Background(), c); err == nil {
		t.Error("duplicate player id should fail")
	}
}

func TestCommit_Workout(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, true)
	ctx := context.Background()

	at := created.Add(2 * time.Hour)
	day := domain.DateOf(at, time.UTC)
	steps := int64(8000)

	c.Player.TotalXP = 40
	c.Player.CurrentStreak = 1
	c.Player.HighestStreak = 1
	c.Player.LastWorkoutDate = &day
	c.Player.EssenceBalance = 54
	c.Player.UnlockedCosmeticKeys.Add("badge_first_steps")
	c.Pet.TotalXP = 46
	c.Pet.Happiness = 98.5
	c.Pet.LastHappinessUpdateAt = at
	c.Workout = &domain.Workout{
		ID: "w-1", PlayerID: "player-1", Type: domain.WorkoutCardio,
		XPEarned: 40, PetXPEarned: 46, At: at,
		Cardio: &domain.CardioMetrics{DurationMinutes: 30, Steps: &steps},
	}
	c.Ledger = []domain.LedgerEntry{{
		ID: "le-w1", PlayerID: "player-1", At: at,
		Kind: domain.LedgerEarn, Amount: 4, Reason: "workout", Balance: 54,
	}}
	if err := db.Commit(ctx, c); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	agg, err := db.LoadAggregate(ctx, "player-1")
	if err != nil {
		t.Fatalf("LoadAggregate() error: %v", err)
	}
	p := agg.Player
	if p.TotalXP != 40 || p.CurrentStreak != 1 || p.HighestStreak != 1 || p.EssenceBalance != 54 {
		t.Errorf("player = %+v", p)
	}
	if p.LastWorkoutDate == nil || *p.LastWorkoutDate != day {
		t.Errorf("LastWorkoutDate = %v, want %v", p.LastWorkoutDate, day)
	}
	if !p.UnlockedCosmeticKeys.Has("badge_first_steps") {
		t.Error("cosmetic unlock not persisted")
	}
	if agg.Pet.TotalXP != 46 || agg.Pet.Happiness != 98.5 {
		t.Errorf("pet = %+v", agg.Pet)
	}

	if len(agg.Workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(agg.Workouts))
	}
	w := agg.Workouts[0]
	if w.Type != domain.WorkoutCardio || w.XPEarned != 40 || w.PetXPEarned != 46 || !w.At.Equal(at) {
		t.Errorf("workout = %+v", w)
	}
	if w.Cardio == nil || w.Cardio.DurationMinutes != 30 || w.Cardio.Steps == nil || *w.Cardio.Steps != 8000 {
		t.Errorf("cardio = %+v", w.Cardio)
	}
	if w.Cardio.Calories != nil {
		t.Errorf("Calories = %v, want nil", *w.Cardio.Calories)
	}
	if w.Strength != nil {
		t.Error("cardio workout should have no strength metrics")
	}
}

func TestCommit_StrengthWorkoutOrder(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, false)
	ctx := context.Background()

	for i, id := range []string{"w-a", "w-b", "w-c"} {
		c.Ledger = nil
		c.Workout = &domain.Workout{
			ID: id, PlayerID: "player-1", Type: domain.WorkoutStrength, XPEarned: 10,
			At:       created.Add(time.Duration(i) * time.Minute),
			Strength: &domain.StrengthMetrics{Weight: 135, Reps: 10, Sets: 3},
		}
		if err := db.Commit(ctx, c); err != nil {
			t.Fatalf("Commit(%s) error: %v", id, err)
		}
	}

	agg, _ := db.LoadAggregate(ctx, "player-1")
	if len(agg.Workouts) != 3 {
		t.Fatalf("workouts = %d, want 3", len(agg.Workouts))
	}
	for i, want := range []string{"w-a", "w-b", "w-c"} {
		if agg.Workouts[i].ID != want {
			t.Errorf("workouts[%d] = %s, want %s", i, agg.Workouts[i].ID, want)
		}
	}
	if s := agg.Workouts[0].Strength; s == nil || s.Weight != 135 || s.Reps != 10 || s.Sets != 3 {
		t.Errorf("strength = %+v", s)
	}
}

func TestCommit_UnknownPlayer(t *testing.T) {
	db := newTestDB(t)
	err := db.Commit(context.Background(), domain.Commit{Player: domain.Player{ID: "ghost"}})
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("error = %v, want ErrPlayerNotFound", err)
	}
}

func TestCommit_RollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, true)
	ctx := context.Background()

	c.Player.TotalXP = 999
	c.Player.EssenceBalance = 0
	// Reusing the welcome entry id violates the ledger's unique constraint.
	c.Ledger = []domain.LedgerEntry{{
		ID: "le-welcome", PlayerID: "player-1", At: created,
		Kind: domain.LedgerSpend, Amount: -50, Reason: "dup", Balance: 0,
	}}
	if err := db.Commit(ctx, c); err == nil {
		t.Fatal("Commit() should fail on duplicate ledger id")
	}

	agg, _ := db.LoadAggregate(ctx, "player-1")
	if agg.Player.TotalXP != 0 || agg.Player.EssenceBalance != 50 {
		t.Errorf("partial commit leaked: %+v", agg.Player)
	}
}

func TestCommit_NegativeBalanceRejected(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, false)
	c.Ledger = nil
	c.Player.EssenceBalance = -1
	if err := db.Commit(context.Background(), c); err == nil {
		t.Error("negative balance should violate the CHECK constraint")
	}
}

func TestUnlocksAreNeverRevoked(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, true)
	ctx := context.Background()

	c.Ledger = nil
	c.Player.UnlockedAccessoryIDs.Add("hat_cap")
	c.Pet.EquippedAccessoryIDs.Add("hat_cap")
	if err := db.Commit(ctx, c); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	// A stale commit without the unlock must not remove it; equipping
	// reflects the latest pet state.
	c.Player.UnlockedAccessoryIDs = domain.NewKeySet()
	c.Pet.EquippedAccessoryIDs = domain.NewKeySet()
	if err := db.Commit(ctx, c); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	agg, _ := db.LoadAggregate(ctx, "player-1")
	if !agg.Player.UnlockedAccessoryIDs.Has("hat_cap") {
		t.Error("unlock was revoked")
	}
	if agg.Pet.EquippedAccessoryIDs.Has("hat_cap") {
		t.Error("unequip was not persisted")
	}
}

func TestListPlayers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i, id := range []string{"b", "a", "c"} {
		c := domain.Commit{Player: domain.Player{
			ID: id, DisplayName: id, CreatedAt: created.Add(time.Duration(i) * time.Second),
		}}
		if err := db.CreateAggregate(ctx, c); err != nil {
			t.Fatalf("CreateAggregate(%s) error: %v", id, err)
		}
	}

	players, err := db.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("ListPlayers() error: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("players = %d, want 3", len(players))
	}
	for i, want := range []string{"b", "a", "c"} {
		if players[i].ID != want {
			t.Errorf("players[%d] = %s, want %s", i, players[i].ID, want)
		}
	}
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

func TestLedgerEntries(t *testing.T) {
	db := newTestDB(t)
	c := seedAggregate(t, db, false)
	ctx := context.Background()

	c.Player.EssenceBalance = 35
	c.Ledger = []domain.LedgerEntry{{
		ID: "le-2", PlayerID: "player-1", At: created.Add(time.Hour),
		Kind: domain.LedgerSpend, Amount: -15, Reason: "treat:small", Balance: 35,
	}}
	if err := db.Commit(ctx, c); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	all, err := db.LedgerEntries(ctx, "player-1", 0)
	if err != nil {
		t.Fatalf("LedgerEntries() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("entries = %d, want 2", len(all))
	}
	if all[0].ID != "le-2" || all[0].Kind != domain.LedgerSpend || all[0].Amount != -15 || all[0].Balance != 35 {
		t.Errorf("newest entry = %+v", all[0])
	}
	if all[1].ID != "le-welcome" {
		t.Errorf("oldest entry = %+v", all[1])
	}

	limited, _ := db.LedgerEntries(ctx, "player-1", 1)
	if len(limited) != 1 || limited[0].ID != "le-2" {
		t.Errorf("limited = %+v", limited)
	}
}

// ─── Templates ──────────────────────────────────────────────────────────────

func TestTemplates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, tmpl := range []domain.WorkoutTemplate{
		{ID: "t2", Name: "Squats", Type: domain.WorkoutStrength, BaseXP: 30, CreatedAt: created},
		{ID: "t1", Name: "Morning Run", Type: domain.WorkoutCardio, BaseXP: 25, CreatedAt: created},
	} {
		if err := db.SaveTemplate(ctx, tmpl); err != nil {
			t.Fatalf("SaveTemplate(%s) error: %v", tmpl.ID, err)
		}
	}

	got, err := db.GetTemplate(ctx, "t2")
	if err != nil {
		t.Fatalf("GetTemplate() error: %v", err)
	}
	if got.Name != "Squats" || got.BaseXP != 30 || got.Type != domain.WorkoutStrength {
		t.Errorf("template = %+v", got)
	}

	list, err := db.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Morning Run" {
		t.Errorf("ListTemplates() = %+v", list)
	}

	// Update in place.
	got.BaseXP = 35
	if err := db.SaveTemplate(ctx, *got); err != nil {
		t.Fatalf("SaveTemplate(update) error: %v", err)
	}
	if again, _ := db.GetTemplate(ctx, "t2"); again.BaseXP != 35 {
		t.Errorf("BaseXP = %d, want 35", again.BaseXP)
	}

	if _, err := db.GetTemplate(ctx, "missing"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("GetTemplate(missing) error = %v, want ErrTemplateNotFound", err)
	}
}
