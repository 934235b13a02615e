package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitpet-app/fitpet/internal/domain"
)

var _ domain.Store = (*DB)(nil)

const (
	unlockAccessory = "accessory"
	unlockCosmetic  = "cosmetic"
)

// ─── Aggregates ─────────────────────────────────────────────────────────────

// CreateAggregate inserts a new player, its pet, and opening ledger entries
// in one transaction.
func (d *DB) CreateAggregate(ctx context.Context, c domain.Commit) error {
	if c.Workout != nil {
		return fmt.Errorf("create aggregate: unexpected workout")
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		p := c.Player
		_, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, display_name, total_xp, current_streak, highest_streak,
				last_workout_date, essence_balance, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.DisplayName, p.TotalXP, p.CurrentStreak, p.HighestStreak,
			dateValue(p.LastWorkoutDate), p.EssenceBalance, toNanos(p.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
		return writeEvent(ctx, tx, c)
	})
}

// Commit persists one event's mutations atomically.
func (d *DB) Commit(ctx context.Context, c domain.Commit) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		p := c.Player
		res, err := tx.ExecContext(ctx,
			`UPDATE players SET display_name = ?, total_xp = ?, current_streak = ?,
				highest_streak = ?, last_workout_date = ?, essence_balance = ?
			 WHERE id = ?`,
			p.DisplayName, p.TotalXP, p.CurrentStreak, p.HighestStreak,
			dateValue(p.LastWorkoutDate), p.EssenceBalance, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, p.ID)
		}
		return writeEvent(ctx, tx, c)
	})
}

// writeEvent writes everything in c except the player row itself.
func writeEvent(ctx context.Context, tx *sql.Tx, c domain.Commit) error {
	p := c.Player
	for kind, keys := range map[string]domain.KeySet{
		unlockAccessory: p.UnlockedAccessoryIDs,
		unlockCosmetic:  p.UnlockedCosmeticKeys,
	} {
		for _, k := range keys.Sorted() {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO player_unlocks (player_id, kind, key) VALUES (?, ?, ?)`,
				p.ID, kind, k,
			); err != nil {
				return fmt.Errorf("insert unlock: %w", err)
			}
		}
	}

	if c.Pet != nil {
		if err := upsertPet(ctx, tx, p.ID, c.Pet); err != nil {
			return err
		}
	}

	if w := c.Workout; w != nil {
		if err := insertWorkout(ctx, tx, w); err != nil {
			return err
		}
	}

	for _, e := range c.Ledger {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO essence_ledger (id, player_id, timestamp, kind, amount, reason, balance)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.PlayerID, toNanos(e.At), string(e.Kind), e.Amount, e.Reason, e.Balance,
		); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

func upsertPet(ctx context.Context, tx *sql.Tx, playerID string, pet *domain.Pet) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO pets (id, player_id, name, species, total_xp, happiness, happiness_updated,
			is_away, stage, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			total_xp=excluded.total_xp,
			happiness=excluded.happiness,
			happiness_updated=excluded.happiness_updated,
			is_away=excluded.is_away,
			stage=excluded.stage`,
		pet.ID, playerID, pet.Name, string(pet.Species), pet.TotalXP, pet.Happiness,
		toNanos(pet.LastHappinessUpdateAt), pet.IsAway, string(pet.Stage), toNanos(pet.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert pet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pet_accessories WHERE pet_id = ?`, pet.ID); err != nil {
		return fmt.Errorf("clear equipped: %w", err)
	}
	for _, id := range pet.EquippedAccessoryIDs.Sorted() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pet_accessories (pet_id, accessory_id) VALUES (?, ?)`, pet.ID, id,
		); err != nil {
			return fmt.Errorf("insert equipped: %w", err)
		}
	}
	return nil
}

func insertWorkout(ctx context.Context, tx *sql.Tx, w *domain.Workout) error {
	var (
		weight, duration, calories sql.NullFloat64
		reps, sets, steps          sql.NullInt64
	)
	if s := w.Strength; s != nil {
		weight = sql.NullFloat64{Float64: s.Weight, Valid: true}
		reps = sql.NullInt64{Int64: int64(s.Reps), Valid: true}
		sets = sql.NullInt64{Int64: int64(s.Sets), Valid: true}
	}
	if c := w.Cardio; c != nil {
		duration = sql.NullFloat64{Float64: c.DurationMinutes, Valid: true}
		if c.Steps != nil {
			steps = sql.NullInt64{Int64: *c.Steps, Valid: true}
		}
		if c.Calories != nil {
			calories = sql.NullFloat64{Float64: *c.Calories, Valid: true}
		}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO workouts (id, player_id, type, xp_earned, pet_xp_earned, weight, reps, sets,
			duration_minutes, steps, calories, template_id, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.PlayerID, string(w.Type), w.XPEarned, w.PetXPEarned, weight, reps, sets,
		duration, steps, calories, nullString(w.TemplateID), toNanos(w.At),
	)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

// LoadAggregate returns the player, pet, and full workout history.
func (d *DB) LoadAggregate(ctx context.Context, playerID string) (*domain.Aggregate, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, display_name, total_xp, current_streak, highest_streak,
			last_workout_date, essence_balance, created_at
		 FROM players WHERE id = ?`, playerID,
	)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
	}
	if err != nil {
		return nil, err
	}

	if err := d.loadUnlocks(ctx, player); err != nil {
		return nil, err
	}

	agg := &domain.Aggregate{Player: *player}
	if agg.Pet, err = d.loadPet(ctx, playerID); err != nil {
		return nil, err
	}
	if agg.Workouts, err = d.loadWorkouts(ctx, playerID); err != nil {
		return nil, err
	}
	return agg, nil
}

func (d *DB) loadUnlocks(ctx context.Context, p *domain.Player) error {
	p.UnlockedAccessoryIDs = domain.NewKeySet()
	p.UnlockedCosmeticKeys = domain.NewKeySet()

	rows, err := d.db.QueryContext(ctx,
		`SELECT kind, key FROM player_unlocks WHERE player_id = ?`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, key string
		if err := rows.Scan(&kind, &key); err != nil {
			return err
		}
		switch kind {
		case unlockAccessory:
			p.UnlockedAccessoryIDs.Add(key)
		case unlockCosmetic:
			p.UnlockedCosmeticKeys.Add(key)
		}
	}
	return rows.Err()
}

func (d *DB) loadPet(ctx context.Context, playerID string) (*domain.Pet, error) {
	var (
		pet              domain.Pet
		species, stage   string
		updated, created int64
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, species, total_xp, happiness, happiness_updated, is_away, stage, created_at
		 FROM pets WHERE player_id = ?`, playerID,
	).Scan(&pet.ID, &pet.Name, &species, &pet.TotalXP, &pet.Happiness, &updated,
		&pet.IsAway, &stage, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No pet, no error
	}
	if err != nil {
		return nil, err
	}
	pet.Species = domain.Species(species)
	pet.Stage = domain.EvolutionStage(stage)
	pet.LastHappinessUpdateAt = fromNanos(updated)
	pet.CreatedAt = fromNanos(created)

	pet.EquippedAccessoryIDs = domain.NewKeySet()
	rows, err := d.db.QueryContext(ctx,
		`SELECT accessory_id FROM pet_accessories WHERE pet_id = ?`, pet.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		pet.EquippedAccessoryIDs.Add(id)
	}
	return &pet, rows.Err()
}

func (d *DB) loadWorkouts(ctx context.Context, playerID string) ([]domain.Workout, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, player_id, type, xp_earned, pet_xp_earned, weight, reps, sets,
			duration_minutes, steps, calories, template_id, at
		 FROM workouts WHERE player_id = ? ORDER BY at, rowid`, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []domain.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// ListPlayers returns all players ordered by creation.
func (d *DB) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, display_name, total_xp, current_streak, highest_streak,
			last_workout_date, essence_balance, created_at
		 FROM players ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// ─── Essence Ledger ─────────────────────────────────────────────────────────

// LedgerEntries returns a player's newest essence movements first.
// limit <= 0 returns all of them.
func (d *DB) LedgerEntries(ctx context.Context, playerID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, player_id, timestamp, kind, amount, reason, balance
		 FROM essence_ledger WHERE player_id = ? ORDER BY seq DESC LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e    domain.LedgerEntry
			ts   int64
			kind string
		)
		if err := rows.Scan(&e.ID, &e.PlayerID, &ts, &kind, &e.Amount, &e.Reason, &e.Balance); err != nil {
			return nil, err
		}
		e.At = fromNanos(ts)
		e.Kind = domain.LedgerKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─── Templates ──────────────────────────────────────────────────────────────

// SaveTemplate inserts or updates a workout template.
func (d *DB) SaveTemplate(ctx context.Context, t domain.WorkoutTemplate) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, type, base_xp, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			type=excluded.type,
			base_xp=excluded.base_xp`,
		t.ID, t.Name, string(t.Type), t.BaseXP, toNanos(t.CreatedAt),
	)
	return err
}

// GetTemplate retrieves a template by id.
func (d *DB) GetTemplate(ctx context.Context, id string) (*domain.WorkoutTemplate, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, name, type, base_xp, created_at FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return t, err
}

// ListTemplates returns all templates ordered by name.
func (d *DB) ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, type, base_xp, created_at FROM templates ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkoutTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ─── Scanners ───────────────────────────────────────────────────────────────

func scanPlayer(s scanner) (*domain.Player, error) {
	var (
		p       domain.Player
		last    sql.NullString
		created int64
	)
	if err := s.Scan(&p.ID, &p.DisplayName, &p.TotalXP, &p.CurrentStreak, &p.HighestStreak,
		&last, &p.EssenceBalance, &created); err != nil {
		return nil, err
	}
	if last.Valid {
		date, err := domain.ParseDate(last.String)
		if err != nil {
			return nil, err
		}
		p.LastWorkoutDate = &date
	}
	p.CreatedAt = fromNanos(created)
	return &p, nil
}

func scanWorkout(s scanner) (*domain.Workout, error) {
	var (
		w                          domain.Workout
		wt                         string
		weight, duration, calories sql.NullFloat64
		reps, sets, steps          sql.NullInt64
		templateID                 sql.NullString
		at                         int64
	)
	if err := s.Scan(&w.ID, &w.PlayerID, &wt, &w.XPEarned, &w.PetXPEarned, &weight, &reps, &sets,
		&duration, &steps, &calories, &templateID, &at); err != nil {
		return nil, err
	}
	w.Type = domain.WorkoutType(wt)
	w.At = fromNanos(at)
	w.TemplateID = templateID.String

	switch w.Type {
	case domain.WorkoutStrength:
		w.Strength = &domain.StrengthMetrics{
			Weight: weight.Float64,
			Reps:   int(reps.Int64),
			Sets:   int(sets.Int64),
		}
	case domain.WorkoutCardio:
		c := &domain.CardioMetrics{DurationMinutes: duration.Float64}
		if steps.Valid {
			v := steps.Int64
			c.Steps = &v
		}
		if calories.Valid {
			v := calories.Float64
			c.Calories = &v
		}
		w.Cardio = c
	}
	return &w, nil
}

func scanTemplate(s scanner) (*domain.WorkoutTemplate, error) {
	var (
		t       domain.WorkoutTemplate
		wt      string
		created int64
	)
	if err := s.Scan(&t.ID, &t.Name, &wt, &t.BaseXP, &created); err != nil {
		return nil, err
	}
	t.Type = domain.WorkoutType(wt)
	t.CreatedAt = fromNanos(created)
	return &t, nil
}

func dateValue(d *domain.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
