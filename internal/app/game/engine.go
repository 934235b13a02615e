// Package game orchestrates the progression, pet, and economy rules over
// a persisted player aggregate.
//
// Every mutating call loads one aggregate, applies lazy pet decay, runs
// the pure rules, and hands the result to the Store as a single Commit.
// The engine does no locking: callers serialize mutations per player.
package game

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitpet-app/fitpet/internal/app/economy"
	"github.com/fitpet-app/fitpet/internal/app/pet"
	"github.com/fitpet-app/fitpet/internal/app/progression"
	"github.com/fitpet-app/fitpet/internal/domain"
	"github.com/fitpet-app/fitpet/internal/infra/metrics"
)

// Engine runs player commands against a Store.
type Engine struct {
	store   domain.Store
	clock   domain.Clock
	rules   Rules
	pets    *pet.Simulator
	unlocks *progression.Evaluator
	catalog *economy.Catalog
	logger  *zap.Logger
}

// NewEngine validates rules and wires the calculators. A nil logger
// discards output.
func NewEngine(store domain.Store, clock domain.Clock, rules Rules, logger *zap.Logger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	catalog, err := economy.NewCatalog(rules.Accessories)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		clock:   clock,
		rules:   rules,
		pets:    pet.NewSimulator(rules.Pet),
		unlocks: progression.NewEvaluator(rules.Unlocks),
		catalog: catalog,
		logger:  logger.Named("engine"),
	}, nil
}

// Rules returns the engine's tuning.
func (e *Engine) Rules() Rules { return e.rules }

// ─── Players ────────────────────────────────────────────────────────────────

// NewPlayer describes a player to create. An empty Species creates a
// player without a pet.
type NewPlayer struct {
	DisplayName string         `json:"display_name"`
	PetName     string         `json:"pet_name"`
	Species     domain.Species `json:"species"`
}

// CreatePlayer bootstraps a player with the starting essence balance and,
// optionally, a baby pet at full happiness.
func (e *Engine) CreatePlayer(ctx context.Context, in NewPlayer) (*Status, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}
	now := e.clock.Now()

	player := domain.Player{
		ID:                   uuid.NewString(),
		DisplayName:          name,
		UnlockedAccessoryIDs: domain.NewKeySet(),
		UnlockedCosmeticKeys: domain.NewKeySet(),
		CreatedAt:            now,
	}

	var p *domain.Pet
	if in.Species != "" {
		if in.Species.Legacy() {
			return nil, fmt.Errorf("%w: %q is no longer offered", domain.ErrUnknownSpecies, in.Species)
		}
		petName := strings.TrimSpace(in.PetName)
		if petName == "" {
			petName = strings.ToUpper(string(in.Species[:1])) + string(in.Species[1:])
		}
		created, err := e.pets.New(uuid.NewString(), petName, in.Species, now)
		if err != nil {
			return nil, err
		}
		p = &created
	}

	ledger := economy.NewLedger(&player, now)
	if amt := e.rules.Economy.StartingBalance; amt > 0 {
		if err := ledger.Earn(amt, "welcome"); err != nil {
			return nil, err
		}
	}

	c := domain.Commit{Player: player, Pet: p, Ledger: ledger.Entries()}
	if err := e.store.CreateAggregate(ctx, c); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	metrics.EssenceEarned.Add(float64(e.rules.Economy.StartingBalance))
	e.logger.Info("player created",
		zap.String("player", player.ID),
		zap.String("name", player.DisplayName),
		zap.String("species", string(in.Species)))

	return e.statusOf(&domain.Aggregate{Player: player, Pet: p}), nil
}

// Players lists every player.
func (e *Engine) Players(ctx context.Context) ([]domain.Player, error) {
	return e.store.ListPlayers(ctx)
}

// Status returns the player's snapshot with pet decay applied as of now.
// Nothing is persisted.
func (e *Engine) Status(ctx context.Context, playerID string) (*Status, error) {
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if agg.Pet != nil {
		e.pets.Decay(agg.Pet, e.clock.Now())
	}
	return e.statusOf(agg), nil
}

// Refresh applies pending pet decay and persists it. Returns what the
// decay changed along with the new status.
func (e *Engine) Refresh(ctx context.Context, playerID string) (*Status, pet.DecayResult, error) {
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, pet.DecayResult{}, err
	}
	if agg.Pet == nil {
		return e.statusOf(agg), pet.DecayResult{}, nil
	}

	decay := e.pets.Decay(agg.Pet, e.clock.Now())
	if err := e.store.Commit(ctx, domain.Commit{Player: agg.Player, Pet: agg.Pet}); err != nil {
		return nil, decay, fmt.Errorf("refresh: %w", err)
	}
	e.observeDecay(agg.Player.ID, decay)
	return e.statusOf(agg), decay, nil
}

// ─── Workouts ───────────────────────────────────────────────────────────────

// WorkoutInput is one completed workout. When TemplateID is set the
// template supplies base XP and must match Type.
type WorkoutInput struct {
	Type       domain.WorkoutType      `json:"type"`
	TemplateID string                  `json:"template_id,omitempty"`
	Strength   *domain.StrengthMetrics `json:"strength,omitempty"`
	Cardio     *domain.CardioMetrics   `json:"cardio,omitempty"`
}

// WorkoutResult reports everything one workout changed.
type WorkoutResult struct {
	Workout       domain.Workout           `json:"workout"`
	Streak        progression.StreakUpdate `json:"streak"`
	StreakBonus   string                   `json:"streak_bonus"`
	OldLevel      int                      `json:"old_level"`
	NewLevel      int                      `json:"new_level"`
	OldRank       domain.Rank              `json:"old_rank"`
	NewRank       domain.Rank              `json:"new_rank"`
	Milestones    []int                    `json:"milestones,omitempty"`
	NewUnlocks    []string                 `json:"new_unlocks,omitempty"`
	EssenceEarned int64                    `json:"essence_earned"`
	PetDecay      pet.DecayResult          `json:"pet_decay"`
	PetXP         *pet.XPAward             `json:"pet_xp,omitempty"`
	PetBoosted    bool                     `json:"pet_boosted"`
	Status        *Status                  `json:"status"`
}

// LeveledUp reports whether the player crossed at least one level.
func (r WorkoutResult) LeveledUp() bool { return r.NewLevel > r.OldLevel }

// LogWorkout runs the workout pipeline: decay the pet, advance the streak,
// award player XP, re-resolve level and rank, credit essence, evaluate
// unlocks, award pet XP, and boost pet happiness. Everything commits
// together or not at all.
func (e *Engine) LogWorkout(ctx context.Context, playerID string, in WorkoutInput) (*WorkoutResult, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown workout type %q", domain.ErrInvalidMetric, in.Type)
	}

	baseXP := e.rules.XP.DefaultBaseXP
	if in.TemplateID != "" {
		tmpl, err := e.store.GetTemplate(ctx, in.TemplateID)
		if err != nil {
			return nil, err
		}
		if tmpl.Type != in.Type {
			return nil, fmt.Errorf("%w: template %q is %s, workout is %s",
				domain.ErrInvalidMetric, tmpl.ID, tmpl.Type, in.Type)
		}
		baseXP = tmpl.BaseXP
	}

	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	player := &agg.Player
	res := &WorkoutResult{}

	if agg.Pet != nil {
		res.PetDecay = e.pets.Decay(agg.Pet, now)
	}

	res.Streak = progression.StreakOf(*player).Record(now, e.clock.Location())
	xp, err := e.rules.XP.ComputeXP(baseXP, in.Type, res.Streak.State.Current,
		res.Streak.IsFirstWorkoutOfDay, in.Strength, in.Cardio)
	if err != nil {
		metrics.WorkoutsRejected.WithLabelValues(string(in.Type)).Inc()
		return nil, err
	}
	res.StreakBonus = e.rules.XP.StreakBonusText(res.Streak.State.Current)

	// Player XP, level, rank.
	res.OldLevel = e.rules.Levels.LevelFor(player.TotalXP)
	res.OldRank = e.rules.Levels.RankFor(res.OldLevel)
	player.TotalXP = addXP(player.TotalXP, xp)
	res.Streak.State.Apply(player)
	res.NewLevel = e.rules.Levels.LevelFor(player.TotalXP)
	res.NewRank = e.rules.Levels.RankFor(res.NewLevel)
	res.Milestones = e.rules.Levels.MilestonesCrossed(res.OldLevel, res.NewLevel)

	// Essence.
	ledger := economy.NewLedger(player, now)
	if amt := e.rules.Economy.EssenceForXP(xp); amt > 0 {
		if err := ledger.Earn(amt, "workout"); err != nil {
			return nil, err
		}
		res.EssenceEarned += amt
	}
	if gained := res.NewLevel - res.OldLevel; gained > 0 && e.rules.Economy.LevelUpBonus > 0 {
		bonus := int64(gained) * e.rules.Economy.LevelUpBonus
		if err := ledger.Earn(bonus, fmt.Sprintf("level_up:%d", res.NewLevel)); err != nil {
			return nil, err
		}
		res.EssenceEarned += bonus
	}

	// Unlocks.
	if player.UnlockedCosmeticKeys == nil {
		player.UnlockedCosmeticKeys = domain.NewKeySet()
	}
	stats := domain.UnlockStats{
		Level:         res.NewLevel,
		HighestStreak: player.HighestStreak,
		WorkoutCount:  len(agg.Workouts) + 1,
	}
	for _, key := range e.unlocks.Evaluate(stats, player.UnlockedCosmeticKeys) {
		player.UnlockedCosmeticKeys.Add(key)
		res.NewUnlocks = append(res.NewUnlocks, key)
	}

	// Pet.
	var petXP int64
	if agg.Pet != nil && !agg.Pet.IsAway {
		award := e.pets.AwardXP(agg.Pet, xp, in.Type)
		res.PetXP = &award
		petXP = award.Amount
		res.PetBoosted = e.pets.ApplyWorkoutBoost(agg.Pet) == nil
	}

	w := domain.Workout{
		ID:          uuid.NewString(),
		PlayerID:    player.ID,
		Type:        in.Type,
		XPEarned:    xp,
		PetXPEarned: petXP,
		Strength:    in.Strength,
		Cardio:      in.Cardio,
		At:          now,
		TemplateID:  in.TemplateID,
	}

	c := domain.Commit{Player: *player, Pet: agg.Pet, Workout: &w, Ledger: ledger.Entries()}
	if err := e.store.Commit(ctx, c); err != nil {
		return nil, fmt.Errorf("log workout: %w", err)
	}
	res.Workout = w
	agg.Workouts = append(agg.Workouts, w)

	e.observeWorkout(player.ID, res)
	res.Status = e.statusOf(agg)
	return res, nil
}

func addXP(total, xp int64) int64 {
	if total > math.MaxInt64-xp {
		return math.MaxInt64
	}
	return total + xp
}

func (e *Engine) observeWorkout(playerID string, res *WorkoutResult) {
	wt := string(res.Workout.Type)
	metrics.WorkoutsLogged.WithLabelValues(wt).Inc()
	metrics.WorkoutXP.WithLabelValues(wt).Observe(float64(res.Workout.XPEarned))
	metrics.XPAwarded.WithLabelValues("player").Add(float64(res.Workout.XPEarned))
	metrics.EssenceEarned.Add(float64(res.EssenceEarned))

	e.logger.Info("workout logged",
		zap.String("player", playerID),
		zap.String("type", wt),
		zap.Int64("xp", res.Workout.XPEarned),
		zap.Int("streak", res.Streak.State.Current),
		zap.Bool("first_of_day", res.Streak.IsFirstWorkoutOfDay))

	if res.Streak.Broken {
		metrics.StreaksBroken.Inc()
	}
	if res.LeveledUp() {
		metrics.LevelUps.Add(float64(res.NewLevel - res.OldLevel))
		e.logger.Info("level up",
			zap.String("player", playerID),
			zap.Int("level", res.NewLevel),
			zap.String("rank", string(res.NewRank)),
			zap.Ints("milestones", res.Milestones))
	}
	for _, key := range res.NewUnlocks {
		metrics.Unlocks.WithLabelValues(key).Inc()
	}
	if len(res.NewUnlocks) > 0 {
		e.logger.Info("unlocked", zap.String("player", playerID), zap.Strings("keys", res.NewUnlocks))
	}

	e.observeDecay(playerID, res.PetDecay)
	if res.PetXP != nil {
		metrics.XPAwarded.WithLabelValues("pet").Add(float64(res.PetXP.Amount))
		if res.PetXP.Evolved() {
			metrics.PetEvolutions.WithLabelValues(string(res.PetXP.NewStage)).Inc()
			e.logger.Info("pet evolved",
				zap.String("player", playerID),
				zap.String("stage", string(res.PetXP.NewStage)))
		}
	}
}

func (e *Engine) observeDecay(playerID string, d pet.DecayResult) {
	if d.WentAway {
		metrics.PetsWentAway.Inc()
		e.logger.Warn("pet went away", zap.String("player", playerID))
	}
}

// ─── Pet care ───────────────────────────────────────────────────────────────

// FeedTreat buys a treat and feeds it to the player's pet.
func (e *Engine) FeedTreat(ctx context.Context, playerID string, tier domain.TreatTier) (*Status, error) {
	agg, err := e.loadWithPet(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	decay := e.pets.Decay(agg.Pet, now)

	balance, err := e.pets.Feed(agg.Pet, tier, agg.Player.EssenceBalance)
	if err != nil {
		return nil, err
	}
	ledger := economy.NewLedger(&agg.Player, now)
	spent := agg.Player.EssenceBalance - balance
	if err := ledger.Settle(balance, "treat:"+string(tier)); err != nil {
		return nil, err
	}

	c := domain.Commit{Player: agg.Player, Pet: agg.Pet, Ledger: ledger.Entries()}
	if err := e.store.Commit(ctx, c); err != nil {
		return nil, fmt.Errorf("feed treat: %w", err)
	}
	e.observeDecay(playerID, decay)
	metrics.TreatsFed.WithLabelValues(string(tier)).Inc()
	metrics.EssenceSpent.WithLabelValues("treat").Add(float64(spent))
	e.logger.Info("treat fed",
		zap.String("player", playerID),
		zap.String("tier", string(tier)),
		zap.Float64("happiness", agg.Pet.Happiness))
	return e.statusOf(agg), nil
}

// RecoverPet brings an away pet back by the given method.
func (e *Engine) RecoverPet(ctx context.Context, playerID string, method domain.RecoveryMethod) (*Status, error) {
	agg, err := e.loadWithPet(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	decay := e.pets.Decay(agg.Pet, now)
	ledger := economy.NewLedger(&agg.Player, now)

	switch method {
	case domain.RecoverByWorkouts:
		recent := e.pets.RecentWorkouts(agg.Workouts, now)
		if err := e.pets.RecoverWithWorkouts(agg.Pet, recent, now); err != nil {
			return nil, err
		}
	case domain.RecoverByEssence:
		balance, err := e.pets.RecoverWithEssence(agg.Pet, agg.Player.EssenceBalance, now)
		if err != nil {
			return nil, err
		}
		if err := ledger.Settle(balance, "pet_recovery"); err != nil {
			return nil, err
		}
		metrics.EssenceSpent.WithLabelValues("recovery").Add(float64(e.rules.Pet.RecoveryCost))
	default:
		return nil, fmt.Errorf("%w: unknown recovery method %q", domain.ErrRecoveryIneligible, method)
	}

	c := domain.Commit{Player: agg.Player, Pet: agg.Pet, Ledger: ledger.Entries()}
	if err := e.store.Commit(ctx, c); err != nil {
		return nil, fmt.Errorf("recover pet: %w", err)
	}
	e.observeDecay(playerID, decay)
	metrics.PetRecoveries.WithLabelValues(string(method)).Inc()
	e.logger.Info("pet recovered", zap.String("player", playerID), zap.String("method", string(method)))
	return e.statusOf(agg), nil
}

func (e *Engine) loadWithPet(ctx context.Context, playerID string) (*domain.Aggregate, error) {
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if agg.Pet == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNoPet, playerID)
	}
	return agg, nil
}

// Treats lists the treat menu.
func (e *Engine) Treats() []pet.TreatRule {
	return append([]pet.TreatRule(nil), e.rules.Pet.Treats...)
}

// ─── Shop ───────────────────────────────────────────────────────────────────

// ShopItem is a catalog entry annotated for one player.
type ShopItem struct {
	domain.Accessory
	Owned      bool `json:"owned"`
	Equipped   bool `json:"equipped"`
	Affordable bool `json:"affordable"`
}

// Catalog returns the accessory catalog.
func (e *Engine) Catalog() []domain.Accessory { return e.catalog.List() }

// Shop returns the catalog annotated with the player's ownership.
func (e *Engine) Shop(ctx context.Context, playerID string) ([]ShopItem, error) {
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	items := make([]ShopItem, 0, len(e.catalog.List()))
	for _, a := range e.catalog.List() {
		item := ShopItem{
			Accessory:  a,
			Owned:      agg.Player.UnlockedAccessoryIDs.Has(a.ID),
			Affordable: agg.Player.EssenceBalance >= a.Cost,
		}
		if agg.Pet != nil {
			item.Equipped = agg.Pet.EquippedAccessoryIDs.Has(a.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

// PurchaseAccessory buys an accessory from the catalog.
func (e *Engine) PurchaseAccessory(ctx context.Context, playerID, accessoryID string) (*Status, error) {
	acc, err := e.catalog.Get(accessoryID)
	if err != nil {
		return nil, err
	}
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	if agg.Pet != nil {
		e.pets.Decay(agg.Pet, now)
	}

	ledger := economy.NewLedger(&agg.Player, now)
	if err := ledger.Buy(acc); err != nil {
		return nil, err
	}
	c := domain.Commit{Player: agg.Player, Pet: agg.Pet, Ledger: ledger.Entries()}
	if err := e.store.Commit(ctx, c); err != nil {
		return nil, fmt.Errorf("purchase: %w", err)
	}
	metrics.AccessoriesPurchased.WithLabelValues(string(acc.Rarity)).Inc()
	metrics.EssenceSpent.WithLabelValues("accessory").Add(float64(acc.Cost))
	e.logger.Info("accessory purchased",
		zap.String("player", playerID),
		zap.String("accessory", acc.ID),
		zap.Int64("cost", acc.Cost))
	return e.statusOf(agg), nil
}

// EquipAccessory puts an owned accessory on the pet.
func (e *Engine) EquipAccessory(ctx context.Context, playerID, accessoryID string) (*Status, error) {
	return e.toggleAccessory(ctx, playerID, accessoryID, economy.Equip)
}

// UnequipAccessory takes an owned accessory off the pet.
func (e *Engine) UnequipAccessory(ctx context.Context, playerID, accessoryID string) (*Status, error) {
	return e.toggleAccessory(ctx, playerID, accessoryID, economy.Unequip)
}

func (e *Engine) toggleAccessory(ctx context.Context, playerID, accessoryID string,
	apply func(domain.Player, *domain.Pet, string) error) (*Status, error) {
	if _, err := e.catalog.Get(accessoryID); err != nil {
		return nil, err
	}
	agg, err := e.loadWithPet(ctx, playerID)
	if err != nil {
		return nil, err
	}
	e.pets.Decay(agg.Pet, e.clock.Now())
	if err := apply(agg.Player, agg.Pet, accessoryID); err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx, domain.Commit{Player: agg.Player, Pet: agg.Pet}); err != nil {
		return nil, fmt.Errorf("accessory: %w", err)
	}
	return e.statusOf(agg), nil
}

// ─── Templates ──────────────────────────────────────────────────────────────

// CreateTemplate saves a named workout template.
func (e *Engine) CreateTemplate(ctx context.Context, name string, t domain.WorkoutType, baseXP int64) (*domain.WorkoutTemplate, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: template name is required", domain.ErrInvalidInput)
	case !t.Valid():
		return nil, fmt.Errorf("%w: unknown workout type %q", domain.ErrInvalidMetric, t)
	case baseXP < 0:
		return nil, fmt.Errorf("%w: base xp must be >= 0, got %d", domain.ErrInvalidMetric, baseXP)
	}
	tmpl := domain.WorkoutTemplate{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      t,
		BaseXP:    baseXP,
		CreatedAt: e.clock.Now(),
	}
	if err := e.store.SaveTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return &tmpl, nil
}

// Templates lists saved workout templates.
func (e *Engine) Templates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return e.store.ListTemplates(ctx)
}

// ─── History ────────────────────────────────────────────────────────────────

// History returns the player's workouts, newest first. limit <= 0 means all.
func (e *Engine) History(ctx context.Context, playerID string, limit int) ([]domain.Workout, error) {
	agg, err := e.store.LoadAggregate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	n := len(agg.Workouts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Workout, 0, n)
	for i := len(agg.Workouts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, agg.Workouts[i])
	}
	return out, nil
}

// Ledger returns the player's newest essence movements.
func (e *Engine) Ledger(ctx context.Context, playerID string, limit int) ([]domain.LedgerEntry, error) {
	if _, err := e.store.LoadAggregate(ctx, playerID); err != nil {
		return nil, err
	}
	return e.store.LedgerEntries(ctx, playerID, limit)
}

// ─── Progression queries ────────────────────────────────────────────────────

// Milestones returns the configured milestone levels.
func (e *Engine) Milestones() []int { return e.rules.Levels.MilestoneLevels() }

// MilestoneUnlocks previews the unlock keys whose level gate is exactly level.
func (e *Engine) MilestoneUnlocks(level int) []string {
	return e.unlocks.UnlocksAtLevel(level)
}

// Requirements lists the unlock table.
func (e *Engine) Requirements() []progression.Requirement {
	return e.unlocks.Requirements()
}
