package progression

import (
	"fmt"
	"math"
	"sort"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// Curve maps cumulative XP to levels.
//
//	threshold(L) = ceil(Base × (L-1)^Exponent), threshold(1) = 0
//
// With Base >= 1 and Exponent >= 1 the thresholds are strictly increasing,
// so every nonnegative XP value belongs to exactly one level. XP past the
// MaxLevel threshold stays at MaxLevel.
type Curve struct {
	Base     float64 `toml:"base"`
	Exponent float64 `toml:"exponent"`
	MaxLevel int     `toml:"max_level"`
}

// DefaultPlayerCurve is the player's leveling track.
// L2=100, L3=283, L10=2700, L101=100000.
func DefaultPlayerCurve() Curve {
	return Curve{Base: 100, Exponent: 1.5, MaxLevel: 1000}
}

// Validate rejects curves that are not strictly increasing or overflow int64.
func (c Curve) Validate() error {
	if c.Base < 1 {
		return fmt.Errorf("curve: base must be >= 1, got %v", c.Base)
	}
	if c.Exponent < 1 {
		return fmt.Errorf("curve: exponent must be >= 1, got %v", c.Exponent)
	}
	if c.MaxLevel < 2 {
		return fmt.Errorf("curve: max_level must be >= 2, got %d", c.MaxLevel)
	}
	if c.Base*math.Pow(float64(c.MaxLevel-1), c.Exponent) >= math.MaxInt64/2 {
		return fmt.Errorf("curve: max_level %d overflows the xp range", c.MaxLevel)
	}
	return nil
}

// XPForLevel returns the cumulative XP required to reach level.
func (c Curve) XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > c.MaxLevel {
		level = c.MaxLevel
	}
	return ceilXP(c.Base * math.Pow(float64(level-1), c.Exponent))
}

// ceilXP rounds up while ignoring Pow noise: 100 × 9^1.5 evaluates to
// 2700.0000000000005 and must still be 2700.
func ceilXP(v float64) int64 {
	return int64(math.Ceil(v - 1e-6))
}

// LevelFor returns the level for a cumulative XP amount.
// Binary search for the highest L with XPForLevel(L) <= xp.
func (c Curve) LevelFor(xp int64) int {
	if xp <= 0 {
		return 1
	}
	low, high := 1, c.MaxLevel
	for low < high {
		mid := low + (high-low+1)/2
		if c.XPForLevel(mid) <= xp {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// XPRangeFor returns the half-open XP interval [start, end) of level.
// The top level's range ends at math.MaxInt64.
func (c Curve) XPRangeFor(level int) (start, end int64) {
	if level < 1 {
		level = 1
	}
	if level >= c.MaxLevel {
		return c.XPForLevel(c.MaxLevel), math.MaxInt64
	}
	return c.XPForLevel(level), c.XPForLevel(level + 1)
}

// XPToNextLevel returns XP remaining until the next level (0 at max level).
func (c Curve) XPToNextLevel(xp int64) int64 {
	level := c.LevelFor(xp)
	if level >= c.MaxLevel {
		return 0
	}
	remaining := c.XPForLevel(level+1) - xp
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ProgressPct returns progress toward the next level (0.0–100.0).
func (c Curve) ProgressPct(xp int64) float64 {
	level := c.LevelFor(xp)
	if level >= c.MaxLevel {
		return 100.0
	}
	start, end := c.XPRangeFor(level)
	span := end - start
	if span <= 0 {
		return 100.0
	}
	progress := float64(xp-start) / float64(span) * 100.0
	return math.Max(0, math.Min(100, progress))
}

// ─── Ranks ──────────────────────────────────────────────────────────────────

// RankBand is the lowest level at which a rank applies.
type RankBand struct {
	Rank     domain.Rank `toml:"rank"`
	MinLevel int         `toml:"min_level"`
}

// Ranks is a step function over level bands, ordered by MinLevel.
type Ranks []RankBand

// DefaultRanks: bronze 1–10, silver 11–25, gold 26–50, platinum 51–100, diamond 101+.
func DefaultRanks() Ranks {
	return Ranks{
		{Rank: domain.RankBronze, MinLevel: 1},
		{Rank: domain.RankSilver, MinLevel: 11},
		{Rank: domain.RankGold, MinLevel: 26},
		{Rank: domain.RankPlatinum, MinLevel: 51},
		{Rank: domain.RankDiamond, MinLevel: 101},
	}
}

// Validate requires a band starting at level 1 and strictly increasing bands.
func (r Ranks) Validate() error {
	if len(r) == 0 || r[0].MinLevel != 1 {
		return fmt.Errorf("ranks: first band must start at level 1")
	}
	for i := 1; i < len(r); i++ {
		if r[i].MinLevel <= r[i-1].MinLevel {
			return fmt.Errorf("ranks: band %q must start above %q", r[i].Rank, r[i-1].Rank)
		}
	}
	return nil
}

// RankFor returns the rank of a level.
func (r Ranks) RankFor(level int) domain.Rank {
	for i := len(r) - 1; i >= 0; i-- {
		if level >= r[i].MinLevel {
			return r[i].Rank
		}
	}
	if len(r) > 0 {
		return r[0].Rank
	}
	return domain.RankBronze
}

// ─── Levels ─────────────────────────────────────────────────────────────────

// LevelRules couples the player curve with rank bands and milestone levels.
type LevelRules struct {
	Curve      Curve `toml:"curve"`
	Ranks      Ranks `toml:"ranks"`
	Milestones []int `toml:"milestones"`
}

// DefaultLevelRules returns the production player leveling configuration.
func DefaultLevelRules() LevelRules {
	return LevelRules{
		Curve:      DefaultPlayerCurve(),
		Ranks:      DefaultRanks(),
		Milestones: []int{5, 10, 11, 15, 20, 25, 26, 30, 40, 50, 51, 75, 100, 101},
	}
}

// Validate checks the curve and rank bands.
func (l LevelRules) Validate() error {
	if err := l.Curve.Validate(); err != nil {
		return err
	}
	return l.Ranks.Validate()
}

// LevelFor is shorthand for l.Curve.LevelFor.
func (l LevelRules) LevelFor(xp int64) int { return l.Curve.LevelFor(xp) }

// XPRangeFor is shorthand for l.Curve.XPRangeFor.
func (l LevelRules) XPRangeFor(level int) (int64, int64) { return l.Curve.XPRangeFor(level) }

// RankFor is shorthand for l.Ranks.RankFor.
func (l LevelRules) RankFor(level int) domain.Rank { return l.Ranks.RankFor(level) }

// IsMilestone reports whether reaching level triggers unlock re-evaluation.
func (l LevelRules) IsMilestone(level int) bool {
	for _, m := range l.Milestones {
		if m == level {
			return true
		}
	}
	return false
}

// MilestoneLevels returns the configured milestone levels in ascending order.
func (l LevelRules) MilestoneLevels() []int {
	out := append([]int(nil), l.Milestones...)
	sort.Ints(out)
	return out
}

// MilestonesCrossed returns milestones in (from, to], ascending.
func (l LevelRules) MilestonesCrossed(from, to int) []int {
	var crossed []int
	for _, m := range l.MilestoneLevels() {
		if m > from && m <= to {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
