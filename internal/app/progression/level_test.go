package progression_test

import (
	"math"
	"testing"

	"github.com/fitpet-app/fitpet/internal/app/progression"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Level Curve Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestXPForLevel_Thresholds(t *testing.T) {
	c := progression.DefaultPlayerCurve()
	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 283}, // ceil(100 × 2^1.5)
		{10, 2700},
		{101, 100000},
	}
	for _, tt := range tests {
		if got := c.XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestXPForLevel_StrictlyIncreasing(t *testing.T) {
	c := progression.DefaultPlayerCurve()
	prev := c.XPForLevel(1)
	for lvl := 2; lvl <= c.MaxLevel; lvl++ {
		xp := c.XPForLevel(lvl)
		if xp <= prev {
			t.Fatalf("level %d XP (%d) not greater than level %d (%d)", lvl, xp, lvl-1, prev)
		}
		prev = xp
	}
}

func TestLevelFor(t *testing.T) {
	c := progression.DefaultPlayerCurve()
	tests := []struct {
		xp   int64
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{282, 2},
		{283, 3},
		{2699, 9},
		{2700, 10},
		{100000, 101},
		{math.MaxInt64, c.MaxLevel},
	}
	for _, tt := range tests {
		if got := c.LevelFor(tt.xp); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelFor_MonotonicAndTotal(t *testing.T) {
	c := progression.DefaultPlayerCurve()
	prev := 1
	for xp := int64(0); xp <= 200000; xp += 37 {
		lvl := c.LevelFor(xp)
		if lvl < prev {
			t.Fatalf("LevelFor(%d) = %d, below previous %d", xp, lvl, prev)
		}
		start, end := c.XPRangeFor(lvl)
		if xp < start || xp >= end {
			t.Fatalf("xp %d outside range [%d,%d) of its level %d", xp, start, end, lvl)
		}
		prev = lvl
	}
}

func TestXPRangeFor(t *testing.T) {
	c := progression.DefaultPlayerCurve()

	start, end := c.XPRangeFor(2)
	if start != 100 || end != 283 {
		t.Errorf("XPRangeFor(2) = [%d,%d), want [100,283)", start, end)
	}

	start, end = c.XPRangeFor(0)
	if start != 0 || end != 100 {
		t.Errorf("XPRangeFor(0) = [%d,%d), want [0,100)", start, end)
	}

	_, end = c.XPRangeFor(c.MaxLevel)
	if end != math.MaxInt64 {
		t.Errorf("max level range end = %d, want MaxInt64", end)
	}
}

func TestXPToNextLevelAndProgress(t *testing.T) {
	c := progression.DefaultPlayerCurve()
	if got := c.XPToNextLevel(40); got != 60 {
		t.Errorf("XPToNextLevel(40) = %d, want 60", got)
	}
	if got := c.ProgressPct(50); got != 50 {
		t.Errorf("ProgressPct(50) = %v, want 50", got)
	}
	if got := c.ProgressPct(math.MaxInt64); got != 100 {
		t.Errorf("ProgressPct(max) = %v, want 100", got)
	}
	if got := c.XPToNextLevel(math.MaxInt64); got != 0 {
		t.Errorf("XPToNextLevel(max) = %d, want 0", got)
	}
}

func TestCurve_Validate(t *testing.T) {
	if err := progression.DefaultPlayerCurve().Validate(); err != nil {
		t.Fatalf("default curve invalid: %v", err)
	}
	bad := []progression.Curve{
		{Base: 0.5, Exponent: 1.5, MaxLevel: 100},
		{Base: 100, Exponent: 0.8, MaxLevel: 100},
		{Base: 100, Exponent: 1.5, MaxLevel: 1},
		{Base: 1e6, Exponent: 3, MaxLevel: 10_000_000},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("curve %d: expected validation error", i)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Rank Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestRankFor_Bands(t *testing.T) {
	r := progression.DefaultRanks()
	tests := []struct {
		level int
		want  domain.Rank
	}{
		{1, domain.RankBronze},
		{10, domain.RankBronze},
		{11, domain.RankSilver},
		{25, domain.RankSilver},
		{26, domain.RankGold},
		{50, domain.RankGold},
		{51, domain.RankPlatinum},
		{100, domain.RankPlatinum},
		{101, domain.RankDiamond},
		{999, domain.RankDiamond},
	}
	for _, tt := range tests {
		if got := r.RankFor(tt.level); got != tt.want {
			t.Errorf("RankFor(%d) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestRankFor_ConsistentWithLevelFor(t *testing.T) {
	rules := progression.DefaultLevelRules()
	order := map[domain.Rank]int{
		domain.RankBronze: 0, domain.RankSilver: 1, domain.RankGold: 2,
		domain.RankPlatinum: 3, domain.RankDiamond: 4,
	}
	prevRank := -1
	for xp := int64(0); xp <= 150000; xp += 101 {
		lvl := rules.LevelFor(xp)
		rank := order[rules.RankFor(lvl)]
		if rank < prevRank {
			t.Fatalf("rank regressed at xp %d (level %d)", xp, lvl)
		}
		prevRank = rank
	}
}

func TestRanks_Validate(t *testing.T) {
	if err := progression.DefaultRanks().Validate(); err != nil {
		t.Fatalf("default ranks invalid: %v", err)
	}
	bad := progression.Ranks{{Rank: domain.RankBronze, MinLevel: 2}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error when first band does not start at 1")
	}
	unordered := progression.Ranks{
		{Rank: domain.RankBronze, MinLevel: 1},
		{Rank: domain.RankSilver, MinLevel: 20},
		{Rank: domain.RankGold, MinLevel: 20},
	}
	if err := unordered.Validate(); err == nil {
		t.Error("expected error for non-increasing bands")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Milestone Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMilestones(t *testing.T) {
	rules := progression.LevelRules{
		Curve:      progression.DefaultPlayerCurve(),
		Ranks:      progression.DefaultRanks(),
		Milestones: []int{20, 5, 10},
	}
	if !rules.IsMilestone(10) {
		t.Error("10 should be a milestone")
	}
	if rules.IsMilestone(11) {
		t.Error("11 should not be a milestone")
	}

	levels := rules.MilestoneLevels()
	if len(levels) != 3 || levels[0] != 5 || levels[2] != 20 {
		t.Errorf("MilestoneLevels() = %v, want [5 10 20]", levels)
	}

	crossed := rules.MilestonesCrossed(4, 10)
	if len(crossed) != 2 || crossed[0] != 5 || crossed[1] != 10 {
		t.Errorf("MilestonesCrossed(4,10) = %v, want [5 10]", crossed)
	}
	if got := rules.MilestonesCrossed(10, 10); len(got) != 0 {
		t.Errorf("MilestonesCrossed(10,10) = %v, want none", got)
	}
}
