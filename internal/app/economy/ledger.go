// Package economy implements the essence economy: earning, spending,
// the accessory catalog, purchases, and equip/unequip.
//
// Every balance mutation goes through a Ledger, which records a
// LedgerEntry carrying the post-mutation balance. The balance never
// goes below zero.
package economy

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// Rules holds the earning constants.
type Rules struct {
	EssencePerXP    float64 `toml:"essence_per_xp"`
	LevelUpBonus    int64   `toml:"level_up_bonus"`
	StartingBalance int64   `toml:"starting_balance"`
}

// DefaultRules returns the production earning tuning.
func DefaultRules() Rules {
	return Rules{
		EssencePerXP:    0.1,
		LevelUpBonus:    25,
		StartingBalance: 50,
	}
}

// Validate rejects negative earning constants.
func (r Rules) Validate() error {
	if r.EssencePerXP < 0 || r.LevelUpBonus < 0 || r.StartingBalance < 0 {
		return fmt.Errorf("economy: earning constants must be >= 0")
	}
	return nil
}

// EssenceForXP returns essence earned for a workout worth xp.
// Any workout that earned XP earns at least 1 essence.
func (r Rules) EssenceForXP(xp int64) int64 {
	if xp <= 0 {
		return 0
	}
	return max(1, int64(math.Round(float64(xp)*r.EssencePerXP)))
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger applies balance mutations to one player and collects the entries
// for the event's commit.
type Ledger struct {
	player  *domain.Player
	now     time.Time
	entries []domain.LedgerEntry
}

// NewLedger opens a ledger over p for an event happening at now.
func NewLedger(p *domain.Player, now time.Time) *Ledger {
	return &Ledger{player: p, now: now}
}

// Balance returns the player's current balance.
func (l *Ledger) Balance() int64 { return l.player.EssenceBalance }

// Entries returns the entries recorded so far.
func (l *Ledger) Entries() []domain.LedgerEntry {
	return append([]domain.LedgerEntry(nil), l.entries...)
}

// Earn credits essence.
func (l *Ledger) Earn(amount int64, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("earn amount must be positive, got %d", amount)
	}
	if l.player.EssenceBalance > math.MaxInt64-amount {
		l.player.EssenceBalance = math.MaxInt64
	} else {
		l.player.EssenceBalance += amount
	}
	l.record(domain.LedgerEarn, amount, reason)
	return nil
}

// Spend debits essence. Fails with ErrInsufficientCurrency, changing
// nothing, if the balance is short.
func (l *Ledger) Spend(amount int64, reason string) error {
	if amount < 0 {
		return fmt.Errorf("spend amount must be >= 0, got %d", amount)
	}
	if l.player.EssenceBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCurrency, l.player.EssenceBalance, amount)
	}
	l.player.EssenceBalance -= amount
	l.record(domain.LedgerSpend, -amount, reason)
	return nil
}

// Settle records the difference between the current balance and
// newBalance, for simulator calls that return a new balance.
func (l *Ledger) Settle(newBalance int64, reason string) error {
	switch delta := newBalance - l.player.EssenceBalance; {
	case delta > 0:
		return l.Earn(delta, reason)
	case delta < 0:
		return l.Spend(-delta, reason)
	}
	return nil
}

// record appends an entry; delta is signed.
func (l *Ledger) record(kind domain.LedgerKind, delta int64, reason string) {
	l.entries = append(l.entries, domain.LedgerEntry{
		ID:       uuid.NewString(),
		PlayerID: l.player.ID,
		At:       l.now,
		Kind:     kind,
		Amount:   delta,
		Reason:   reason,
		Balance:  l.player.EssenceBalance,
	})
}
