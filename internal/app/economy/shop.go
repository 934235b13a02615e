package economy

import (
	"fmt"

	"github.com/gosimple/slug"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// Catalog is the static accessory shop.
type Catalog struct {
	items []domain.Accessory
	byID  map[string]domain.Accessory
}

// NewCatalog indexes accessories by id. Entries without an id get one
// derived from their name; later duplicates are dropped.
func NewCatalog(items []domain.Accessory) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]domain.Accessory, len(items))}
	for _, a := range items {
		if a.ID == "" {
			a.ID = slug.Make(a.Name)
		}
		if a.ID == "" {
			return nil, fmt.Errorf("catalog: accessory without id or name")
		}
		if a.Cost < 0 {
			return nil, fmt.Errorf("catalog: accessory %q has negative cost", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			continue
		}
		c.byID[a.ID] = a
		c.items = append(c.items, a)
	}
	return c, nil
}

// Get looks up an accessory by id.
func (c *Catalog) Get(id string) (domain.Accessory, error) {
	a, ok := c.byID[id]
	if !ok {
		return domain.Accessory{}, fmt.Errorf("%w: %q", domain.ErrAccessoryNotFound, id)
	}
	return a, nil
}

// List returns the catalog in declaration order.
func (c *Catalog) List() []domain.Accessory {
	return append([]domain.Accessory(nil), c.items...)
}

// DefaultCatalog returns the launch accessory set.
func DefaultCatalog() []domain.Accessory {
	return []domain.Accessory{
		{ID: "hat_sweatband", Name: "Sweatband", Cost: 40, Rarity: domain.RarityCommon, Category: domain.CategoryHat},
		{ID: "hat_cap", Name: "Coach Cap", Cost: 80, Rarity: domain.RarityCommon, Category: domain.CategoryHat},
		{ID: "hat_crown", Name: "Champion Crown", Cost: 500, Rarity: domain.RarityLegendary, Category: domain.CategoryHat},
		{ID: "bg_park", Name: "Park Trail", Cost: 60, Rarity: domain.RarityCommon, Category: domain.CategoryBackground},
		{ID: "bg_gym", Name: "Iron Gym", Cost: 150, Rarity: domain.RarityRare, Category: domain.CategoryBackground},
		{ID: "bg_summit", Name: "Mountain Summit", Cost: 300, Rarity: domain.RarityEpic, Category: domain.CategoryBackground},
		{ID: "fx_sparkles", Name: "Sparkles", Cost: 120, Rarity: domain.RarityRare, Category: domain.CategoryEffect},
		{ID: "fx_flames", Name: "Flame Trail", Cost: 250, Rarity: domain.RarityEpic, Category: domain.CategoryEffect},
	}
}

// ─── Purchases ──────────────────────────────────────────────────────────────

// Purchase checks a purchase against a balance and the owned set and
// returns the balance after buying. Pure: nothing is mutated.
func Purchase(acc domain.Accessory, balance int64, unlocked domain.KeySet) (int64, error) {
	if unlocked.Has(acc.ID) {
		return balance, fmt.Errorf("%w: %q", domain.ErrAlreadyUnlocked, acc.ID)
	}
	if balance < acc.Cost {
		return balance, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCurrency, balance, acc.Cost)
	}
	return balance - acc.Cost, nil
}

// Buy deducts the cost and grants the unlock, or does neither.
func (l *Ledger) Buy(acc domain.Accessory) error {
	if l.player.UnlockedAccessoryIDs == nil {
		l.player.UnlockedAccessoryIDs = domain.NewKeySet()
	}
	if _, err := Purchase(acc, l.player.EssenceBalance, l.player.UnlockedAccessoryIDs); err != nil {
		return err
	}
	if err := l.Spend(acc.Cost, "accessory:"+acc.ID); err != nil {
		return err
	}
	l.player.UnlockedAccessoryIDs.Add(acc.ID)
	return nil
}

// Equip puts an owned accessory on the pet. Equipping twice is a no-op.
func Equip(p domain.Player, pet *domain.Pet, id string) error {
	if !p.UnlockedAccessoryIDs.Has(id) {
		return fmt.Errorf("%w: %q", domain.ErrNotUnlocked, id)
	}
	if pet.EquippedAccessoryIDs == nil {
		pet.EquippedAccessoryIDs = domain.NewKeySet()
	}
	pet.EquippedAccessoryIDs.Add(id)
	return nil
}

// Unequip takes an owned accessory off the pet. Unequipping something not
// worn is a no-op.
func Unequip(p domain.Player, pet *domain.Pet, id string) error {
	if !p.UnlockedAccessoryIDs.Has(id) {
		return fmt.Errorf("%w: %q", domain.ErrNotUnlocked, id)
	}
	pet.EquippedAccessoryIDs.Remove(id)
	return nil
}
