package game

import (
	"fmt"

	"github.com/fitpet-app/fitpet/internal/app/economy"
	"github.com/fitpet-app/fitpet/internal/app/pet"
	"github.com/fitpet-app/fitpet/internal/app/progression"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// Rules is every tuning constant the engine uses. It maps onto the
// [rules] table of config.toml.
type Rules struct {
	XP          progression.XPRules       `toml:"xp"`
	Levels      progression.LevelRules    `toml:"levels"`
	Pet         pet.Rules                 `toml:"pet"`
	Economy     economy.Rules             `toml:"economy"`
	Accessories []domain.Accessory        `toml:"accessories"`
	Unlocks     []progression.Requirement `toml:"unlocks"`
}

// DefaultRules returns the production tuning.
func DefaultRules() Rules {
	return Rules{
		XP:          progression.DefaultXPRules(),
		Levels:      progression.DefaultLevelRules(),
		Pet:         pet.DefaultRules(),
		Economy:     economy.DefaultRules(),
		Accessories: economy.DefaultCatalog(),
		Unlocks:     progression.DefaultUnlocks(),
	}
}

// Validate checks every section.
func (r Rules) Validate() error {
	if err := r.XP.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := r.Levels.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := r.Pet.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := r.Economy.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if _, err := economy.NewCatalog(r.Accessories); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	for i, u := range r.Unlocks {
		if u.Key == "" && u.Name == "" {
			return fmt.Errorf("rules: unlock %d has neither key nor name", i)
		}
	}
	return nil
}
