package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency. Every engine error
// is recoverable by the caller retrying with corrected input or state.

var (
	// Input errors
	ErrInvalidMetric = errors.New("invalid workout metric")
	ErrInvalidInput  = errors.New("invalid input")

	// Economy errors
	ErrInsufficientCurrency = errors.New("insufficient essence")
	ErrAlreadyUnlocked      = errors.New("accessory already unlocked")
	ErrNotUnlocked          = errors.New("accessory not unlocked")
	ErrAccessoryNotFound    = errors.New("accessory not found in catalog")

	// Pet errors
	ErrPetAway            = errors.New("pet is away, recover it first")
	ErrRecoveryIneligible = errors.New("pet recovery requirements not met")
	ErrNoPet              = errors.New("player has no pet")
	ErrUnknownTreat       = errors.New("unknown treat tier")
	ErrUnknownSpecies     = errors.New("unknown pet species")

	// Lookup errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrTemplateNotFound = errors.New("workout template not found")
)
