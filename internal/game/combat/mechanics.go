package combat

import (
	"errors"
	"fmt"
)

// Mechanics carries the toggles for Generation 1 behaviours whose exact
// reproduction is a policy choice.
type Mechanics struct {
	// OneIn256Miss makes a 255 accuracy threshold miss on a roll of 255.
	OneIn256Miss bool
	// FocusEnergyQuirk divides the critical threshold by 4 under Focus
	// Energy instead of multiplying it.
	FocusEnergyQuirk bool
	// ToxicResetOnSwitch reverts badly poisoned to regular poison on
	// switch-out.
	ToxicResetOnSwitch bool
	// ParalysisSpeedDivisor divides the effective Speed of a paralysed
	// combatant.
	ParalysisSpeedDivisor int
	// ParalysisSkipChance is the chance out of 256 that paralysis skips a
	// turn.
	ParalysisSkipChance int
	// SleepWakeChance is the per-turn chance out of 256 of waking early.
	SleepWakeChance int
	CritMultiplier  int
}

// DefaultMechanics returns the documented defaults.
func DefaultMechanics() Mechanics {
	return Mechanics{
		OneIn256Miss:          false,
		FocusEnergyQuirk:      true,
		ToxicResetOnSwitch:    true,
		ParalysisSpeedDivisor: 2,
		ParalysisSkipChance:   64,
		SleepWakeChance:       0,
		CritMultiplier:        2,
	}
}

// Validate reports every out-of-range toggle.
func (m Mechanics) Validate() error {
	var errs []error
	if m.ParalysisSpeedDivisor < 1 {
		errs = append(errs, fmt.Errorf("paralysis_speed_divisor must be >= 1, got %d", m.ParalysisSpeedDivisor))
	}
	if m.ParalysisSkipChance < 0 || m.ParalysisSkipChance > 256 {
		errs = append(errs, fmt.Errorf("paralysis_skip_chance must be in 0..256, got %d", m.ParalysisSkipChance))
	}
	if m.SleepWakeChance < 0 || m.SleepWakeChance > 256 {
		errs = append(errs, fmt.Errorf("sleep_wake_chance must be in 0..256, got %d", m.SleepWakeChance))
	}
	if m.CritMultiplier < 1 {
		errs = append(errs, fmt.Errorf("crit_multiplier must be >= 1, got %d", m.CritMultiplier))
	}
	if len(errs) > 0 {
		return fmt.Errorf("mechanics: %w", errors.Join(errs...))
	}
	return nil
}

// Sentinel errors returned by the resolver.
var (
	ErrIllegalAction      = errors.New("illegal action")
	ErrBattleOver         = errors.New("battle is over")
	ErrReplacementPending = errors.New("replacement pending")
	ErrNoReplacement      = errors.New("no replacement pending")
	ErrInvariantViolation = errors.New("invariant violation")
)
