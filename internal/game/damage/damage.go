// Package damage is the pure damage calculator. It never mutates its inputs;
// every value it consumed is echoed back in a Breakdown so a damage event can
// be re-derived from the event record alone.
package damage

import "github.com/cory-johannsen/battlecore/internal/game/dex"

// Source tags where a damage value came from.
type Source string

const (
	SourceFormula   Source = "formula"
	SourceFixed     Source = "fixed"
	SourceLevel     Source = "level"
	SourceHalfHP    Source = "half_hp"
	SourceCounter   Source = "counter"
	SourceConfusion Source = "confusion"
)

// Intn is the one RNG capability the calculator needs. *dice.Roller and
// every dice.Source satisfy it.
type Intn interface {
	Intn(n int) int
}

// Combatant is the read-only view of a battler the formula consumes.
type Combatant struct {
	Level       int
	Types       []dex.Type
	Stats       dex.BaseStats
	BaseSpeed   int
	Stages      [dex.NumStages]int
	Burned      bool
	FocusEnergy bool
}

// Field holds the defending side's screens.
type Field struct {
	Reflect     bool
	LightScreen bool
}

// Options carries the mechanics toggles the formula honours.
type Options struct {
	// FocusEnergyQuirk reproduces the legacy bug where Focus Energy divides
	// the critical threshold by 4 instead of multiplying it.
	FocusEnergyQuirk bool
	CritMultiplier   int
}

// Input is everything Compute needs for one hit.
type Input struct {
	Attacker Combatant
	Defender Combatant
	Move     *dex.Move
	// Category is the effective category resolved by the generation policy.
	Category     dex.Category
	Field        Field
	HalveDefense bool
	Options      Options
}

// Breakdown records every input the formula consumed plus the result.
type Breakdown struct {
	Source         Source       `json:"source"`
	Move           string       `json:"move,omitempty"`
	MoveType       dex.Type     `json:"move_type"`
	Category       dex.Category `json:"category"`
	Level          int          `json:"level"`
	Power          int          `json:"power"`
	AttackStat     dex.Stat     `json:"attack_stat"`
	DefenseStat    dex.Stat     `json:"defense_stat"`
	RawAttack      int          `json:"raw_attack"`
	RawDefense     int          `json:"raw_defense"`
	AttackStage    int          `json:"attack_stage"`
	DefenseStage   int          `json:"defense_stage"`
	Attack         int          `json:"attack"`
	Defense        int          `json:"defense"`
	DefenseHalved  bool         `json:"defense_halved"`
	Base           int          `json:"base"`
	STAB           bool         `json:"stab"`
	STABMultiplier float64      `json:"stab_multiplier"`
	Effectiveness  float64      `json:"effectiveness"`
	RandomRoll     int          `json:"random_roll"`
	CritThreshold  int          `json:"crit_threshold"`
	CritRoll       int          `json:"crit_roll"`
	Critical       bool         `json:"critical"`
	CritMultiplier int          `json:"crit_multiplier"`
	BurnHalved     bool         `json:"burn_halved"`
	ScreenHalved   bool         `json:"screen_halved"`
	Final          int          `json:"final"`
}

const (
	stabMultiplier = 1.5
	randomMin      = 217
	randomMax      = 255
)

// CritThreshold returns the critical-hit threshold out of 256 for an
// attacker: BaseSpeed/2 (BaseSpeed/512 as a probability), times 8 for
// high-crit moves, and adjusted by Focus Energy.
//
// Postcondition: 0 <= result <= 255.
func CritThreshold(att Combatant, m *dex.Move, opts Options) int {
	t := att.BaseSpeed / 2
	if m != nil && m.HighCrit {
		t *= 8
	}
	if att.FocusEnergy {
		if opts.FocusEnergyQuirk {
			t /= 4
		} else {
			t *= 4
		}
	}
	if t > 255 {
		t = 255
	}
	return t
}

// Compute runs the Generation 1 damage formula for one hit.
//
// Draw order: one critical draw in [0,256), then one random draw in
// [217,255]. An immune defender consumes no draws.
//
// Precondition: in.Move must be non-nil with Power > 0.
// Postcondition: result == breakdown.Final; result >= 1 unless the defender
// is immune, in which case result == 0.
func Compute(in Input, rng Intn) (int, Breakdown) {
	m := in.Move
	b := Breakdown{
		Source:         SourceFormula,
		Move:           m.ID,
		MoveType:       m.Type,
		Category:       in.Category,
		Level:          in.Attacker.Level,
		Power:          m.Power,
		STABMultiplier: 1,
		CritMultiplier: 1,
	}

	b.Effectiveness = dex.Effectiveness(m.Type, in.Defender.Types)
	if b.Effectiveness == 0 {
		return 0, b
	}

	b.CritThreshold = CritThreshold(in.Attacker, m, in.Options)
	b.CritRoll = rng.Intn(256)
	b.Critical = b.CritRoll < b.CritThreshold

	b.AttackStat, b.DefenseStat = dex.StatAttack, dex.StatDefense
	if in.Category == dex.CategorySpecial {
		b.AttackStat, b.DefenseStat = dex.StatSpecial, dex.StatSpecial
	}
	b.RawAttack = in.Attacker.Stats.Get(b.AttackStat)
	b.RawDefense = in.Defender.Stats.Get(b.DefenseStat)
	b.Attack, b.Defense = b.RawAttack, b.RawDefense
	if !b.Critical {
		b.AttackStage = in.Attacker.Stages[b.AttackStat]
		b.DefenseStage = in.Defender.Stages[b.DefenseStat]
		b.Attack = ApplyStage(b.RawAttack, b.AttackStage)
		b.Defense = ApplyStage(b.RawDefense, b.DefenseStage)
	}
	if in.HalveDefense {
		b.DefenseHalved = true
		b.Defense /= 2
	}
	if b.Attack < 1 {
		b.Attack = 1
	}
	if b.Defense < 1 {
		b.Defense = 1
	}

	b.Base = ((2*b.Level/5+2)*b.Power*b.Attack/b.Defense)/50 + 2

	if m.Type != dex.TypeNone && dex.HasType(in.Attacker.Types, m.Type) {
		b.STAB = true
		b.STABMultiplier = stabMultiplier
	}

	b.RandomRoll = rng.Intn(randomMax-randomMin+1) + randomMin
	dmg := int(float64(b.Base) * b.STABMultiplier * b.Effectiveness * float64(b.RandomRoll) / randomMax)

	if b.Critical {
		b.CritMultiplier = in.Options.CritMultiplier
		if b.CritMultiplier < 1 {
			b.CritMultiplier = 2
		}
		dmg *= b.CritMultiplier
	}
	if in.Attacker.Burned && in.Category == dex.CategoryPhysical {
		b.BurnHalved = true
		dmg /= 2
	}
	if !b.Critical && screenApplies(in.Category, in.Field) {
		b.ScreenHalved = true
		dmg /= 2
	}
	if dmg < 1 {
		dmg = 1
	}
	b.Final = dmg
	return dmg, b
}

func screenApplies(cat dex.Category, f Field) bool {
	switch cat {
	case dex.CategoryPhysical:
		return f.Reflect
	case dex.CategorySpecial:
		return f.LightScreen
	}
	return false
}

// Fixed returns a breakdown for damage that bypasses the formula. Stat and
// multiplier fields stay zeroed so every damage source shares one shape.
func Fixed(src Source, m *dex.Move, level, value int) Breakdown {
	b := Breakdown{Source: src, Level: level, Final: value}
	if m != nil {
		b.Move = m.ID
		b.MoveType = m.Type
	}
	return b
}

// confusionPower is the power of the typeless confusion self-hit.
const confusionPower = 40

// Confusion computes the confusion self-hit: a typeless 40-power physical
// strike using the combatant's own Attack and Defense with their stages. It
// never crits and draws no random factor.
//
// Postcondition: result >= 1.
func Confusion(c Combatant) (int, Breakdown) {
	b := Breakdown{
		Source:         SourceConfusion,
		MoveType:       dex.TypeNone,
		Category:       dex.CategoryPhysical,
		Level:          c.Level,
		Power:          confusionPower,
		AttackStat:     dex.StatAttack,
		DefenseStat:    dex.StatDefense,
		RawAttack:      c.Stats.Attack,
		RawDefense:     c.Stats.Defense,
		AttackStage:    c.Stages[dex.StatAttack],
		DefenseStage:   c.Stages[dex.StatDefense],
		STABMultiplier: 1,
		Effectiveness:  1,
		CritMultiplier: 1,
	}
	b.Attack = max(1, ApplyStage(b.RawAttack, b.AttackStage))
	b.Defense = max(1, ApplyStage(b.RawDefense, b.DefenseStage))
	b.Base = ((2*b.Level/5+2)*b.Power*b.Attack/b.Defense)/50 + 2
	b.Final = max(1, b.Base)
	return b.Final, b
}
