package dex

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Effect is the resolution strategy tag of a move. It is assigned once when
// the move table is loaded and is the only thing the effect registry
// dispatches on.
type Effect int

const (
	EffectBasic Effect = iota
	EffectTwoTurn
	EffectRecharge
	EffectMultiHit
	EffectFixedDamage
	EffectLevelDamage
	EffectHalfHP
	EffectOHKO
	EffectDrain
	EffectRecovery
	EffectRest
	EffectScreen
	EffectMist
	EffectTrap
	EffectStatStage
	EffectStatus
	EffectConfuse
	EffectSelfDestruct
	EffectLockIn
	EffectRage
	EffectTransform
	EffectDisable
	EffectMetronome
	EffectMirrorMove
	EffectCounter
	EffectLeechSeed
	EffectHaze
	EffectFocusEnergy
	EffectSubstitute
	EffectConversion
	EffectCrash
	EffectNoop
	EffectStruggle

	numEffects
)

var effectNames = [...]string{
	EffectBasic:        "basic",
	EffectTwoTurn:      "two_turn",
	EffectRecharge:     "recharge",
	EffectMultiHit:     "multi_hit",
	EffectFixedDamage:  "fixed_damage",
	EffectLevelDamage:  "level_damage",
	EffectHalfHP:       "half_hp",
	EffectOHKO:         "ohko",
	EffectDrain:        "drain",
	EffectRecovery:     "recovery",
	EffectRest:         "rest",
	EffectScreen:       "screen",
	EffectMist:         "mist",
	EffectTrap:         "trap",
	EffectStatStage:    "stat_stage",
	EffectStatus:       "status",
	EffectConfuse:      "confuse",
	EffectSelfDestruct: "self_destruct",
	EffectLockIn:       "lock_in",
	EffectRage:         "rage",
	EffectTransform:    "transform",
	EffectDisable:      "disable",
	EffectMetronome:    "metronome",
	EffectMirrorMove:   "mirror_move",
	EffectCounter:      "counter",
	EffectLeechSeed:    "leech_seed",
	EffectHaze:         "haze",
	EffectFocusEnergy:  "focus_energy",
	EffectSubstitute:   "substitute",
	EffectConversion:   "conversion",
	EffectCrash:        "crash",
	EffectNoop:         "noop",
	EffectStruggle:     "struggle",
}

func (e Effect) String() string {
	if e < 0 || e >= numEffects {
		return fmt.Sprintf("effect(%d)", int(e))
	}
	return effectNames[e]
}

// Effects returns every defined effect tag in declaration order.
func Effects() []Effect {
	out := make([]Effect, numEffects)
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

// ParseEffect resolves an effect tag from its canonical name.
func ParseEffect(s string) (Effect, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return EffectBasic, nil
	}
	for i, name := range effectNames {
		if name == key {
			return Effect(i), nil
		}
	}
	return EffectBasic, fmt.Errorf("dex: unknown effect %q", s)
}

// UnmarshalYAML decodes an effect tag from its canonical name.
func (e *Effect) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseEffect(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalText encodes an effect tag as its name.
func (e Effect) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Category is the damage class of a move.
type Category int

const (
	CategoryPhysical Category = iota
	CategorySpecial
	CategoryStatus
)

func (c Category) String() string {
	switch c {
	case CategoryPhysical:
		return "physical"
	case CategorySpecial:
		return "special"
	case CategoryStatus:
		return "status"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// MarshalText encodes a category as its name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalYAML decodes a category from its name.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "physical":
		*c = CategoryPhysical
	case "special":
		*c = CategorySpecial
	case "status":
		*c = CategoryStatus
	default:
		return fmt.Errorf("dex: unknown category %q", s)
	}
	return nil
}

// Ailment is a primary status condition as carried in move payloads and on
// combatants. AilmentToxic inflicts badly poisoned, which is held as poison
// with an escalating counter.
type Ailment int

const (
	AilmentNone Ailment = iota
	AilmentBurn
	AilmentFreeze
	AilmentParalysis
	AilmentPoison
	AilmentSleep
	AilmentToxic
)

var ailmentNames = [...]string{
	AilmentNone:      "none",
	AilmentBurn:      "burn",
	AilmentFreeze:    "freeze",
	AilmentParalysis: "paralysis",
	AilmentPoison:    "poison",
	AilmentSleep:     "sleep",
	AilmentToxic:     "toxic",
}

func (a Ailment) String() string {
	if a < 0 || int(a) >= len(ailmentNames) {
		return fmt.Sprintf("ailment(%d)", int(a))
	}
	return ailmentNames[a]
}

// MarshalText encodes an ailment as its name.
func (a Ailment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalYAML decodes an ailment from its name.
func (a *Ailment) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range ailmentNames {
		if name == key {
			*a = Ailment(i)
			return nil
		}
	}
	return fmt.Errorf("dex: unknown ailment %q", s)
}

// Target selects who a payload applies to.
type Target int

const (
	TargetOpponent Target = iota
	TargetSelf
)

// UnmarshalYAML decodes "opponent" or "self".
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "opponent":
		*t = TargetOpponent
	case "self":
		*t = TargetSelf
	default:
		return fmt.Errorf("dex: unknown target %q", s)
	}
	return nil
}

// Screen names a side-scoped damage screen.
type Screen string

const (
	ScreenReflect     Screen = "reflect"
	ScreenLightScreen Screen = "light_screen"
)

// StatChange is a stage delta carried by a move.
type StatChange struct {
	Stat   Stat `yaml:"stat"`
	Stages int  `yaml:"stages"`
}

// AilmentEffect is a primary status a move may inflict. Chance is a percent;
// 0 on a status-effect move means always.
type AilmentEffect struct {
	Ailment Ailment `yaml:"ailment"`
	Chance  int     `yaml:"chance"`
}

// Move is the static definition of a move.
//
// Precondition: ID must be non-empty after loading. Accuracy 0 means the move
// never misses.
type Move struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     Type     `yaml:"type"`
	Category Category `yaml:"category"`
	Power    int      `yaml:"power"`
	Accuracy int      `yaml:"accuracy"`
	PP       int      `yaml:"pp"`
	Priority int      `yaml:"priority"`
	Effect   Effect   `yaml:"effect"`
	Target   Target   `yaml:"target"`

	Ailment     *AilmentEffect `yaml:"ailment"`
	StatChanges []StatChange   `yaml:"stat_changes"`
	// StatChance is the percent chance for StatChanges on a damaging move.
	StatChance int `yaml:"stat_chance"`
	// ChargeStatChanges apply to the user on the charge turn of a two-turn move.
	ChargeStatChanges []StatChange `yaml:"charge_stat_changes"`

	Hits            int    `yaml:"hits"`
	FixedDamage     int    `yaml:"fixed_damage"`
	DrainPercent    int    `yaml:"drain_percent"`
	HealPercent     int    `yaml:"heal_percent"`
	RecoilDivisor   int    `yaml:"recoil_divisor"`
	CrashDivisor    int    `yaml:"crash_divisor"`
	FlinchChance    int    `yaml:"flinch_chance"`
	ConfusionChance int    `yaml:"confusion_chance"`
	Screen          Screen `yaml:"screen"`

	HighCrit         bool `yaml:"high_crit"`
	SemiInvulnerable bool `yaml:"semi_invulnerable"`
	HitsInvulnerable bool `yaml:"hits_invulnerable"`
	RequiresSleep    bool `yaml:"requires_sleeping_target"`
	NoMetronome      bool `yaml:"no_metronome"`
}

// NeverMisses reports whether the accuracy check is skipped.
func (m *Move) NeverMisses() bool { return m.Accuracy <= 0 }

// RaisesEvasion reports whether the move raises the user's evasion stage.
func (m *Move) RaisesEvasion() bool {
	if m.Target != TargetSelf {
		return false
	}
	for _, sc := range m.StatChanges {
		if sc.Stat == StatEvasion && sc.Stages > 0 {
			return true
		}
	}
	return false
}

// Inflicts reports whether the move can inflict ailment a on its target.
func (m *Move) Inflicts(a Ailment) bool {
	return m.Ailment != nil && m.Ailment.Ailment == a
}

// Validate checks the definition for internally inconsistent payloads.
func (m *Move) Validate() error {
	var errs []string
	if m.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if m.Accuracy < 0 || m.Accuracy > 100 {
		errs = append(errs, fmt.Sprintf("accuracy %d out of range 0..100", m.Accuracy))
	}
	if m.PP < 0 {
		errs = append(errs, "pp must be >= 0")
	}
	switch m.Effect {
	case EffectFixedDamage:
		if m.FixedDamage <= 0 {
			errs = append(errs, "fixed_damage effect needs fixed_damage > 0")
		}
	case EffectScreen:
		if m.Screen != ScreenReflect && m.Screen != ScreenLightScreen {
			errs = append(errs, fmt.Sprintf("screen effect needs a screen, got %q", m.Screen))
		}
	case EffectStatStage:
		if len(m.StatChanges) == 0 {
			errs = append(errs, "stat_stage effect needs stat_changes")
		}
	case EffectStatus:
		if m.Ailment == nil || m.Ailment.Ailment == AilmentNone {
			errs = append(errs, "status effect needs an ailment")
		}
	case EffectMultiHit:
		if m.Hits != 0 && (m.Hits < 2 || m.Hits > 5) {
			errs = append(errs, fmt.Sprintf("multi_hit hits %d out of range 2..5", m.Hits))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("dex: move %q: %s", m.ID, strings.Join(errs, "; "))
	}
	return nil
}
