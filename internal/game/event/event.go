// Package event carries every state-changing occurrence of a battle as a
// typed, append-only record. Kind strings and payload field names are the
// audit contract: fields may be added, never renamed or removed.
package event

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/damage"
)

// Kind tags an event.
type Kind string

const (
	KindBattleStart      Kind = "battle_start"
	KindTurnStart        Kind = "turn_start"
	KindOrder            Kind = "order"
	KindMoveUsed         Kind = "move_used"
	KindMovePrevented    Kind = "move_prevented"
	KindMiss             Kind = "miss"
	KindHPChange         Kind = "hp_change"
	KindSubstituteDamage Kind = "substitute_damage"
	KindStatusChange     Kind = "status_change"
	KindVolatileChange   Kind = "volatile_change"
	KindStatStage        Kind = "stat_stage"
	KindFieldChange      Kind = "field_change"
	KindEffectOutcome    Kind = "effect_outcome"
	KindSwitch           Kind = "switch"
	KindFaint            Kind = "faint"
	KindTurnEnd          Kind = "turn_end"
	KindBattleEnd        Kind = "battle_end"
)

// Ref identifies a combatant by side and roster slot.
type Ref struct {
	Side    int    `json:"side"`
	Slot    int    `json:"slot"`
	Species string `json:"species"`
}

// Key is a compact identity usable as a map key: "<side>/<slot>".
func (r Ref) Key() string { return fmt.Sprintf("%d/%d", r.Side, r.Slot) }

func (r Ref) String() string { return fmt.Sprintf("%s(%s)", r.Species, r.Key()) }

// Event is one published record. Seq is 1-based and strictly increasing
// within a battle; Turn never decreases.
type Event struct {
	Seq     int     `json:"seq"`
	Turn    int     `json:"turn"`
	Kind    Kind    `json:"kind"`
	Actor   *Ref    `json:"actor,omitempty"`
	Payload Payload `json:"payload"`
}

// Payload is the kind-specific body of an event.
type Payload interface {
	Kind() Kind
}

// Outcome tags a rule no-op or bespoke effect result.
type Outcome string

const (
	OutcomeAlreadyActive       Outcome = "already_active"
	OutcomeNoEffect            Outcome = "no_effect"
	OutcomeFailed              Outcome = "failed"
	OutcomeCharging            Outcome = "charging"
	OutcomeAtLimit             Outcome = "at_limit"
	OutcomeBlockedByClause     Outcome = "blocked_by_clause"
	OutcomeBlockedByMist       Outcome = "blocked_by_mist"
	OutcomeBlockedBySubstitute Outcome = "blocked_by_substitute"
	OutcomeOHKO                Outcome = "ohko"
	OutcomeMultiHit            Outcome = "multi_hit"
	OutcomeTransformed         Outcome = "transformed"
	OutcomeConverted           Outcome = "converted"
	OutcomeHaze                Outcome = "haze"
	OutcomeCalledMove          Outcome = "called_move"
	OutcomeSelfDestruct        Outcome = "self_destruct"
)

// RosterEntry describes one combatant at battle start.
type RosterEntry struct {
	Species string   `json:"species"`
	Level   int      `json:"level"`
	MaxHP   int      `json:"max_hp"`
	Moves   []string `json:"moves"`
}

// BattleStart opens the stream.
type BattleStart struct {
	BattleID string           `json:"battle_id"`
	Seed     int64            `json:"seed"`
	Ruleset  string           `json:"ruleset"`
	Rosters  [2][]RosterEntry `json:"rosters"`
	Leads    [2]Ref           `json:"leads"`
}

// TurnStart marks a turn boundary.
type TurnStart struct{}

// Order records who acts first and why: "switch", "priority", "speed" or
// "speed_tie".
type Order struct {
	First      int    `json:"first"`
	Second     int    `json:"second"`
	Reason     string `json:"reason"`
	Speeds     [2]int `json:"speeds"`
	Priorities [2]int `json:"priorities"`
}

// MoveUsed records a move being executed. Via names the calling move for
// Metronome and Mirror Move; Forced marks charge and lock-in continuations.
type MoveUsed struct {
	Move   string `json:"move"`
	Target *Ref   `json:"target,omitempty"`
	Forced bool   `json:"forced,omitempty"`
	Via    string `json:"via,omitempty"`
	PPLeft int    `json:"pp_left"`
}

// MovePrevented records an action that did not execute.
type MovePrevented struct {
	Move   string `json:"move,omitempty"`
	Reason string `json:"reason"`
	Clause string `json:"clause,omitempty"`
}

// Miss records a failed accuracy check or an invulnerable target.
type Miss struct {
	Move      string `json:"move"`
	Target    Ref    `json:"target"`
	Reason    string `json:"reason"`
	Threshold int    `json:"threshold"`
	Roll      int    `json:"roll"`
}

// HPChange records every mutation of a combatant's HP. Delta is negative for
// damage. Breakdown is present for move damage.
type HPChange struct {
	Target    Ref               `json:"target"`
	Cause     string            `json:"cause"`
	Move      string            `json:"move,omitempty"`
	Delta     int               `json:"delta"`
	Before    int               `json:"before"`
	After     int               `json:"after"`
	Max       int               `json:"max"`
	Hit       int               `json:"hit,omitempty"`
	Breakdown *damage.Breakdown `json:"breakdown,omitempty"`
}

// SubstituteDamage records a hit absorbed by a substitute.
type SubstituteDamage struct {
	Target    Ref               `json:"target"`
	Move      string            `json:"move"`
	Damage    int               `json:"damage"`
	Remaining int               `json:"remaining"`
	Broken    bool              `json:"broken"`
	Hit       int               `json:"hit,omitempty"`
	Breakdown *damage.Breakdown `json:"breakdown,omitempty"`
}

// StatusChange records a primary status being applied or cleared.
type StatusChange struct {
	Target  Ref    `json:"target"`
	Status  string `json:"status"`
	Applied bool   `json:"applied"`
	Cause   string `json:"cause"`
	Turns   int    `json:"turns,omitempty"`
}

// VolatileChange records a volatile condition being applied or removed.
type VolatileChange struct {
	Target   Ref    `json:"target"`
	Volatile string `json:"volatile"`
	Applied  bool   `json:"applied"`
	Cause    string `json:"cause"`
	Turns    int    `json:"turns,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// StatStage records a stage change. Clamped is set when the request was cut
// short by the bound.
type StatStage struct {
	Target    Ref    `json:"target"`
	Stat      string `json:"stat"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
	Stage     int    `json:"stage"`
	Clamped   bool   `json:"clamped,omitempty"`
	Cause     string `json:"cause"`
}

// FieldChange records a side-scoped field condition starting or ending.
type FieldChange struct {
	Side   int    `json:"side"`
	Field  string `json:"field"`
	Active bool   `json:"active"`
	Turns  int    `json:"turns,omitempty"`
	Cause  string `json:"cause"`
}

// EffectOutcome records a rule no-op or a bespoke effect result.
type EffectOutcome struct {
	Move    string  `json:"move,omitempty"`
	Target  *Ref    `json:"target,omitempty"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Switch records a combatant entering. HP, MaxHP and Status are the
// post-switch snapshot of the incoming combatant.
type Switch struct {
	Side   int    `json:"side"`
	From   *Ref   `json:"from,omitempty"`
	To     Ref    `json:"to"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"max_hp"`
	Status string `json:"status"`
	Forced bool   `json:"forced,omitempty"`
}

// Faint records a combatant reaching 0 HP. CauseSeq is the Seq of the
// hp_change event that brought it there.
type Faint struct {
	Target        Ref  `json:"target"`
	CauseSeq      int  `json:"cause_seq"`
	SelfInflicted bool `json:"self_inflicted"`
}

// Snapshot is the end-of-turn state of one active combatant.
type Snapshot struct {
	Ref    Ref    `json:"ref"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"max_hp"`
	Status string `json:"status"`
}

// TurnEnd closes a turn.
type TurnEnd struct {
	Actives            []Snapshot `json:"actives"`
	PendingReplacement [2]bool    `json:"pending_replacement"`
}

// BattleEnd closes the stream. Winner is -1 for a draw or an abort.
type BattleEnd struct {
	Winner int    `json:"winner"`
	Draw   bool   `json:"draw"`
	Turns  int    `json:"turns"`
	Reason string `json:"reason"`
}

func (BattleStart) Kind() Kind      { return KindBattleStart }
func (TurnStart) Kind() Kind        { return KindTurnStart }
func (Order) Kind() Kind            { return KindOrder }
func (MoveUsed) Kind() Kind         { return KindMoveUsed }
func (MovePrevented) Kind() Kind    { return KindMovePrevented }
func (Miss) Kind() Kind             { return KindMiss }
func (HPChange) Kind() Kind         { return KindHPChange }
func (SubstituteDamage) Kind() Kind { return KindSubstituteDamage }
func (StatusChange) Kind() Kind     { return KindStatusChange }
func (VolatileChange) Kind() Kind   { return KindVolatileChange }
func (StatStage) Kind() Kind        { return KindStatStage }
func (FieldChange) Kind() Kind      { return KindFieldChange }
func (EffectOutcome) Kind() Kind    { return KindEffectOutcome }
func (Switch) Kind() Kind           { return KindSwitch }
func (Faint) Kind() Kind            { return KindFaint }
func (TurnEnd) Kind() Kind          { return KindTurnEnd }
func (BattleEnd) Kind() Kind        { return KindBattleEnd }
