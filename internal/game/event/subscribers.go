package event

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogSubscriber returns a Handler that logs each event at debug, and
// faints and battle ends at info.
func NewLogSubscriber(logger *zap.Logger) Handler {
	return func(ev Event) error {
		fields := []zap.Field{
			zap.Int("seq", ev.Seq),
			zap.Int("turn", ev.Turn),
			zap.String("kind", string(ev.Kind)),
			zap.Any("payload", ev.Payload),
		}
		if ev.Actor != nil {
			fields = append(fields, zap.String("actor", ev.Actor.String()))
		}
		switch ev.Kind {
		case KindFaint, KindBattleEnd:
			logger.Info("battle event", fields...)
		default:
			logger.Debug("battle event", fields...)
		}
		return nil
	}
}

// Auditor checks the stream online for HP bounds, faint causality, switch
// snapshot consistency and turn monotonicity. Violations are collected, and
// the first violation found in an event is also returned to the bus.
type Auditor struct {
	lastSeq    int
	lastTurn   int
	hpEvents   map[int]HPChange
	hp         map[string]int
	violations []string
}

// NewAuditor returns an empty Auditor.
func NewAuditor() *Auditor {
	return &Auditor{
		hpEvents: make(map[int]HPChange),
		hp:       make(map[string]int),
	}
}

// Handle implements Handler.
func (a *Auditor) Handle(ev Event) error {
	before := len(a.violations)
	if ev.Seq != a.lastSeq+1 {
		a.violate("seq %d follows %d", ev.Seq, a.lastSeq)
	}
	a.lastSeq = ev.Seq
	if ev.Turn < a.lastTurn {
		a.violate("seq %d: turn %d after turn %d", ev.Seq, ev.Turn, a.lastTurn)
	}
	a.lastTurn = ev.Turn

	switch p := ev.Payload.(type) {
	case BattleStart:
		for side, roster := range p.Rosters {
			for slot, r := range roster {
				a.hp[Ref{Side: side, Slot: slot}.Key()] = r.MaxHP
			}
		}
	case HPChange:
		if p.After < 0 || p.After > p.Max {
			a.violate("seq %d: %s hp %d outside [0,%d]", ev.Seq, p.Target, p.After, p.Max)
		}
		if p.Before+p.Delta != p.After {
			a.violate("seq %d: %s hp %d%+d != %d", ev.Seq, p.Target, p.Before, p.Delta, p.After)
		}
		if known, ok := a.hp[p.Target.Key()]; ok && known != p.Before {
			a.violate("seq %d: %s hp before %d, last seen %d", ev.Seq, p.Target, p.Before, known)
		}
		a.hp[p.Target.Key()] = p.After
		a.hpEvents[ev.Seq] = p
	case Faint:
		cause, ok := a.hpEvents[p.CauseSeq]
		switch {
		case !ok:
			a.violate("seq %d: faint of %s cites seq %d which is not an hp_change", ev.Seq, p.Target, p.CauseSeq)
		case cause.Target.Key() != p.Target.Key() || cause.After != 0:
			a.violate("seq %d: faint of %s not caused by seq %d", ev.Seq, p.Target, p.CauseSeq)
		case p.CauseSeq != ev.Seq-1:
			a.violate("seq %d: faint does not immediately follow seq %d", ev.Seq, p.CauseSeq)
		}
	case Switch:
		if known, ok := a.hp[p.To.Key()]; ok && known != p.HP {
			a.violate("seq %d: switch-in %s reports hp %d, last seen %d", ev.Seq, p.To, p.HP, known)
		}
		if p.HP <= 0 {
			a.violate("seq %d: fainted %s switched in", ev.Seq, p.To)
		}
	}
	if len(a.violations) > before {
		return fmt.Errorf("audit: %s", a.violations[before])
	}
	return nil
}

func (a *Auditor) violate(format string, args ...any) {
	a.violations = append(a.violations, fmt.Sprintf(format, args...))
}

// Violations returns a copy of every violation found so far.
func (a *Auditor) Violations() []string {
	out := make([]string, len(a.violations))
	copy(out, a.violations)
	return out
}
