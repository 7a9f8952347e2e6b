package condition

import "fmt"

// FieldKind is a side-scoped field condition.
type FieldKind int

const (
	FieldReflect FieldKind = iota
	FieldLightScreen
	FieldMist
)

var fieldNames = [...]string{
	FieldReflect:     "reflect",
	FieldLightScreen: "light_screen",
	FieldMist:        "mist",
}

func (f FieldKind) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// MarshalText encodes a field kind as its name.
func (f FieldKind) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// FieldSet tracks remaining turns per field condition for one side.
type FieldSet struct {
	turns [len(fieldNames)]int
}

// Activate starts kind for turns. It fails without touching the remaining
// duration when kind is already active.
//
// Precondition: turns > 0.
// Postcondition: returns true iff kind was inactive and is now active.
func (f *FieldSet) Activate(kind FieldKind, turns int) bool {
	if f.turns[kind] > 0 {
		return false
	}
	f.turns[kind] = turns
	return true
}

// Active reports whether kind is in effect.
func (f *FieldSet) Active(kind FieldKind) bool { return f.turns[kind] > 0 }

// Remaining returns the turns left for kind, 0 when inactive.
func (f *FieldSet) Remaining(kind FieldKind) int { return f.turns[kind] }

// Tick decrements every active kind and returns those that expired, in kind
// order.
func (f *FieldSet) Tick() []FieldKind {
	var expired []FieldKind
	for i := range f.turns {
		if f.turns[i] == 0 {
			continue
		}
		f.turns[i]--
		if f.turns[i] == 0 {
			expired = append(expired, FieldKind(i))
		}
	}
	return expired
}
