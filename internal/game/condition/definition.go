package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// Condition IDs with tunable durations or HP fractions.
const (
	IDSleep      = "sleep"
	IDRest       = "rest"
	IDConfusion  = "confusion"
	IDTrap       = "trap"
	IDDisable    = "disable"
	IDLockIn     = "lock_in"
	IDScreen     = "screen"
	IDMist       = "mist"
	IDBurn       = "burn"
	IDPoison     = "poison"
	IDLeechSeed  = "leech_seed"
	IDSubstitute = "substitute"
	IDCrash      = "crash"
)

// Def is the static definition of a condition's numbers, loaded from YAML.
//
// Duration is a dice expression ("1d7", "1d4+1", "5"); empty means the
// condition is not timed. Divisor is the max-HP denominator of the
// condition's residual damage or cost; 0 means none.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Duration    string `yaml:"duration"`
	Divisor     int    `yaml:"divisor"`

	expr *dice.Expression
}

func (d *Def) compile() error {
	if d.ID == "" {
		return fmt.Errorf("condition: id must not be empty")
	}
	if d.Divisor < 0 {
		return fmt.Errorf("condition %q: divisor must be >= 0", d.ID)
	}
	d.expr = nil
	if d.Duration == "" {
		return nil
	}
	e, err := dice.Parse(d.Duration)
	if err != nil {
		return fmt.Errorf("condition %q: %w", d.ID, err)
	}
	if e.Min() < 1 {
		return fmt.Errorf("condition %q: duration %q can roll below 1", d.ID, d.Duration)
	}
	d.expr = &e
	return nil
}

// Registry holds all known Defs keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// DefaultRegistry returns the Generation 1 numbers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []*Def{
		{ID: IDSleep, Name: "Sleep", Duration: "1d7"},
		{ID: IDRest, Name: "Rest sleep", Duration: "2"},
		{ID: IDConfusion, Name: "Confusion", Duration: "1d4+1"},
		{ID: IDTrap, Name: "Partial trap", Duration: "1d4+1", Divisor: 16},
		{ID: IDDisable, Name: "Disable", Duration: "1d8"},
		{ID: IDLockIn, Name: "Lock-in", Duration: "1d2+1"},
		{ID: IDScreen, Name: "Screen", Duration: "5"},
		{ID: IDMist, Name: "Mist", Duration: "5"},
		{ID: IDBurn, Name: "Burn", Divisor: 16},
		{ID: IDPoison, Name: "Poison", Divisor: 16},
		{ID: IDLeechSeed, Name: "Leech Seed", Divisor: 16},
		{ID: IDSubstitute, Name: "Substitute", Divisor: 4},
		{ID: IDCrash, Name: "Crash damage", Divisor: 8},
	} {
		r.Register(d)
	}
	return r
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil, must have an ID, and its Duration must
// parse to an expression that never rolls below 1.
func (r *Registry) Register(def *Def) {
	if def == nil {
		panic("condition.Registry.Register: precondition violated: def must be non-nil")
	}
	if err := def.compile(); err != nil {
		panic("condition.Registry.Register: precondition violated: " + err.Error())
	}
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// MustGet returns the Def for id or panics.
func (r *Registry) MustGet(id string) *Def {
	d, ok := r.defs[id]
	if !ok {
		panic(fmt.Sprintf("condition: no definition for %q", id))
	}
	return d
}

// All returns the registered Defs sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RollDuration rolls the duration of id with roller.
//
// Precondition: id must be registered with a Duration.
// Postcondition: result >= 1. Constant durations consume no draw.
func (r *Registry) RollDuration(id string, roller *dice.Roller) int {
	d := r.MustGet(id)
	if d.expr == nil {
		panic(fmt.Sprintf("condition: %q has no duration", id))
	}
	return roller.Roll(*d.expr).Total()
}

// Fraction returns max(1, maxHP/Divisor) for id, or 0 when id has no divisor.
func (r *Registry) Fraction(id string, maxHP int) int {
	d := r.MustGet(id)
	if d.Divisor == 0 {
		return 0
	}
	return max(1, maxHP/d.Divisor)
}

// LoadDirectory reads every *.yaml file in dir as one Def and registers it
// over DefaultRegistry, so files only need to name what they change.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or compile.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.compile(); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
