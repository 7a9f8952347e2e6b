package dex

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stat identifies a stat that can carry a stage modifier. HP has no stage.
type Stat int

const (
	StatAttack Stat = iota
	StatDefense
	StatSpecial
	StatSpeed
	StatAccuracy
	StatEvasion

	// NumStages is the number of stage-bearing stats.
	NumStages = 6
)

var statNames = [...]string{
	StatAttack:   "attack",
	StatDefense:  "defense",
	StatSpecial:  "special",
	StatSpeed:    "speed",
	StatAccuracy: "accuracy",
	StatEvasion:  "evasion",
}

func (s Stat) String() string {
	if s < 0 || int(s) >= len(statNames) {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// MarshalText encodes a stat as its name.
func (s Stat) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalYAML decodes a stat from its name.
func (s *Stat) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	for i, name := range statNames {
		if name == key {
			*s = Stat(i)
			return nil
		}
	}
	return fmt.Errorf("dex: unknown stat %q", raw)
}

// BaseStats are the five Generation 1 stats.
type BaseStats struct {
	HP      int `yaml:"hp" json:"hp"`
	Attack  int `yaml:"attack" json:"attack"`
	Defense int `yaml:"defense" json:"defense"`
	Special int `yaml:"special" json:"special"`
	Speed   int `yaml:"speed" json:"speed"`
}

// Get returns the value for a battle stat. Accuracy and evasion have no
// backing value and return 0.
func (b BaseStats) Get(s Stat) int {
	switch s {
	case StatAttack:
		return b.Attack
	case StatDefense:
		return b.Defense
	case StatSpecial:
		return b.Special
	case StatSpeed:
		return b.Speed
	}
	return 0
}

const (
	// MaxDV is the highest determinant value.
	MaxDV = 15
	// MaxStatExp is the highest stat experience value.
	MaxStatExp = 65535
)

// CalcStats applies the Generation 1 stat formula with maximal DVs and stat
// experience:
//
//	HP    = ((Base+DV)*2 + sqrt(Exp)/4) * L/100 + L + 10
//	Other = ((Base+DV)*2 + sqrt(Exp)/4) * L/100 + 5
//
// Precondition: 1 <= level <= 100.
func CalcStats(base BaseStats, level int) BaseStats {
	if level < 1 || level > 100 {
		panic(fmt.Sprintf("dex: CalcStats precondition violated: level %d out of range", level))
	}
	exp := int(math.Sqrt(MaxStatExp)) / 4
	other := func(b int) int {
		return ((b+MaxDV)*2+exp)*level/100 + 5
	}
	return BaseStats{
		HP:      ((base.HP+MaxDV)*2+exp)*level/100 + level + 10,
		Attack:  other(base.Attack),
		Defense: other(base.Defense),
		Special: other(base.Special),
		Speed:   other(base.Speed),
	}
}
