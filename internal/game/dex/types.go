// Package dex holds the static battle data: elemental types and the type
// chart, the generation category policy, species, moves, and the stat
// formula. Everything here is read-only once a battle starts.
package dex

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is an elemental type. The zero value TypeNone is "typeless"; it is
// used by Struggle and the confusion self-hit and is neutral against
// everything.
type Type int

const (
	TypeNone Type = iota
	TypeNormal
	TypeFire
	TypeWater
	TypeElectric
	TypeGrass
	TypeIce
	TypeFighting
	TypePoison
	TypeGround
	TypeFlying
	TypePsychic
	TypeBug
	TypeRock
	TypeGhost
	TypeDragon
)

var typeNames = [...]string{
	TypeNone:     "none",
	TypeNormal:   "normal",
	TypeFire:     "fire",
	TypeWater:    "water",
	TypeElectric: "electric",
	TypeGrass:    "grass",
	TypeIce:      "ice",
	TypeFighting: "fighting",
	TypePoison:   "poison",
	TypeGround:   "ground",
	TypeFlying:   "flying",
	TypePsychic:  "psychic",
	TypeBug:      "bug",
	TypeRock:     "rock",
	TypeGhost:    "ghost",
	TypeDragon:   "dragon",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType resolves a type name case-insensitively.
func ParseType(s string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == key {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("dex: unknown type %q", s)
}

// UnmarshalYAML decodes a type from its name.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText encodes a type as its name.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// typeChart lists every non-neutral attacking matchup. Missing entries are 1x.
var typeChart = map[Type]map[Type]float64{
	TypeNormal:   {TypeRock: 0.5, TypeGhost: 0},
	TypeFire:     {TypeFire: 0.5, TypeWater: 0.5, TypeGrass: 2, TypeIce: 2, TypeBug: 2, TypeRock: 0.5, TypeDragon: 0.5},
	TypeWater:    {TypeFire: 2, TypeWater: 0.5, TypeGrass: 0.5, TypeGround: 2, TypeRock: 2, TypeDragon: 0.5},
	TypeElectric: {TypeWater: 2, TypeElectric: 0.5, TypeGrass: 0.5, TypeGround: 0, TypeFlying: 2, TypeDragon: 0.5},
	TypeGrass:    {TypeFire: 0.5, TypeWater: 2, TypeGrass: 0.5, TypePoison: 0.5, TypeGround: 2, TypeFlying: 0.5, TypeBug: 0.5, TypeRock: 2, TypeDragon: 0.5},
	TypeIce:      {TypeWater: 0.5, TypeGrass: 2, TypeIce: 0.5, TypeGround: 2, TypeFlying: 2, TypeDragon: 2},
	TypeFighting: {TypeNormal: 2, TypeIce: 2, TypePoison: 0.5, TypeFlying: 0.5, TypePsychic: 0.5, TypeBug: 0.5, TypeRock: 2, TypeGhost: 0},
	TypePoison:   {TypeGrass: 2, TypePoison: 0.5, TypeGround: 0.5, TypeBug: 2, TypeRock: 0.5, TypeGhost: 0.5},
	TypeGround:   {TypeFire: 2, TypeElectric: 2, TypeGrass: 0.5, TypePoison: 2, TypeFlying: 0, TypeBug: 0.5, TypeRock: 2},
	TypeFlying:   {TypeElectric: 0.5, TypeGrass: 2, TypeFighting: 2, TypeBug: 2, TypeRock: 0.5},
	TypePsychic:  {TypeFighting: 2, TypePoison: 2, TypePsychic: 0.5},
	TypeBug:      {TypeFire: 0.5, TypeGrass: 2, TypeFighting: 0.5, TypePoison: 2, TypeFlying: 0.5, TypePsychic: 2, TypeGhost: 0.5},
	TypeRock:     {TypeFire: 2, TypeIce: 2, TypeFighting: 0.5, TypeGround: 0.5, TypeFlying: 2, TypeBug: 2},
	TypeGhost:    {TypeNormal: 0, TypePsychic: 0, TypeGhost: 2},
	TypeDragon:   {TypeDragon: 2},
}

// Effectiveness returns the multiplier of an attack of type attack against
// a defender with the given types. Dual types multiply.
//
// Postcondition: result is one of 0, 0.25, 0.5, 1, 2, 4.
func Effectiveness(attack Type, defender []Type) float64 {
	mult := 1.0
	row := typeChart[attack]
	for _, d := range defender {
		if m, ok := row[d]; ok {
			mult *= m
		}
	}
	return mult
}

// HasType reports whether t is among types.
func HasType(types []Type, t Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
