package dex

import "fmt"

// Species is the static definition of a creature.
//
// Precondition: ID must be non-empty and Types must hold one or two types.
type Species struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Types     []Type    `yaml:"types"`
	Base      BaseStats `yaml:"base"`
	Basic     bool      `yaml:"basic"`
	Legendary bool      `yaml:"legendary"`
	// Learnset lists move IDs the species may carry. Empty means unrestricted.
	Learnset []string `yaml:"learnset"`
}

// Validate checks the species for structural errors.
func (s *Species) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("dex: species id must not be empty")
	}
	if len(s.Types) < 1 || len(s.Types) > 2 {
		return fmt.Errorf("dex: species %q must have 1 or 2 types, got %d", s.ID, len(s.Types))
	}
	if s.Base.HP <= 0 {
		return fmt.Errorf("dex: species %q must have base hp > 0", s.ID)
	}
	return nil
}

// CanLearn reports whether moveID is in the learnset, or the learnset is
// unrestricted.
func (s *Species) CanLearn(moveID string) bool {
	if len(s.Learnset) == 0 {
		return true
	}
	for _, id := range s.Learnset {
		if id == moveID {
			return true
		}
	}
	return false
}
