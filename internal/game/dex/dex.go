package dex

import (
	"fmt"
	"sort"
)

// Dex holds every species and move known to a battle.
type Dex struct {
	species map[string]*Species
	moves   map[string]*Move
}

// New creates an empty Dex.
func New() *Dex {
	return &Dex{
		species: make(map[string]*Species),
		moves:   make(map[string]*Move),
	}
}

// AddSpecies registers s.
//
// Precondition: s must pass Validate and its ID must not already be registered.
func (d *Dex) AddSpecies(s *Species) {
	if err := s.Validate(); err != nil {
		panic(err.Error())
	}
	if _, dup := d.species[s.ID]; dup {
		panic(fmt.Sprintf("dex: duplicate species %q", s.ID))
	}
	d.species[s.ID] = s
}

// AddMove registers m.
//
// Precondition: m must pass Validate and its ID must not already be registered.
func (d *Dex) AddMove(m *Move) {
	if err := m.Validate(); err != nil {
		panic(err.Error())
	}
	if _, dup := d.moves[m.ID]; dup {
		panic(fmt.Sprintf("dex: duplicate move %q", m.ID))
	}
	d.moves[m.ID] = m
}

// Species returns the species for id.
func (d *Dex) Species(id string) (*Species, bool) {
	s, ok := d.species[id]
	return s, ok
}

// Move returns the move for id.
func (d *Dex) Move(id string) (*Move, bool) {
	m, ok := d.moves[id]
	return m, ok
}

// MustMove returns the move for id or panics.
func (d *Dex) MustMove(id string) *Move {
	m, ok := d.moves[id]
	if !ok {
		panic(fmt.Sprintf("dex: unknown move %q", id))
	}
	return m
}

// MustSpecies returns the species for id or panics.
func (d *Dex) MustSpecies(id string) *Species {
	s, ok := d.species[id]
	if !ok {
		panic(fmt.Sprintf("dex: unknown species %q", id))
	}
	return s
}

// Moves returns all moves sorted by ID. The order is stable so that random
// picks over the slice are reproducible.
func (d *Dex) Moves() []*Move {
	out := make([]*Move, 0, len(d.moves))
	for _, m := range d.moves {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllSpecies returns all species sorted by ID.
func (d *Dex) AllSpecies() []*Species {
	out := make([]*Species, 0, len(d.species))
	for _, s := range d.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
