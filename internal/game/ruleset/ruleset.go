// Package ruleset defines battle formats: level and team-size bounds,
// species restrictions, and the clause toggles the engine enforces.
package ruleset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlecore/internal/game/dex"
)

// Clauses are the format-level restrictions. OHKO and Evasion ban moves
// outright; Sleep and Freeze gate only the status application step.
type Clauses struct {
	Sleep   bool `yaml:"sleep"`
	Freeze  bool `yaml:"freeze"`
	OHKO    bool `yaml:"ohko"`
	Evasion bool `yaml:"evasion"`
}

// AllClauses returns every clause enabled.
func AllClauses() Clauses {
	return Clauses{Sleep: true, Freeze: true, OHKO: true, Evasion: true}
}

// Ruleset is one battle format.
//
// Precondition: ID must be non-empty and MinLevel <= DefaultLevel <= MaxLevel.
type Ruleset struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Generation       int      `yaml:"generation"`
	MinLevel         int      `yaml:"min_level"`
	MaxLevel         int      `yaml:"max_level"`
	DefaultLevel     int      `yaml:"default_level"`
	LevelSumLimit    int      `yaml:"level_sum_limit"` // 0 = unlimited
	MinTeamSize      int      `yaml:"min_team_size"`
	MaxTeamSize      int      `yaml:"max_team_size"`
	BasicOnly        bool     `yaml:"basic_only"`
	AllowLegendaries bool     `yaml:"allow_legendaries"`
	BannedSpecies    []string `yaml:"banned_species"`
	AllowedSpecies   []string `yaml:"allowed_species"` // empty = any
	BannedMoves      []string `yaml:"banned_moves"`
	// UseBaseStats skips the stat formula and battles with raw base stats.
	UseBaseStats bool    `yaml:"use_base_stats"`
	Clauses      Clauses `yaml:"clauses"`
}

// Validate checks the ruleset for internally inconsistent bounds. All
// problems are reported together.
func (r *Ruleset) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if r.MinLevel < 1 || r.MaxLevel > 100 || r.MinLevel > r.MaxLevel {
		errs = append(errs, fmt.Errorf("level bounds %d..%d invalid", r.MinLevel, r.MaxLevel))
	}
	if r.DefaultLevel < r.MinLevel || r.DefaultLevel > r.MaxLevel {
		errs = append(errs, fmt.Errorf("default_level %d outside %d..%d", r.DefaultLevel, r.MinLevel, r.MaxLevel))
	}
	if r.MinTeamSize < 1 || r.MinTeamSize > r.MaxTeamSize {
		errs = append(errs, fmt.Errorf("team size bounds %d..%d invalid", r.MinTeamSize, r.MaxTeamSize))
	}
	if r.Generation != 0 && r.Generation != 1 {
		errs = append(errs, fmt.Errorf("generation %d is not supported", r.Generation))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ruleset %q: %w", r.ID, errors.Join(errs...))
	}
	return nil
}

// Member is one team slot as seen by team validation.
type Member struct {
	Species *dex.Species
	Level   int
	Moves   []*dex.Move
}

// ValidateMember checks one creature against the format.
func (r *Ruleset) ValidateMember(m Member) error {
	s := m.Species
	if s == nil {
		return errors.New("member has no species")
	}
	if contains(r.BannedSpecies, s.ID) {
		return fmt.Errorf("%s is banned in %s", s.Name, r.Name)
	}
	if len(r.AllowedSpecies) > 0 && !contains(r.AllowedSpecies, s.ID) {
		return fmt.Errorf("%s is not allowed in %s", s.Name, r.Name)
	}
	if r.BasicOnly && !s.Basic {
		return fmt.Errorf("%s is not a basic species (required for %s)", s.Name, r.Name)
	}
	if !r.AllowLegendaries && s.Legendary {
		return fmt.Errorf("%s is legendary (not allowed in %s)", s.Name, r.Name)
	}
	if m.Level < r.MinLevel || m.Level > r.MaxLevel {
		return fmt.Errorf("%s level %d outside %d..%d", s.Name, m.Level, r.MinLevel, r.MaxLevel)
	}
	if len(m.Moves) == 0 || len(m.Moves) > 4 {
		return fmt.Errorf("%s must know 1 to 4 moves, has %d", s.Name, len(m.Moves))
	}
	for _, mv := range m.Moves {
		if contains(r.BannedMoves, mv.ID) {
			return fmt.Errorf("%s knows banned move %s", s.Name, mv.ID)
		}
		if !s.CanLearn(mv.ID) {
			return fmt.Errorf("%s cannot learn %s", s.Name, mv.ID)
		}
	}
	return nil
}

// ValidateTeam checks a whole team, reporting every violation.
func (r *Ruleset) ValidateTeam(team []Member) error {
	var errs []error
	if len(team) < r.MinTeamSize {
		errs = append(errs, fmt.Errorf("team needs at least %d members, has %d", r.MinTeamSize, len(team)))
	}
	if len(team) > r.MaxTeamSize {
		errs = append(errs, fmt.Errorf("team cannot exceed %d members, has %d", r.MaxTeamSize, len(team)))
	}
	sum := 0
	for _, m := range team {
		sum += m.Level
		if err := r.ValidateMember(m); err != nil {
			errs = append(errs, err)
		}
	}
	if r.LevelSumLimit > 0 && sum > r.LevelSumLimit {
		errs = append(errs, fmt.Errorf("team level sum %d exceeds limit %d", sum, r.LevelSumLimit))
	}
	return errors.Join(errs...)
}

// Summary returns a one-line description such as "Poke Cup: Lv 50-55, sum <= 155, 3 members".
func (r *Ruleset) Summary() string {
	var parts []string
	if r.MinLevel == r.MaxLevel {
		parts = append(parts, fmt.Sprintf("Lv %d", r.DefaultLevel))
	} else {
		parts = append(parts, fmt.Sprintf("Lv %d-%d", r.MinLevel, r.MaxLevel))
	}
	if r.LevelSumLimit > 0 {
		parts = append(parts, fmt.Sprintf("sum <= %d", r.LevelSumLimit))
	}
	parts = append(parts, fmt.Sprintf("%d members", r.MaxTeamSize))
	if r.BasicOnly {
		parts = append(parts, "basic only")
	}
	return r.Name + ": " + strings.Join(parts, ", ")
}

func contains(list []string, id string) bool {
	for _, x := range list {
		if strings.EqualFold(x, id) {
			return true
		}
	}
	return false
}
