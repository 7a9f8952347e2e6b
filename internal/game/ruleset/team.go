package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/dex"
)

// TeamMember is one roster entry as written in a team file. Level 0 takes
// the format's DefaultLevel.
type TeamMember struct {
	Species string   `yaml:"species"`
	Level   int      `yaml:"level"`
	Moves   []string `yaml:"moves"`
}

// Team is a named roster loaded from YAML.
//
// Precondition: ID must be non-empty and Members must be non-empty after loading.
type Team struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Members     []TeamMember `yaml:"members"`
}

// Resolve looks up every species and move in d and fills missing levels
// from rs, then validates the result against rs.
//
// Postcondition: Returns a roster accepted by rs.ValidateTeam, or an error
// naming every unknown ID and rule violation.
func (t *Team) Resolve(d *dex.Dex, rs *Ruleset) ([]Member, error) {
	var (
		out  = make([]Member, 0, len(t.Members))
		errs []error
	)
	for i, tm := range t.Members {
		s, ok := d.Species(tm.Species)
		if !ok {
			errs = append(errs, fmt.Errorf("member %d: unknown species %q", i+1, tm.Species))
			continue
		}
		m := Member{Species: s, Level: tm.Level}
		if m.Level == 0 {
			m.Level = rs.DefaultLevel
		}
		for _, id := range tm.Moves {
			mv, ok := d.Move(id)
			if !ok {
				errs = append(errs, fmt.Errorf("member %d: unknown move %q", i+1, id))
				continue
			}
			m.Moves = append(m.Moves, mv)
		}
		out = append(out, m)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("team %s: %w", t.ID, errors.Join(errs...))
	}
	if err := rs.ValidateTeam(out); err != nil {
		return nil, fmt.Errorf("team %s: %w", t.ID, err)
	}
	return out, nil
}

// LoadTeams reads all .yaml files in dir and parses each as a Team.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed teams (may be empty slice) or a non-nil error.
func LoadTeams(dir string) ([]*Team, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	teams := make([]*Team, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var team Team
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&team); err != nil {
			return nil, fmt.Errorf("parsing team file %s: %w", path, err)
		}
		if team.ID == "" || len(team.Members) == 0 {
			return nil, fmt.Errorf("team file %s: id and members are required", path)
		}
		teams = append(teams, &team)
	}
	return teams, nil
}
