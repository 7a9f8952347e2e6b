package ruleset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry provides lookup of formats by ID.
type Registry struct {
	rules map[string]*Ruleset
}

// NewRegistry returns a Registry preloaded with Builtins.
//
// Postcondition: Get("standard") succeeds.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]*Ruleset)}
	for _, rs := range Builtins() {
		r.Register(rs)
	}
	return r
}

// Register adds rs, replacing any format with the same ID.
//
// Precondition: rs must be non-nil and pass Validate.
func (r *Registry) Register(rs *Ruleset) {
	if rs == nil {
		panic("ruleset.Registry.Register: precondition violated: ruleset must be non-nil")
	}
	if err := rs.Validate(); err != nil {
		panic("ruleset.Registry.Register: precondition violated: " + err.Error())
	}
	r.rules[rs.ID] = rs
}

// Get returns the format for id, matched case-insensitively.
func (r *Registry) Get(id string) (*Ruleset, bool) {
	rs, ok := r.rules[strings.ToLower(id)]
	return rs, ok
}

// All returns every format sorted by ID.
func (r *Registry) All() []*Ruleset {
	out := make([]*Ruleset, 0, len(r.rules))
	for _, rs := range r.rules {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir as one Ruleset and registers
// it on top of the builtins. Omitted fields take the Standard defaults.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Registry or an error naming the offending file.
func LoadDirectory(dir string) (*Registry, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rs := &Ruleset{
			Generation:   1,
			MinLevel:     1,
			MaxLevel:     100,
			DefaultLevel: 50,
			MinTeamSize:  1,
			MaxTeamSize:  3,
			Clauses:      AllClauses(),
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(rs); err != nil {
			return nil, fmt.Errorf("parsing ruleset file %s: %w", path, err)
		}
		rs.ID = strings.ToLower(rs.ID)
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("ruleset file %s: %w", path, err)
		}
		reg.Register(rs)
	}
	return reg, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
