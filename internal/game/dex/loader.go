package dex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a content file. A file may carry species,
// moves, or both.
type file struct {
	Species []*Species `yaml:"species"`
	Moves   []*Move    `yaml:"moves"`
}

// LoadDirectory reads every *.yaml file in dir into a new Dex. Unknown keys
// are rejected so that a misspelled effect field cannot silently fall back to
// a basic attack.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Dex or a non-nil error naming the file.
func LoadDirectory(dir string) (*Dex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dex: reading directory %s: %w", dir, err)
	}
	d := New()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("dex: reading %s: %w", path, err)
		}
		if err := d.load(data); err != nil {
			return nil, fmt.Errorf("dex: parsing %s: %w", path, err)
		}
	}
	return d, nil
}

// Load parses content from a single YAML document stream into d.
func (d *Dex) Load(data []byte) error {
	return d.load(data)
}

func (d *Dex) load(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var f file
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		for _, s := range f.Species {
			if err := s.Validate(); err != nil {
				return err
			}
			if _, dup := d.species[s.ID]; dup {
				return fmt.Errorf("duplicate species %q", s.ID)
			}
			d.species[s.ID] = s
		}
		for _, m := range f.Moves {
			if err := m.Validate(); err != nil {
				return err
			}
			if _, dup := d.moves[m.ID]; dup {
				return fmt.Errorf("duplicate move %q", m.ID)
			}
			d.moves[m.ID] = m
		}
	}
}
