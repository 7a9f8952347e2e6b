// Package content loads the YAML content tree a battle run needs.
package content

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dex"
	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

// Bundle is everything loaded from one content directory.
type Bundle struct {
	Dex        *dex.Dex
	Rulesets   *ruleset.Registry
	Conditions *condition.Registry
	Teams      map[string]*ruleset.Team
	Domains    map[string]*ai.Domain
}

// Load reads dex/, rulesets/, conditions/, teams/ and ai/ under cfg.Dir.
//
// Postcondition: Returns a complete Bundle or an error naming the
// subdirectory that failed.
func Load(cfg config.ContentConfig) (*Bundle, error) {
	d, err := dex.LoadDirectory(cfg.Subdir("dex"))
	if err != nil {
		return nil, fmt.Errorf("content: dex: %w", err)
	}
	rules, err := ruleset.LoadDirectory(cfg.Subdir("rulesets"))
	if err != nil {
		return nil, fmt.Errorf("content: rulesets: %w", err)
	}
	conds, err := condition.LoadDirectory(cfg.Subdir("conditions"))
	if err != nil {
		return nil, fmt.Errorf("content: conditions: %w", err)
	}
	teams, err := ruleset.LoadTeams(cfg.Subdir("teams"))
	if err != nil {
		return nil, fmt.Errorf("content: teams: %w", err)
	}
	domains, err := ai.LoadDomains(cfg.Subdir("ai"))
	if err != nil {
		return nil, fmt.Errorf("content: ai: %w", err)
	}

	b := &Bundle{
		Dex:        d,
		Rulesets:   rules,
		Conditions: conds,
		Teams:      make(map[string]*ruleset.Team, len(teams)),
		Domains:    make(map[string]*ai.Domain, len(domains)),
	}
	for _, t := range teams {
		if _, dup := b.Teams[t.ID]; dup {
			return nil, fmt.Errorf("content: duplicate team %q", t.ID)
		}
		b.Teams[t.ID] = t
	}
	for _, dom := range domains {
		if _, dup := b.Domains[dom.ID]; dup {
			return nil, fmt.Errorf("content: duplicate ai domain %q", dom.ID)
		}
		b.Domains[dom.ID] = dom
	}
	return b, nil
}

// TeamIDs returns the loaded team IDs sorted.
func (b *Bundle) TeamIDs() []string {
	out := make([]string, 0, len(b.Teams))
	for id := range b.Teams {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Check resolves every team against every ruleset it fits and reports the
// teams that fit none.
//
// Postcondition: Returns nil when each team is legal in at least one ruleset.
func (b *Bundle) Check() error {
	for _, id := range b.TeamIDs() {
		var lastErr error
		ok := false
		for _, rs := range b.Rulesets.All() {
			if _, err := b.Teams[id].Resolve(b.Dex, rs); err != nil {
				lastErr = err
				continue
			}
			ok = true
			break
		}
		if !ok {
			return fmt.Errorf("content: team %q fits no ruleset: %w", id, lastErr)
		}
	}
	return nil
}
