package combat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/ruleset"
)

// Engine manages independent battles keyed by battle ID.
// All methods are safe for concurrent use; each Battle itself is not.
type Engine struct {
	mu      sync.RWMutex
	battles map[uuid.UUID]*Battle
}

// NewEngine creates an empty Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{battles: make(map[uuid.UUID]*Battle)}
}

// StartBattle creates a battle with New and registers it.
//
// Postcondition: Returns the new Battle, or an error if New fails or a
// battle with the same ID is already registered.
func (e *Engine) StartBattle(cfg Config, teamA, teamB []ruleset.Member) (*Battle, error) {
	b, err := New(cfg, teamA, teamB)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.battles[b.ID]; exists {
		return nil, fmt.Errorf("battle %s already active", b.ID)
	}
	e.battles[b.ID] = b
	return b, nil
}

// GetBattle returns the battle with id.
//
// Postcondition: Returns (battle, true) if found, or (nil, false) otherwise.
func (e *Engine) GetBattle(id uuid.UUID) (*Battle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	return b, ok
}

// EndBattle removes the battle with id. Reports whether it was registered.
func (e *Engine) EndBattle(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.battles[id]; !ok {
		return false
	}
	delete(e.battles, id)
	return true
}

// IDs returns the registered battle IDs in lexical order.
func (e *Engine) IDs() []uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(e.battles))
	for id := range e.battles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Len returns the number of registered battles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}
