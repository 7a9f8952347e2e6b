package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// ChooseHook is the global Lua function a policy script must define. It
// receives the view table and returns {kind = "move"|"switch"|"struggle",
// index = n} with a 1-based index.
const ChooseHook = "choose"

// Scripted delegates each decision to a Lua script.
type Scripted struct {
	mgr *scripting.Manager
	key string
}

// NewScripted returns a policy calling ChooseHook in mgr's VM for key.
//
// Precondition: mgr must not be nil; a script must be loaded under key.
// Postcondition: Returns an error if the script does not define ChooseHook.
func NewScripted(mgr *scripting.Manager, key string) (*Scripted, error) {
	if mgr == nil {
		panic("ai.NewScripted: manager must not be nil")
	}
	if !mgr.HasHook(key, ChooseHook) {
		return nil, fmt.Errorf("ai: script %q does not define %s(view)", key, ChooseHook)
	}
	return &Scripted{mgr: mgr, key: key}, nil
}

// Choose implements Chooser. Script errors and malformed or illegal results
// are returned as errors; nothing is substituted.
func (s *Scripted) Choose(view View) (combat.Action, error) {
	ret, err := s.mgr.CallHook(s.key, ChooseHook, view.luaArgs())
	if err != nil {
		return combat.Action{}, err
	}
	if ret == lua.LNil {
		return combat.Action{}, fmt.Errorf("%w: %s returned nil", ErrNoChoice, s.key)
	}
	a, ok := actionFromLua(ret)
	if !ok {
		return combat.Action{}, fmt.Errorf("%w: %s returned %s", ErrIllegalChoice, s.key, ret.String())
	}
	if !view.Allows(a) {
		return combat.Action{}, fmt.Errorf("%w: %s chose %s", ErrIllegalChoice, s.key, a)
	}
	return a, nil
}
