package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in key's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(key, hook string, args scripting.Args) (lua.LValue, error)
}

// PlannedAction is one operator produced by the planner, unresolved.
type PlannedAction struct {
	Operator string
	Action   string
	Target   string
}

// Planner evaluates an HTN domain for one side and produces an ordered list
// of candidate operators. Choose takes the first one that resolves to a
// legal action, so later operators act as fallbacks.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	key    string
}

// NewPlanner constructs a Planner whose preconditions run in caller's VM
// for key.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, key string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, key: key}
}

// Plan decomposes the root task for view: ReplaceTask when view is a
// replacement and the domain declares it, RootTask otherwise.
//
// Postcondition: returns non-nil slice (may be empty); Lua failures are
// treated as precondition-false.
func (p *Planner) Plan(view View) []PlannedAction {
	root := RootTask
	if view.Replacement && p.domain.HasTask(ReplaceTask) {
		root = ReplaceTask
	}
	taskQueue := []string{root}
	result := []PlannedAction{}

	const maxDepth = 32 // guard against infinite loops
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, PlannedAction{Operator: op.ID, Action: op.Action, Target: op.Target})
			continue
		}

		method := p.findApplicableMethod(current, view)
		if method == nil {
			continue
		}
		taskQueue = append(append([]string(nil), method.Subtasks...), taskQueue...)
	}
	return result
}

// Choose implements Chooser.
//
// Postcondition: the returned action is in view.Legal, or the error is
// ErrNoChoice.
func (p *Planner) Choose(view View) (combat.Action, error) {
	for _, pa := range p.Plan(view) {
		if a, ok := resolve(view, pa); ok {
			return a, nil
		}
	}
	if view.Replacement {
		if a, ok := view.HealthiestSwitch(); ok {
			return a, nil
		}
	}
	return combat.Action{}, fmt.Errorf("%w: domain %q has no applicable operator", ErrNoChoice, p.domain.ID)
}

// findApplicableMethod returns the first Method for taskID whose precondition passes,
// or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always passes.
func (p *Planner) findApplicableMethod(taskID string, view View) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		val, _ := p.caller.CallHook(p.key, m.Precondition, view.luaArgs())
		if val == lua.LTrue {
			return m
		}
	}
	return nil
}

// resolve maps an operator onto a legal action of view.
func resolve(view View, pa PlannedAction) (combat.Action, bool) {
	switch pa.Action {
	case OpMove:
		switch pa.Target {
		case TargetStrongest:
			return view.StrongestMove()
		case TargetFirst, "":
			return view.FirstOf(combat.ActionMove)
		default:
			return view.MoveByID(pa.Target)
		}
	case OpSwitch:
		switch pa.Target {
		case TargetHealthiest:
			return view.HealthiestSwitch()
		case TargetFirst, "":
			return view.FirstOf(combat.ActionSwitch)
		default:
			return view.SwitchToSpecies(pa.Target)
		}
	case OpStruggle:
		return view.FirstOf(combat.ActionStruggle)
	}
	return combat.Action{}, false
}
