package ai_test

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// mockScriptCaller returns the given value for every hook call and counts
// calls.
type mockScriptCaller struct {
	returnVal lua.LValue
	err       error
	calls     int
}

func (m *mockScriptCaller) CallHook(key, hook string, args scripting.Args) (lua.LValue, error) {
	m.calls++
	if m.err != nil {
		return lua.LNil, m.err
	}
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

func retreatDomain() *ai.Domain {
	return &ai.Domain{
		ID: "retreater",
		Tasks: []*ai.Task{
			{ID: ai.RootTask},
			{ID: ai.ReplaceTask},
			{ID: "fight"},
		},
		Methods: []*ai.Method{
			{TaskID: ai.RootTask, ID: "retreat", Precondition: "should_retreat", Subtasks: []string{"switch_healthiest"}},
			{TaskID: ai.RootTask, ID: "fight_mode", Subtasks: []string{"fight"}},
			{TaskID: "fight", ID: "hit", Subtasks: []string{"strongest_move", "struggle"}},
			{TaskID: ai.ReplaceTask, ID: "bring_in", Subtasks: []string{"switch_first"}},
		},
		Operators: []*ai.Operator{
			{ID: "strongest_move", Action: ai.OpMove, Target: ai.TargetStrongest},
			{ID: "struggle", Action: ai.OpStruggle},
			{ID: "switch_healthiest", Action: ai.OpSwitch, Target: ai.TargetHealthiest},
			{ID: "switch_first", Action: ai.OpSwitch, Target: ai.TargetFirst},
		},
	}
}

func TestPlanner_Plan_FightsWhenPreconditionFalse(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LFalse}
	planner := ai.NewPlanner(retreatDomain(), caller, "policy")

	actions := planner.Plan(ai.View{})
	if len(actions) != 2 || actions[0].Operator != "strongest_move" || actions[1].Action != ai.OpStruggle {
		t.Fatalf("expected [strongest_move struggle], got %v", actions)
	}
	if caller.calls != 1 {
		t.Fatalf("expected one precondition call, got %d", caller.calls)
	}
}

func TestPlanner_Choose_RetreatsWhenPreconditionTrue(t *testing.T) {
	planner := ai.NewPlanner(retreatDomain(), &mockScriptCaller{returnVal: lua.LTrue}, "policy")
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})
	a, err := planner.Choose(v)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.SwitchTo(1) {
		t.Fatalf("expected switch to slot 1, got %s", a)
	}
}

func TestPlanner_Choose_ScriptErrorCountsAsFalse(t *testing.T) {
	caller := &mockScriptCaller{err: errors.New("boom")}
	planner := ai.NewPlanner(retreatDomain(), caller, "policy")
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})
	a, err := planner.Choose(v)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.UseMove(1) {
		t.Fatalf("expected thunderbolt, got %s", a)
	}
}

func TestPlanner_Choose_FallsBackThroughOperators(t *testing.T) {
	planner := ai.NewPlanner(retreatDomain(), &mockScriptCaller{}, "policy")
	v := ai.View{Legal: []combat.Action{combat.Struggle()}}
	a, err := planner.Choose(v)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.Struggle() {
		t.Fatalf("expected struggle, got %s", a)
	}
}

func TestPlanner_Choose_ReplacementUsesReplaceTask(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LTrue}
	planner := ai.NewPlanner(retreatDomain(), caller, "policy")
	a, err := planner.Choose(replacementView(0, 20, 90))
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.SwitchTo(1) {
		t.Fatalf("expected first switch, got %s", a)
	}
	if caller.calls != 0 {
		t.Fatalf("replace task has no preconditions, got %d calls", caller.calls)
	}
}

func TestPlanner_Choose_NoApplicableOperator(t *testing.T) {
	d := &ai.Domain{
		ID:        "picky",
		Tasks:     []*ai.Task{{ID: ai.RootTask}},
		Methods:   []*ai.Method{{TaskID: ai.RootTask, ID: "only", Subtasks: []string{"mewtwo"}}},
		Operators: []*ai.Operator{{ID: "mewtwo", Action: ai.OpSwitch, Target: "mewtwo"}},
	}
	planner := ai.NewPlanner(d, &mockScriptCaller{}, "policy")
	v := ai.NewView(electricVs(t, "lapras"), combat.Request{Side: combat.SideA})
	if _, err := planner.Choose(v); !errors.Is(err, ai.ErrNoChoice) {
		t.Fatalf("expected ErrNoChoice, got %v", err)
	}
}

func TestPlanner_BundledDomainWithLua(t *testing.T) {
	domains, err := ai.LoadDomains("../../../content/ai")
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	mgr := newManager(t)
	if err := mgr.LoadFile("aggressive", "../../../content/scripts/aggressive.lua", 100000); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	reg := ai.NewRegistry()
	for _, d := range domains {
		if err := reg.Register(d, mgr, d.ID); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	planner, ok := reg.PlannerFor("aggressive")
	if !ok {
		t.Fatal("expected aggressive planner")
	}

	v := ai.NewView(electricVs(t, "gengar"), combat.Request{Side: combat.SideA})
	a, err := planner.Choose(v)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.UseMove(2) {
		t.Fatalf("expected earthquake against gengar, got %s", a)
	}

	// A badly hurt active with no super-effective move retreats.
	v.Self.HP = 10
	v.Self.Moves[2].Effectiveness = 1
	a, err = planner.Choose(v)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != combat.SwitchTo(1) {
		t.Fatalf("expected retreat to slot 1, got %s", a)
	}
}

func TestProperty_Planner_NeverReturnsNilSlice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var lv lua.LValue = lua.LFalse
		if rapid.Bool().Draw(rt, "precond") {
			lv = lua.LTrue
		}
		planner := ai.NewPlanner(retreatDomain(), &mockScriptCaller{returnVal: lv}, "policy")
		view := ai.View{Replacement: rapid.Bool().Draw(rt, "replacement")}
		if planner.Plan(view) == nil {
			rt.Fatal("Plan must return non-nil slice")
		}
	})
}

func TestPlanner_Plan_BoundedOnRecursiveDomain(t *testing.T) {
	d := &ai.Domain{
		ID:        "loop",
		Tasks:     []*ai.Task{{ID: ai.RootTask}},
		Methods:   []*ai.Method{{TaskID: ai.RootTask, ID: "again", Subtasks: []string{"hit", ai.RootTask}}},
		Operators: []*ai.Operator{{ID: "hit", Action: ai.OpMove}},
	}
	actions := ai.NewPlanner(d, &mockScriptCaller{}, "policy").Plan(ai.View{})
	if len(actions) == 0 || len(actions) > 32 {
		t.Fatalf("expected a bounded non-empty plan, got %d actions", len(actions))
	}
}

func TestNewPlanner_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ai.NewPlanner(nil, &mockScriptCaller{}, "policy")
}
