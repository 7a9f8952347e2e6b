package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// Lua sees slots and indices 1-based.

func (v View) luaArgs() scripting.Args {
	return func(L *lua.LState) []lua.LValue { return []lua.LValue{v.toLua(L)} }
}

func (v View) toLua(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("turn", lua.LNumber(v.Turn))
	t.RawSetString("side", lua.LString(v.Side.String()))
	t.RawSetString("replacement", lua.LBool(v.Replacement))
	t.RawSetString("self", memberToLua(L, v.Self))
	t.RawSetString("opponent", memberToLua(L, v.Opponent))
	team := L.NewTable()
	for _, m := range v.Team {
		team.Append(memberToLua(L, m))
	}
	t.RawSetString("team", team)
	legal := L.NewTable()
	for _, a := range v.Legal {
		legal.Append(actionToLua(L, a))
	}
	t.RawSetString("legal", legal)
	return t
}

func memberToLua(L *lua.LState, m MemberView) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("slot", lua.LNumber(m.Slot+1))
	t.RawSetString("species", lua.LString(m.Species))
	t.RawSetString("level", lua.LNumber(m.Level))
	t.RawSetString("hp", lua.LNumber(m.HP))
	t.RawSetString("max_hp", lua.LNumber(m.MaxHP))
	t.RawSetString("hp_percent", lua.LNumber(m.HPPercent()))
	t.RawSetString("status", lua.LString(m.Status))
	t.RawSetString("active", lua.LBool(m.Active))
	t.RawSetString("fainted", lua.LBool(m.Fainted))
	t.RawSetString("types", stringsToLua(L, m.Types))
	t.RawSetString("volatiles", stringsToLua(L, m.Volatiles))
	moves := L.NewTable()
	for _, mv := range m.Moves {
		mt := L.NewTable()
		mt.RawSetString("slot", lua.LNumber(mv.Slot+1))
		mt.RawSetString("id", lua.LString(mv.ID))
		mt.RawSetString("type", lua.LString(mv.Type))
		mt.RawSetString("power", lua.LNumber(mv.Power))
		mt.RawSetString("accuracy", lua.LNumber(mv.Accuracy))
		mt.RawSetString("pp", lua.LNumber(mv.PP))
		mt.RawSetString("max_pp", lua.LNumber(mv.MaxPP))
		mt.RawSetString("effectiveness", lua.LNumber(mv.Effectiveness))
		mt.RawSetString("banned", lua.LBool(mv.Banned))
		mt.RawSetString("usable", lua.LBool(mv.Usable))
		moves.Append(mt)
	}
	t.RawSetString("moves", moves)
	return t
}

func stringsToLua(L *lua.LState, ss []string) *lua.LTable {
	t := L.NewTable()
	for _, s := range ss {
		t.Append(lua.LString(s))
	}
	return t
}

func actionToLua(L *lua.LState, a combat.Action) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("kind", lua.LString(a.Kind.String()))
	if a.Kind != combat.ActionStruggle {
		t.RawSetString("index", lua.LNumber(a.Index+1))
	}
	return t
}

// actionFromLua decodes {kind = "move"|"switch"|"struggle", index = n}.
func actionFromLua(v lua.LValue) (combat.Action, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return combat.Action{}, false
	}
	kind, _ := t.RawGetString("kind").(lua.LString)
	if kind == "struggle" {
		return combat.Struggle(), true
	}
	idx, ok := t.RawGetString("index").(lua.LNumber)
	if !ok {
		return combat.Action{}, false
	}
	switch kind {
	case "move":
		return combat.UseMove(int(idx) - 1), true
	case "switch":
		return combat.SwitchTo(int(idx) - 1), true
	}
	return combat.Action{}, false
}
