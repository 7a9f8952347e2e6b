package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	key := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadString(key, luaSrc, 0))
	ret, err := mgr.CallHook(key, hook, scripting.Values(args...))
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewSeededRoller(1, zap.NewNop()), logger)

	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
		assert.Equal(t, "lua", e.ContextMap()["source"])
	}
	assert.Equal(t, []string{"d", "i", "w", "e"}, msgs)
}

func TestEngineDice_RollUsesManagerRoller(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function roll()
			return engine.dice.roll("2d6+1")
		end
	`, "roll")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int(n), 3)
	assert.LessOrEqual(t, int(n), 13)
}

func TestEngineDice_BadExpressionRaises(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("k", `function roll() return engine.dice.roll("lots") end`, 0))
	_, err := mgr.CallHook("k", "roll", nil)
	assert.ErrorIs(t, err, scripting.ErrScript)
}

func TestEngineDice_SameSeedSameDraws(t *testing.T) {
	draw := func() lua.LValue {
		mgr := scripting.NewManager(dice.NewSeededRoller(99, zap.NewNop()), zap.NewNop())
		require.NoError(t, mgr.LoadString("k", `
			function draws()
				local s = ""
				for i = 1, 10 do s = s .. engine.dice.random(6) end
				return s
			end
		`, 0))
		ret, err := mgr.CallHook("k", "draws", nil)
		require.NoError(t, err)
		return ret
	}
	assert.Equal(t, draw(), draw())
}

func TestProperty_EngineDiceRandomInRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("k", `function pick(n) return engine.dice.random(n) end`, 0))
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		ret, err := mgr.CallHook("k", "pick", scripting.Values(lua.LNumber(n)))
		require.NoError(rt, err)
		v := int(ret.(lua.LNumber))
		if v < 1 || v > n {
			rt.Fatalf("random(%d) returned %d", n, v)
		}
	})
}
