package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no VM is registered under a key.
const globalKey = "__global__"

// ErrScript wraps Lua runtime failures raised by a hook.
var ErrScript = errors.New("script error")

// Args builds hook arguments inside the VM that will run the hook, so tables
// are allocated by the right LState.
type Args func(L *lua.LState) []lua.LValue

// Values wraps plain values as Args.
func Values(vs ...lua.LValue) Args {
	return func(*lua.LState) []lua.LValue { return vs }
}

type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per key and exposes hook dispatch.
//
// Manager is safe for concurrent use. Each VM is single-threaded; a per-VM
// mutex serializes calls into the same key while different keys run
// concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadFile creates a sandboxed VM for key and executes the script at path.
//
// Precondition: key must be non-empty; path must be a readable file.
// Postcondition: The VM is registered, replacing any previous one under key.
func (m *Manager) LoadFile(key, path string, instLimit int) error {
	return m.loadInto(key, []string{path}, nil, instLimit)
}

// LoadDir creates a sandboxed VM for key and executes every *.lua file in
// dir in lexicographic order.
//
// Precondition: key must be non-empty; dir must be a readable directory.
// Postcondition: The VM is registered; returns error on Lua load failure.
func (m *Manager) LoadDir(key, dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return m.loadInto(key, files, nil, instLimit)
}

// LoadString creates a sandboxed VM for key from source text.
func (m *Manager) LoadString(key, src string, instLimit int) error {
	return m.loadInto(key, nil, &src, instLimit)
}

// LoadGlobal creates the shared VM that CallHook falls back to for keys
// without their own VM.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadGlobal(dir string, instLimit int) error {
	return m.LoadDir(globalKey, dir, instLimit)
}

func (m *Manager) loadInto(key string, files []string, src *string, instLimit int) error {
	if key == "" {
		return errors.New("scripting: key must not be empty")
	}
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	for _, path := range files {
		release := withBudget(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}
	if src != nil {
		release := withBudget(L, instLimit)
		err := L.DoString(*src)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading source for %q: %w", key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	return nil
}

func (m *Manager) lookup(key string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[key]; ok {
		return v
	}
	return m.vms[globalKey]
}

// HasHook reports whether the VM for key defines a global function named
// hook.
func (m *Manager) HasHook(key, hook string) bool {
	v := m.lookup(key)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// CallHook calls the named Lua global function in key's VM with a fresh
// instruction budget. If key has no VM, the global VM is tried as a
// fallback. Returns (LNil, nil) if the hook is not defined or no VM exists.
// A Lua runtime error is logged at Warn level and returned wrapped in
// ErrScript.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args Args) (lua.LValue, error) {
	v := m.lookup(key)
	if v == nil {
		m.logger.Info("scripting: no VM for key",
			zap.String("key", key),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	var argv []lua.LValue
	if args != nil {
		argv = args(L)
	}

	release := withBudget(L, v.limit)
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, argv...)
	release()
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("%w: %s.%s: %w", ErrScript, key, hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: CallHook returns (LNil, nil) for every key.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, key)
	}
}
