// tracer_lua.go - scriptable Tracer backed by gopher-lua

package hwstate

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/psxcore/psxlog"
)

// LuaTracer is the active counterpart to InertTracer: every Event call is
// recorded locally (so Log/Variables/Clear behave exactly like any other
// Tracer) and, if the loaded script defines a global on_event(date, name,
// value, width) function, forwarded to it. This lets a host embed small
// filters or formatters ("only log writes to 0x1f801070", "print CLUT
// changes as hex") without recompiling the emulator.
type LuaTracer struct {
	state    *lua.LState
	handler  string
	vars     []Variable
	varIndex map[string]int
	log      []Event
}

// NewLuaTracer loads script (Lua source) into a fresh interpreter. The
// script may define on_event; if it doesn't, LuaTracer still records events
// for Log/Variables like any other Tracer, it just has nothing to call out
// to.
func NewLuaTracer(script string) (*LuaTracer, error) {
	state := lua.NewState()
	if err := state.DoString(script); err != nil {
		state.Close()
		return nil, fmt.Errorf("lua tracer: load script: %w", err)
	}
	return &LuaTracer{
		state:    state,
		handler:  "on_event",
		varIndex: make(map[string]int),
	}, nil
}

// Close releases the underlying Lua interpreter.
func (t *LuaTracer) Close() {
	t.state.Close()
}

func (t *LuaTracer) Event(date uint64, variable string, value Value) {
	idx, ok := t.varIndex[variable]
	if !ok {
		idx = len(t.vars)
		t.vars = append(t.vars, NewVariable(variable, value.Width))
		t.varIndex[variable] = idx
	}
	t.log = append(t.log, Event{Date: date, ID: uint32(idx), Value: value.Bits})

	fn := t.state.GetGlobal(t.handler)
	if fn.Type() != lua.LTFunction {
		return
	}

	err := t.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
		lua.LNumber(date), lua.LString(variable),
		lua.LNumber(value.Bits), lua.LNumber(value.Width))
	if err != nil {
		// A bug in a user's trace script must not bring down the emulator.
		psxlog.Warnf("lua tracer on_event: %v", err)
	}
}

func (t *LuaTracer) Variables() []Variable { return t.vars }
func (t *LuaTracer) Log() []Event          { return t.log }
func (t *LuaTracer) Clear()                { t.log = t.log[:0] }

var _ Tracer = (*LuaTracer)(nil)
