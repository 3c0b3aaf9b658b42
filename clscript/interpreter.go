package clscript

import (
	"context"
	"fmt"
)

// Config controls execution bounds enforced while running a script.
type Config struct {
	// StepQuota caps the number of statement/expression evaluation steps a
	// single Load or Call may perform before failing with a RuntimeError.
	// Zero selects the default of 1,000,000 steps; a negative value
	// disables the quota.
	StepQuota int
	// RecursionLimit caps the depth of nested script function calls.
	// Zero selects the default of 256; a negative value disables the limit.
	RecursionLimit int
}

// Engine holds the class, enum, and global-function tables shared by every
// script Loaded against it, plus the host API used to register native
// globals before running a script.
type Engine struct {
	config  Config
	global  *environment
	classes map[string]*classInfo
	enums   map[string]*enumInfo
}

// NewEngine constructs an Engine with sane defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.StepQuota == 0 {
		cfg.StepQuota = 1_000_000
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = 256
	}
	return &Engine{
		config:  cfg,
		global:  newEnvironment(nil),
		classes: make(map[string]*classInfo),
		enums:   make(map[string]*enumInfo),
	}
}

// RegisterFunction exposes a host function to scripts under name.
func (e *Engine) RegisterFunction(name string, fn NativeFunc) {
	e.global.define(name, NewNativeFunction(name, fn))
}

// RegisterGlobal binds an arbitrary Value as a global, visible to every
// script this Engine subsequently loads.
func (e *Engine) RegisterGlobal(name string, v Value) {
	e.global.define(name, v)
}

// RegisterInt is a convenience wrapper around RegisterGlobal for integer
// constants (commonly used to expose host-side configuration or limits).
func (e *Engine) RegisterInt(name string, v int) {
	e.global.define(name, NewInt(int64(v)))
}

// RegisterObject exposes a host value to scripts as a Native global, named
// typeName in diagnostics and reflected over for member/method access.
func (e *Engine) RegisterObject(name, typeName string, data any) {
	e.global.define(name, wrapNative(typeName, data))
}

// RegisterClass exposes a host-side factory under name as a callable
// script value: `name(args...)` invokes factory and wraps its result as a
// Native, the same way `new ScriptClass(args...)` wraps a freshly built
// ObjectValue. This is the native counterpart to a script class
// declaration, for hosts that want scripts to construct Go-backed values
// without a corresponding ClassDecl.
func (e *Engine) RegisterClass(name string, factory func(args []Value) (any, error)) {
	e.global.define(name, NewNativeFunction(name, func(args []Value) (Value, error) {
		data, err := factory(args)
		if err != nil {
			return Value{}, err
		}
		return wrapNative(name, data), nil
	}))
}

// GetGlobal reads a global binding by name, for hosts inspecting script
// state between calls.
func (e *Engine) GetGlobal(name string) (Value, bool) {
	return e.global.get(name)
}

// SetGlobal writes a global binding by name, for hosts driving script
// state between calls.
func (e *Engine) SetGlobal(name string, v Value) {
	e.global.set(name, v)
}

// Script is a parsed, registered program ready to be invoked via Call.
type Script struct {
	engine  *Engine
	program *Program
	source  string
}

// Load parses source, registers its classes, enums, and functions against
// the Engine, and evaluates its top-level variable declarations. The
// returned Script's global functions can then be invoked via Call.
func (e *Engine) Load(source string) (*Script, error) {
	prog, err := parseProgram(source)
	if err != nil {
		return nil, err
	}
	ev := &evaluator{engine: e, source: source}
	if err := ev.execute(prog); err != nil {
		return nil, err
	}
	return &Script{engine: e, program: prog, source: source}, nil
}

// Call invokes the global function or native function named name with
// args, under ctx. Each call runs with a fresh evaluator sharing the
// Engine's global environment, class table, and enum table, so step and
// recursion accounting never leaks between calls.
func (s *Script) Call(ctx context.Context, name string, args []Value) (Value, error) {
	fnVal, ok := s.engine.global.get(name)
	if !ok {
		return Value{}, fmt.Errorf("clscript: no such function %q", name)
	}
	ev := &evaluator{engine: s.engine, ctx: ctx, source: s.source}
	return ev.callValue(fnVal, args, Position{})
}
