// Package clscript implements an embeddable interpreter for a
// statically-typed, C-like scripting language with classes, handles
// (reference-style object references), arrays, and enums. A host
// application loads source text, registers native functions, objects, and
// classes, and invokes script functions, passing values across the
// boundary.
//
// The pipeline is linear: source text is lexed into tokens, parsed into an
// AST via recursive-descent precedence climbing, and evaluated by a
// tree-walking Evaluator against a lexically scoped Environment. Example:
//
//	engine := clscript.NewEngine(clscript.Config{})
//	script, err := engine.Load(`
//	    int add(int a, int b) { return a + b; }
//	`)
//	result, err := script.Call(context.Background(), "add", []clscript.Value{
//	    clscript.NewInt(2), clscript.NewInt(3),
//	})
//
// Comments starting with // run to end of line; /* ... */ comments may
// span lines. There is no static type checker, no bytecode compiler, no
// generational garbage collector, no module system, and no coroutines —
// objects are reclaimed by Go's own garbage collector once no variable,
// field, array element, or Handle value refers to them.
package clscript
