// context.go — evaluation context and per-call state.
//
// A Context carries everything an expression evaluates against: the root
// object (bare `name` reads resolve properties on it), named variables
// (`#name`), the function registry (`upper(...)`) and the type converter.
// Contexts are plain mutable bags owned by the embedding application; xpr
// never mutates one except through explicit SetValue/SetVariable calls, and
// does not synchronize access — share a Context across goroutines only with
// external locking.
//
// A State wraps a Context for the duration of one evaluation. It adds the
// active-object stack that chain steps (a.b[0].c) read their target from.
// States are cheap; make one per evaluation. Distinct States over the same
// immutable tree are safe concurrently.
package xpr

import (
	"fmt"
	"sort"
)

// Function is a host function callable from expressions.
type Function func(args []any) (any, error)

// Context holds the bindings an expression evaluates against.
type Context struct {
	// Root is the object bare property references resolve on. May be nil.
	Root any
	// Converter performs type coercion for ValueAs and writes into typed
	// targets. Never nil after NewContext.
	Converter Converter

	vars  map[string]any
	funcs map[string]Function
}

// NewContext returns a context with the standard converter and the standard
// builtin functions installed (builtins.go).
func NewContext() *Context {
	c := &Context{
		Converter: StandardConverter{},
		vars:      map[string]any{},
		funcs:     map[string]Function{},
	}
	registerStandardBuiltins(c)
	return c
}

// SetRoot sets the root object and returns the context for chaining.
func (c *Context) SetRoot(root any) *Context {
	c.Root = root
	return c
}

// SetVariable binds #name to v.
func (c *Context) SetVariable(name string, v any) {
	c.vars[name] = v
}

// Variable looks up #name. Missing variables read as null during
// evaluation; the bool lets hosts tell null from unbound.
func (c *Context) Variable(name string) (any, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// VariableNames returns the bound variable names, sorted.
func (c *Context) VariableNames() []string {
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterFunction makes fn callable as name(...) in expressions,
// replacing any builtin of the same name.
func (c *Context) RegisterFunction(name string, fn Function) {
	c.funcs[name] = fn
}

// Func looks up a registered function.
func (c *Context) Func(name string) (Function, bool) {
	f, ok := c.funcs[name]
	return f, ok
}

// State is the per-evaluation wrapper around a Context.
type State struct {
	ctx    *Context
	active []TypedValue // target stack for chain steps
}

// NewState returns a fresh evaluation state over ctx. A nil ctx gets a
// default NewContext — the only implicit-context convenience in the package,
// and it sits here, at the layer a caller explicitly invokes.
func NewState(ctx *Context) *State {
	if ctx == nil {
		ctx = NewContext()
	}
	return &State{ctx: ctx}
}

// Context returns the underlying context.
func (s *State) Context() *Context { return s.ctx }

//// END_OF_PUBLIC

func (s *State) pushActive(tv TypedValue) { s.active = append(s.active, tv) }

func (s *State) popActive() { s.active = s.active[:len(s.active)-1] }

// activeValue returns the innermost chain target. Chain steps call this only
// when PreviousChild() reports they are not the leading step; an empty stack
// then means a node was evaluated outside its compound, which is a bug.
func (s *State) activeValue() (TypedValue, error) {
	if len(s.active) == 0 {
		return TypedValue{}, fmt.Errorf("xpr: chain step evaluated without an active target")
	}
	return s.active[len(s.active)-1], nil
}
