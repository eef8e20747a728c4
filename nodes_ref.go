// nodes_ref.go — references, chains, calls and assignment.
//
// This file holds the node kinds that touch the evaluation context:
//
//	VariableRef   #name           reads/writes a context variable
//	PropertyRef   name / .name    resolves a property on the root object or,
//	                              inside a chain, on the active target;
//	                              '?.name' (SafePropertyRef) tolerates null
//	Indexer       [expr]          indexes slices, arrays, maps and strings
//	Compound      a.b[0].c        drives a chain left to right
//	FunctionCall  name(args)      calls a registered function
//	Assign        lhs = rhs       writes through a writable lhs
//
// Chain mechanics: the compound evaluates its leading child on its own, then
// feeds each step the previous result through the state's active-target
// stack. A step tells the two cases apart with PreviousChild() — a leading
// or standalone reference resolves against the root object, an inner step
// against the active target. When a step yields null mid-chain the compound
// asks that step's NextSiblingIs(KindSafePropertyRef): a null-tolerant
// follower turns the whole chain null, anything else is a VALUE_IS_NIL error
// positioned at the step that would have dereferenced it.
//
// Write-back: variables always accept writes; properties write into maps and
// settable struct fields; indexers write into slices and maps. The last
// chain step governs a compound's writability.
package xpr

import (
	"fmt"
	"reflect"
	"strings"
)

// VariableRef is #name. Unbound variables read as null; writes bind.
type VariableRef struct {
	baseNode
	name string
}

func newVariableRef(pos Pos, name string) *VariableRef {
	n := &VariableRef{name: name}
	n.init(KindVariableRef, pos)
	return n
}

func (n *VariableRef) ValueInternal(state *State) (TypedValue, error) {
	v, _ := state.Context().Variable(n.name)
	return NewTypedValue(v), nil
}

func (n *VariableRef) IsWritable(state *State) (bool, error) { return true, nil }

func (n *VariableRef) SetValue(state *State, newValue any) error {
	state.Context().SetVariable(n.name, newValue)
	return nil
}

func (n *VariableRef) String() string { return "#" + n.name }

// PropertyRef resolves a named property: a map entry or an exported struct
// field (lower-case expression names match their exported spelling). safe
// marks the '?.' form, which yields null for a null target instead of
// failing.
type PropertyRef struct {
	baseNode
	name string
	safe bool
}

func newPropertyRef(pos Pos, name string, safe bool) *PropertyRef {
	n := &PropertyRef{name: name, safe: safe}
	kind := KindPropertyRef
	if safe {
		kind = KindSafePropertyRef
	}
	n.init(kind, pos)
	return n
}

func (n *PropertyRef) ValueInternal(state *State) (TypedValue, error) {
	target, err := n.chainTarget(state)
	if err != nil {
		return TypedValue{}, err
	}
	if target.IsNull() {
		if n.safe {
			return NullValue(), nil
		}
		return TypedValue{}, evalErrf(CodeValueIsNil, n.StartPosition(), "cannot read property %q of null", n.name)
	}
	v, ok := readProperty(target.Value, n.name)
	if !ok {
		return TypedValue{}, evalErrf(CodePropertyNotFound, n.StartPosition(), "property %q not found on %s", n.name, typeName(target.Value))
	}
	return NewTypedValue(v), nil
}

func (n *PropertyRef) IsWritable(state *State) (bool, error) {
	target, err := n.chainTarget(state)
	if err != nil || target.IsNull() {
		return false, err
	}
	return propertyWritable(target.Value, n.name), nil
}

func (n *PropertyRef) SetValue(state *State, newValue any) error {
	target, err := n.chainTarget(state)
	if err != nil {
		return err
	}
	if target.IsNull() {
		return evalErrf(CodeValueIsNil, n.StartPosition(), "cannot write property %q of null", n.name)
	}
	return writeProperty(state, n.StartPosition(), target.Value, n.name, newValue)
}

func (n *PropertyRef) String() string {
	if !n.isChainStep() {
		return n.name
	}
	if n.safe {
		return "?." + n.name
	}
	return "." + n.name
}

// Indexer is [expr]; the single child is the index expression and the
// target flows in from the enclosing chain.
type Indexer struct {
	baseNode
}

func newIndexer(pos Pos, index Node) *Indexer {
	n := &Indexer{}
	n.init(KindIndexer, pos, index)
	return n
}

func (n *Indexer) ValueInternal(state *State) (TypedValue, error) {
	target, err := n.chainTarget(state)
	if err != nil {
		return TypedValue{}, err
	}
	if target.IsNull() {
		return TypedValue{}, evalErrf(CodeValueIsNil, n.StartPosition(), "cannot index null")
	}
	idx, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	return n.read(state, target.Value, idx.Value)
}

func (n *Indexer) IsWritable(state *State) (bool, error) {
	target, err := n.chainTarget(state)
	if err != nil || target.IsNull() {
		return false, err
	}
	switch v := reflect.ValueOf(target.Value); v.Kind() {
	case reflect.Slice:
		return true, nil
	case reflect.Map:
		return !v.IsNil(), nil
	}
	return false, nil
}

func (n *Indexer) SetValue(state *State, newValue any) error {
	target, err := n.chainTarget(state)
	if err != nil {
		return err
	}
	if target.IsNull() {
		return evalErrf(CodeValueIsNil, n.StartPosition(), "cannot index null")
	}
	idx, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return err
	}
	return n.write(state, target.Value, idx.Value, newValue)
}

func (n *Indexer) String() string { return "[" + n.Child(0).String() + "]" }

// Compound is a navigation chain: the leading child plus one step per
// '.name', '?.name' or '[expr]'.
type Compound struct {
	baseNode
}

func newCompound(pos Pos, parts ...Node) *Compound {
	n := &Compound{}
	n.init(KindCompound, pos, parts...)
	return n
}

func (n *Compound) ValueInternal(state *State) (TypedValue, error) {
	tv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	for i := 1; i < n.ChildCount(); i++ {
		tv, err = n.stepValue(state, tv, i)
		if err != nil {
			return TypedValue{}, err
		}
	}
	return tv, nil
}

// stepValue applies step i to the value the chain has produced so far. A
// null value is tolerated only when the step that produced it has a
// null-safe follower (NextSiblingIs); the safe step then stays null without
// being evaluated, and any later non-safe step still fails.
func (n *Compound) stepValue(state *State, tv TypedValue, i int) (TypedValue, error) {
	step := n.Child(i)
	if tv.IsNull() {
		if n.Child(i - 1).NextSiblingIs(KindSafePropertyRef) {
			return NullValue(), nil
		}
		return TypedValue{}, evalErrf(CodeValueIsNil, step.StartPosition(), "cannot navigate into null value")
	}
	state.pushActive(tv)
	defer state.popActive()
	return step.ValueInternal(state)
}

// IsWritable evaluates the chain up to the last step and asks the last step.
func (n *Compound) IsWritable(state *State) (bool, error) {
	tv, err := n.prefixValue(state)
	if err != nil {
		return false, err
	}
	last := n.Child(n.ChildCount() - 1)
	state.pushActive(tv)
	defer state.popActive()
	return last.IsWritable(state)
}

func (n *Compound) SetValue(state *State, newValue any) error {
	tv, err := n.prefixValue(state)
	if err != nil {
		return err
	}
	last := n.Child(n.ChildCount() - 1)
	if tv.IsNull() {
		return evalErrf(CodeValueIsNil, last.StartPosition(), "cannot write through null value")
	}
	state.pushActive(tv)
	defer state.popActive()
	return last.SetValue(state, newValue)
}

// prefixValue evaluates every step but the last, producing the target the
// last step will read from or write through.
func (n *Compound) prefixValue(state *State) (TypedValue, error) {
	tv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	for i := 1; i < n.ChildCount()-1; i++ {
		tv, err = n.stepValue(state, tv, i)
		if err != nil {
			return TypedValue{}, err
		}
	}
	return tv, nil
}

func (n *Compound) String() string {
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.String())
	}
	return b.String()
}

// FunctionCall is name(args); children are the argument expressions.
type FunctionCall struct {
	baseNode
	name string
}

func newFunctionCall(pos Pos, name string, args ...Node) *FunctionCall {
	n := &FunctionCall{name: name}
	n.init(KindFunctionCall, pos, args...)
	return n
}

func (n *FunctionCall) ValueInternal(state *State) (TypedValue, error) {
	fn, ok := state.Context().Func(n.name)
	if !ok {
		return TypedValue{}, evalErrf(CodeFunctionNotFound, n.StartPosition(), "function %q is not registered", n.name)
	}
	args := make([]any, n.ChildCount())
	for i, c := range n.children {
		tv, err := c.ValueInternal(state)
		if err != nil {
			return TypedValue{}, err
		}
		args[i] = tv.Value
	}
	out, err := fn(args)
	if err != nil {
		if ac, ok := err.(*ArgCountError); ok {
			return TypedValue{}, evalErrf(CodeWrongArgumentCount, n.StartPosition(), "%s: %v", n.name, ac)
		}
		if ee, ok := err.(*EvalError); ok {
			return TypedValue{}, ee
		}
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "%s: %v", n.name, err)
	}
	return NewTypedValue(out), nil
}

func (n *FunctionCall) String() string {
	var b strings.Builder
	b.WriteString(n.name)
	b.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Assign is lhs = rhs; it evaluates the right side, writes it through the
// left side, and yields the written value.
type Assign struct {
	baseNode
}

func newAssign(pos Pos, lhs, rhs Node) *Assign {
	n := &Assign{}
	n.init(KindAssign, pos, lhs, rhs)
	return n
}

func (n *Assign) ValueInternal(state *State) (TypedValue, error) {
	rv, err := n.Child(1).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	if err := n.Child(0).SetValue(state, rv.Value); err != nil {
		return TypedValue{}, err
	}
	return rv, nil
}

func (n *Assign) String() string {
	return fmt.Sprintf("%s = %s", n.Child(0).String(), n.Child(1).String())
}

//// END_OF_PUBLIC

// isChainStep reports whether the node is a non-leading child of a chain.
func (b *baseNode) isChainStep() bool {
	return b.parent != nil && b.parent.kind == KindCompound && b.PreviousChild() != nil
}

// chainTarget resolves what a reference operates on: the active chain target
// for an inner step, the root object otherwise.
func (b *baseNode) chainTarget(state *State) (TypedValue, error) {
	if b.isChainStep() {
		return state.activeValue()
	}
	return NewTypedValue(state.Context().Root), nil
}

// readProperty resolves name on a map or struct target.
func readProperty(target any, name string) (any, bool) {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		f := v.FieldByName(fieldNameFor(name))
		if !f.IsValid() {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

func propertyWritable(target any, name string) bool {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Map {
		return !v.IsNil() && v.Type().Key().Kind() == reflect.String
	}
	if v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Struct {
		f := v.Elem().FieldByName(fieldNameFor(name))
		return f.IsValid() && f.CanSet()
	}
	return false
}

func writeProperty(state *State, pos int, target any, name string, newValue any) error {
	v := reflect.ValueOf(target)
	switch {
	case v.Kind() == reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return evalErrf(CodeNotAssignable, pos, "map with %s keys is not property-assignable", v.Type().Key())
		}
		if v.IsNil() {
			return evalErrf(CodeNotAssignable, pos, "cannot write property %q into a nil map", name)
		}
		ev, err := coerceTo(state, pos, newValue, v.Type().Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(v.Type().Key()), ev)
		return nil
	case v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Struct:
		f := v.Elem().FieldByName(fieldNameFor(name))
		if !f.IsValid() || !f.CanSet() {
			return evalErrf(CodeNotAssignable, pos, "property %q is not settable on %s", name, typeName(target))
		}
		fv, err := coerceTo(state, pos, newValue, f.Type())
		if err != nil {
			return err
		}
		f.Set(fv)
		return nil
	}
	return evalErrf(CodeNotAssignable, pos, "cannot write property %q on %s", name, typeName(target))
}

// fieldNameFor maps an expression property name onto its exported struct
// spelling: `name` matches field Name, `Name` matches itself.
func fieldNameFor(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (n *Indexer) read(state *State, target, index any) (TypedValue, error) {
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := indexInt(n, index)
		if err != nil {
			return TypedValue{}, err
		}
		if i < 0 || i >= v.Len() {
			return TypedValue{}, evalErrf(CodeIndexOutOfBounds, n.StartPosition(), "index %d out of bounds (len %d)", i, v.Len())
		}
		return NewTypedValue(v.Index(i).Interface()), nil
	case reflect.Map:
		kv, err := coerceTo(state, n.StartPosition(), index, v.Type().Key())
		if err != nil {
			return TypedValue{}, err
		}
		mv := v.MapIndex(kv)
		if !mv.IsValid() {
			return NullValue(), nil
		}
		return NewTypedValue(mv.Interface()), nil
	case reflect.String:
		i, err := indexInt(n, index)
		if err != nil {
			return TypedValue{}, err
		}
		rs := []rune(v.String())
		if i < 0 || i >= len(rs) {
			return TypedValue{}, evalErrf(CodeIndexOutOfBounds, n.StartPosition(), "index %d out of bounds (len %d)", i, len(rs))
		}
		return NewTypedValue(string(rs[i])), nil
	}
	return TypedValue{}, evalErrf(CodeCannotIndex, n.StartPosition(), "cannot index %s", typeName(target))
}

func (n *Indexer) write(state *State, target, index, newValue any) error {
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Slice:
		i, err := indexInt(n, index)
		if err != nil {
			return err
		}
		if i < 0 || i >= v.Len() {
			return evalErrf(CodeIndexOutOfBounds, n.StartPosition(), "index %d out of bounds (len %d)", i, v.Len())
		}
		ev, err := coerceTo(state, n.StartPosition(), newValue, v.Type().Elem())
		if err != nil {
			return err
		}
		v.Index(i).Set(ev)
		return nil
	case reflect.Map:
		if v.IsNil() {
			return evalErrf(CodeNotAssignable, n.StartPosition(), "cannot assign into a nil map")
		}
		kv, err := coerceTo(state, n.StartPosition(), index, v.Type().Key())
		if err != nil {
			return err
		}
		ev, err := coerceTo(state, n.StartPosition(), newValue, v.Type().Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(kv, ev)
		return nil
	}
	return evalErrf(CodeNotAssignable, n.StartPosition(), "cannot assign into %s by index", typeName(target))
}

func indexInt(n *Indexer, index any) (int, error) {
	switch x := index.(type) {
	case int64:
		return int(x), nil
	case int:
		return x, nil
	}
	return 0, evalErrf(CodeTypeMismatch, n.StartPosition(), "index must be an integer, got %s", typeName(index))
}
