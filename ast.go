// ast.go — the common supertype of all xpr AST nodes.
//
// OVERVIEW
// --------
// An expression parses into a tree of nodes. Every node, whatever its kind,
// shares the same skeleton, defined here:
//
//   - a packed source span (position.go) that is never zero,
//   - an ordered, immutable list of child nodes (the shared empty slice when
//     a node is a leaf),
//   - a non-owning parent back-reference, set exactly once when the parent
//     takes ownership of its operands at construction time.
//
// The tree is built bottom-up by the parser and is structurally immutable
// afterwards: nothing on the public contract can add, remove or reorder
// children, or reassign a parent. A single immutable tree may therefore be
// evaluated concurrently from multiple goroutines as long as each evaluation
// uses its own *State; sharing one State across goroutines is the caller's
// problem (the variable bindings inside it are mutable).
//
// EVALUATION PROTOCOL
// -------------------
// Concrete node kinds implement ValueInternal(state) (TypedValue, error) —
// synchronous, recursive, no persistent state across calls. TypedValue pairs
// the produced value with its runtime type so callers can branch on the type
// without re-inspecting the value.
//
// The public entry points are the package-level Value and ValueAs[T]:
// ValueAs short-circuits when the raw result already satisfies T and only
// then consults the state's converter; an impossible conversion surfaces as
// a TYPE_CONVERSION_ERROR evaluation error, never a silent zero value.
// Evaluation requires a non-nil *State — there is deliberately no hidden
// fall-back to a fresh default context here; Expression.Eval (expression.go)
// is the one place that builds a default context, visibly, when the caller
// passes none.
//
// WRITE-BACK
// ----------
// Nodes are not writable by default: IsWritable reports false and SetValue
// fails with SETVALUE_NOT_SUPPORTED carrying the node's kind and start
// position. Kinds that support assignment (variable references, property
// references, indexers) override both.
//
// SIBLING INSPECTION
// ------------------
// PreviousChild and NextSiblingIs re-scan the parent's ordered child list on
// demand rather than caching a sibling index on every node — O(children),
// fine for shallow expression trees. Chain steps (nodes_ref.go) use them to
// tell a leading step from an inner one and to decide null short-circuits.
package xpr

import (
	"fmt"
	"reflect"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// NodeKind identifies a concrete node type. Grammar-sensitive nodes use kind
// sets with NextSiblingIs where the node type alone is ambiguous without
// tree-level lookahead.
type NodeKind int

const (
	KindNone NodeKind = iota
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindBoolLiteral
	KindNullLiteral
	KindListLiteral
	KindMapLiteral
	KindUnaryOp
	KindBinaryOp
	KindTernary
	KindElvis
	KindVariableRef
	KindPropertyRef
	KindSafePropertyRef
	KindIndexer
	KindCompound
	KindFunctionCall
	KindAssign
)

var nodeKindNames = map[NodeKind]string{
	KindNone: "None", KindIntLiteral: "IntLiteral", KindFloatLiteral: "FloatLiteral",
	KindStringLiteral: "StringLiteral", KindBoolLiteral: "BoolLiteral",
	KindNullLiteral: "NullLiteral", KindListLiteral: "ListLiteral",
	KindMapLiteral: "MapLiteral", KindUnaryOp: "UnaryOp", KindBinaryOp: "BinaryOp",
	KindTernary: "Ternary", KindElvis: "Elvis", KindVariableRef: "VariableRef",
	KindPropertyRef: "PropertyRef", KindSafePropertyRef: "SafePropertyRef",
	KindIndexer: "Indexer", KindCompound: "Compound",
	KindFunctionCall: "FunctionCall", KindAssign: "Assign",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// TypedValue is an evaluation result: a value paired with its runtime type.
// A null result has a nil Value and nil Type.
type TypedValue struct {
	Value any
	Type  reflect.Type
}

// NewTypedValue pairs v with its runtime type. A nil v yields the null
// TypedValue.
func NewTypedValue(v any) TypedValue {
	if v == nil {
		return TypedValue{}
	}
	return TypedValue{Value: v, Type: reflect.TypeOf(v)}
}

// NullValue returns the null evaluation result.
func NullValue() TypedValue { return TypedValue{} }

// IsNull reports whether the result is the null value.
func (tv TypedValue) IsNull() bool { return tv.Value == nil }

// Node is the contract every parsed expression node satisfies. Structural
// accessors are served by the embedded base; ValueInternal and String are
// per-kind.
type Node interface {
	// Kind returns the node's concrete kind.
	Kind() NodeKind
	// Position returns the node's packed source span; never zero.
	Position() Pos
	// StartPosition returns the inclusive start byte offset in the source.
	StartPosition() int
	// EndPosition returns the exclusive end byte offset in the source.
	EndPosition() int
	// Child returns the child at index i. Out-of-range access panics; the
	// caller guarantees bounds, as with any Go slice.
	Child(i int) Node
	// ChildCount returns the number of direct children.
	ChildCount() int
	// PreviousChild returns the sibling immediately before this node in the
	// parent's child list, or nil for the first child / no parent.
	PreviousChild() Node
	// NextSiblingIs reports whether the sibling immediately after this node
	// has one of the given kinds; false for the last child / no parent.
	NextSiblingIs(kinds ...NodeKind) bool

	// ValueInternal computes the node's value against the given evaluation
	// state. Every failure carries the raising node's start position.
	ValueInternal(state *State) (TypedValue, error)
	// IsWritable reports whether SetValue can succeed on this node.
	IsWritable(state *State) (bool, error)
	// SetValue writes through the node (assignment). Non-writable kinds fail
	// with SETVALUE_NOT_SUPPORTED carrying the node's kind and position.
	SetValue(state *State, newValue any) error
	// String renders the node back to canonical expression text.
	String() string

	base() *baseNode
}

// Value evaluates n and returns the raw value. The state is mandatory;
// passing nil is a usage error (NO_EVALUATION_STATE), not a silent fallback
// to default bindings.
func Value(n Node, state *State) (any, error) {
	if state == nil {
		return nil, evalErrf(CodeNoState, n.StartPosition(), "evaluation requires a non-nil state")
	}
	tv, err := n.ValueInternal(state)
	if err != nil {
		return nil, err
	}
	return tv.Value, nil
}

// ValueAs evaluates n and coerces the result to T. When the raw value is
// already a T it is returned unchanged with no conversion invoked; otherwise
// the state's converter is consulted, and its failure surfaces as a
// TYPE_CONVERSION_ERROR positioned at n.
func ValueAs[T any](n Node, state *State) (T, error) {
	var zero T
	if state == nil {
		return zero, evalErrf(CodeNoState, n.StartPosition(), "evaluation requires a non-nil state")
	}
	tv, err := n.ValueInternal(state)
	if err != nil {
		return zero, err
	}
	if tv.Value == nil {
		return zero, nil
	}
	if v, ok := tv.Value.(T); ok {
		return v, nil
	}
	out, err := state.Context().Converter.Convert(tv.Value, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, evalErrf(CodeTypeConversion, n.StartPosition(), "%v", err)
	}
	// A converter that hands back the wrong concrete type is a conversion
	// failure too, not a panic.
	converted, ok := out.(T)
	if !ok {
		return zero, evalErrf(CodeTypeConversion, n.StartPosition(),
			"converter returned %s, want %s", typeName(out), reflect.TypeOf((*T)(nil)).Elem())
	}
	return converted, nil
}

// ObjectClass resolves the type a value stands for: nil for null, the
// referenced type when the value is itself a type reference (reflect.Type),
// the value's own runtime type otherwise. Node kinds that treat type
// literals and instances differently branch on this.
func ObjectClass(v any) reflect.Type {
	if v == nil {
		return nil
	}
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

// noChildren is the shared child list of every leaf node.
var noChildren = []Node{}

// baseNode carries the structure every concrete node embeds. parent is a
// pure navigational back-reference; ownership runs strictly downward.
type baseNode struct {
	kind     NodeKind
	pos      Pos
	children []Node
	parent   *baseNode
}

// init wires the base in place. Must be called on the embedded field of the
// final (heap-allocated) node so that the children's parent pointers stay
// valid. A zero position is a parser bug and panics.
func (b *baseNode) init(kind NodeKind, pos Pos, operands ...Node) {
	if pos == 0 {
		panic("xpr: node constructed with zero position")
	}
	b.kind = kind
	b.pos = pos
	b.children = noChildren
	if len(operands) > 0 {
		b.children = operands
		for _, c := range operands {
			c.base().parent = b
		}
	}
}

func (b *baseNode) base() *baseNode { return b }

func (b *baseNode) Kind() NodeKind     { return b.kind }
func (b *baseNode) Position() Pos      { return b.pos }
func (b *baseNode) StartPosition() int { return b.pos.Start() }
func (b *baseNode) EndPosition() int   { return b.pos.End() }
func (b *baseNode) Child(i int) Node   { return b.children[i] }
func (b *baseNode) ChildCount() int    { return len(b.children) }

// PreviousChild scans the parent's ordered child list for the sibling just
// before this node. Computed on demand rather than cached per node.
func (b *baseNode) PreviousChild() Node {
	if b.parent == nil {
		return nil
	}
	var prev Node
	for _, c := range b.parent.children {
		if c.base() == b {
			break
		}
		prev = c
	}
	return prev
}

// NextSiblingIs finds the sibling just after this node and reports whether
// its kind is in the given set.
func (b *baseNode) NextSiblingIs(kinds ...NodeKind) bool {
	if b.parent == nil {
		return false
	}
	peers := b.parent.children
	for i, c := range peers {
		if c.base() != b {
			continue
		}
		if i+1 >= len(peers) {
			return false
		}
		next := peers[i+1].Kind()
		for _, k := range kinds {
			if next == k {
				return true
			}
		}
		return false
	}
	return false
}

// Nodes are not writable by default.
func (b *baseNode) IsWritable(state *State) (bool, error) {
	return false, nil
}

func (b *baseNode) SetValue(state *State, newValue any) error {
	return &EvalError{
		Code: CodeSetValueNotSupported,
		Pos:  b.pos.Start(),
		Kind: b.kind,
		Msg:  fmt.Sprintf("node kind %s is not assignable", b.kind),
	}
}
