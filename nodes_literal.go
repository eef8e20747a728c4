// nodes_literal.go — literal node kinds.
//
// Literals evaluate to themselves. Ints are int64, floats float64, matching
// the value model everywhere else in the package. Inline lists evaluate to
// []any and inline maps to map[string]any, built fresh on every evaluation
// so callers can mutate results without corrupting the tree.
package xpr

import (
	"strconv"
	"strings"
)

// IntLiteral is an integer constant.
type IntLiteral struct {
	baseNode
	val int64
}

func newIntLiteral(pos Pos, v int64) *IntLiteral {
	n := &IntLiteral{val: v}
	n.init(KindIntLiteral, pos)
	return n
}

func (n *IntLiteral) ValueInternal(state *State) (TypedValue, error) {
	return NewTypedValue(n.val), nil
}

func (n *IntLiteral) String() string { return strconv.FormatInt(n.val, 10) }

// FloatLiteral is a floating-point constant.
type FloatLiteral struct {
	baseNode
	val float64
}

func newFloatLiteral(pos Pos, v float64) *FloatLiteral {
	n := &FloatLiteral{val: v}
	n.init(KindFloatLiteral, pos)
	return n
}

func (n *FloatLiteral) ValueInternal(state *State) (TypedValue, error) {
	return NewTypedValue(n.val), nil
}

func (n *FloatLiteral) String() string {
	return strconv.FormatFloat(n.val, 'g', -1, 64)
}

// StringLiteral is a quoted string constant; val is the decoded text.
type StringLiteral struct {
	baseNode
	val string
}

func newStringLiteral(pos Pos, v string) *StringLiteral {
	n := &StringLiteral{val: v}
	n.init(KindStringLiteral, pos)
	return n
}

func (n *StringLiteral) ValueInternal(state *State) (TypedValue, error) {
	return NewTypedValue(n.val), nil
}

func (n *StringLiteral) String() string {
	return "'" + strings.ReplaceAll(n.val, "'", `\'`) + "'"
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	baseNode
	val bool
}

func newBoolLiteral(pos Pos, v bool) *BoolLiteral {
	n := &BoolLiteral{val: v}
	n.init(KindBoolLiteral, pos)
	return n
}

func (n *BoolLiteral) ValueInternal(state *State) (TypedValue, error) {
	return NewTypedValue(n.val), nil
}

func (n *BoolLiteral) String() string { return strconv.FormatBool(n.val) }

// NullLiteral is the null constant.
type NullLiteral struct {
	baseNode
}

func newNullLiteral(pos Pos) *NullLiteral {
	n := &NullLiteral{}
	n.init(KindNullLiteral, pos)
	return n
}

func (n *NullLiteral) ValueInternal(state *State) (TypedValue, error) {
	return NullValue(), nil
}

func (n *NullLiteral) String() string { return "null" }

// ListLiteral is an inline list {e1, e2, ...}; children are the elements.
type ListLiteral struct {
	baseNode
}

func newListLiteral(pos Pos, elems ...Node) *ListLiteral {
	n := &ListLiteral{}
	n.init(KindListLiteral, pos, elems...)
	return n
}

func (n *ListLiteral) ValueInternal(state *State) (TypedValue, error) {
	out := make([]any, n.ChildCount())
	for i, c := range n.children {
		tv, err := c.ValueInternal(state)
		if err != nil {
			return TypedValue{}, err
		}
		out[i] = tv.Value
	}
	return NewTypedValue(out), nil
}

func (n *ListLiteral) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range n.children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

// MapLiteral is an inline map {'k': v, ...}; keys are fixed strings,
// children are the value expressions in key order.
type MapLiteral struct {
	baseNode
	keys []string
}

func newMapLiteral(pos Pos, keys []string, values ...Node) *MapLiteral {
	n := &MapLiteral{keys: keys}
	n.init(KindMapLiteral, pos, values...)
	return n
}

func (n *MapLiteral) ValueInternal(state *State) (TypedValue, error) {
	out := make(map[string]any, len(n.keys))
	for i, c := range n.children {
		tv, err := c.ValueInternal(state)
		if err != nil {
			return TypedValue{}, err
		}
		out[n.keys[i]] = tv.Value
	}
	return NewTypedValue(out), nil
}

func (n *MapLiteral) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range n.children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("'" + n.keys[i] + "':")
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}
