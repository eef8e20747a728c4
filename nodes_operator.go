// nodes_operator.go — unary, binary, ternary and elvis operator nodes.
//
// Arithmetic works on int64/float64 with the usual promotion: two ints stay
// int, anything else goes float. '+' concatenates when either side is a
// string. Comparisons order numbers and strings; '==' and '!=' compare any
// two values structurally with numeric promotion. Logical operators demand
// booleans and short-circuit. '^' is exponentiation, right-associative.
//
// All failures are TYPE_MISMATCH (or DIVISION_BY_ZERO) positioned at the
// operator node.
package xpr

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// UnaryOp is prefix '-' or '!'.
type UnaryOp struct {
	baseNode
	op string
}

func newUnaryOp(pos Pos, op string, operand Node) *UnaryOp {
	n := &UnaryOp{op: op}
	n.init(KindUnaryOp, pos, operand)
	return n
}

func (n *UnaryOp) ValueInternal(state *State) (TypedValue, error) {
	tv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	switch n.op {
	case "-":
		switch x := tv.Value.(type) {
		case int64:
			return NewTypedValue(-x), nil
		case float64:
			return NewTypedValue(-x), nil
		}
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "operator '-' needs a number, got %s", typeName(tv.Value))
	case "!":
		b, ok := tv.Value.(bool)
		if !ok {
			return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "operator '!' needs a boolean, got %s", typeName(tv.Value))
		}
		return NewTypedValue(!b), nil
	}
	return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "unknown unary operator %q", n.op)
}

func (n *UnaryOp) String() string { return n.op + n.Child(0).String() }

// BinaryOp covers arithmetic, comparison, equality, logical and power
// operators; op is the source token text.
type BinaryOp struct {
	baseNode
	op string
}

func newBinaryOp(pos Pos, op string, lhs, rhs Node) *BinaryOp {
	n := &BinaryOp{op: op}
	n.init(KindBinaryOp, pos, lhs, rhs)
	return n
}

func (n *BinaryOp) ValueInternal(state *State) (TypedValue, error) {
	// Logical operators short-circuit; everything else is strict.
	if n.op == "&&" || n.op == "||" {
		return n.evalLogical(state)
	}

	lv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	rv, err := n.Child(1).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}

	switch n.op {
	case "==":
		return NewTypedValue(valuesEqual(lv.Value, rv.Value)), nil
	case "!=":
		return NewTypedValue(!valuesEqual(lv.Value, rv.Value)), nil
	case "+":
		if ls, ok := lv.Value.(string); ok {
			return NewTypedValue(ls + stringify(rv.Value)), nil
		}
		if rs, ok := rv.Value.(string); ok {
			return NewTypedValue(stringify(lv.Value) + rs), nil
		}
		return n.arith(lv.Value, rv.Value)
	case "-", "*", "/", "%", "^":
		return n.arith(lv.Value, rv.Value)
	case "<", "<=", ">", ">=":
		return n.compare(lv.Value, rv.Value)
	}
	return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "unknown operator %q", n.op)
}

func (n *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Child(0).String(), n.op, n.Child(1).String())
}

// Ternary is cond ? a : b; children are [cond, then, else].
type Ternary struct {
	baseNode
}

func newTernary(pos Pos, cond, thenN, elseN Node) *Ternary {
	n := &Ternary{}
	n.init(KindTernary, pos, cond, thenN, elseN)
	return n
}

func (n *Ternary) ValueInternal(state *State) (TypedValue, error) {
	cv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	b, ok := cv.Value.(bool)
	if !ok {
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.Child(0).StartPosition(), "ternary condition must be a boolean, got %s", typeName(cv.Value))
	}
	if b {
		return n.Child(1).ValueInternal(state)
	}
	return n.Child(2).ValueInternal(state)
}

func (n *Ternary) String() string {
	return fmt.Sprintf("%s ? %s : %s", n.Child(0).String(), n.Child(1).String(), n.Child(2).String())
}

// Elvis is a ?: b — the left value unless it is null.
type Elvis struct {
	baseNode
}

func newElvis(pos Pos, lhs, rhs Node) *Elvis {
	n := &Elvis{}
	n.init(KindElvis, pos, lhs, rhs)
	return n
}

func (n *Elvis) ValueInternal(state *State) (TypedValue, error) {
	lv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	if !lv.IsNull() {
		return lv, nil
	}
	return n.Child(1).ValueInternal(state)
}

func (n *Elvis) String() string {
	return fmt.Sprintf("%s ?: %s", n.Child(0).String(), n.Child(1).String())
}

//// END_OF_PUBLIC

func (n *BinaryOp) evalLogical(state *State) (TypedValue, error) {
	lv, err := n.Child(0).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	lb, ok := lv.Value.(bool)
	if !ok {
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.Child(0).StartPosition(), "operator %q needs booleans, got %s", n.op, typeName(lv.Value))
	}
	if n.op == "&&" && !lb {
		return NewTypedValue(false), nil
	}
	if n.op == "||" && lb {
		return NewTypedValue(true), nil
	}
	rv, err := n.Child(1).ValueInternal(state)
	if err != nil {
		return TypedValue{}, err
	}
	rb, ok := rv.Value.(bool)
	if !ok {
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.Child(1).StartPosition(), "operator %q needs booleans, got %s", n.op, typeName(rv.Value))
	}
	return NewTypedValue(rb), nil
}

func (n *BinaryOp) arith(l, r any) (TypedValue, error) {
	li, lInt := asInt(l)
	ri, rInt := asInt(r)
	if lInt && rInt {
		switch n.op {
		case "+":
			return NewTypedValue(li + ri), nil
		case "-":
			return NewTypedValue(li - ri), nil
		case "*":
			return NewTypedValue(li * ri), nil
		case "/":
			if ri == 0 {
				return TypedValue{}, evalErrf(CodeDivisionByZero, n.StartPosition(), "division by zero")
			}
			return NewTypedValue(li / ri), nil
		case "%":
			if ri == 0 {
				return TypedValue{}, evalErrf(CodeDivisionByZero, n.StartPosition(), "modulo by zero")
			}
			return NewTypedValue(li % ri), nil
		case "^":
			return NewTypedValue(intPow(li, ri)), nil
		}
	}
	lf, lNum := asFloat(l)
	rf, rNum := asFloat(r)
	if !lNum || !rNum {
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "operator %q needs numbers, got %s and %s", n.op, typeName(l), typeName(r))
	}
	switch n.op {
	case "+":
		return NewTypedValue(lf + rf), nil
	case "-":
		return NewTypedValue(lf - rf), nil
	case "*":
		return NewTypedValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return TypedValue{}, evalErrf(CodeDivisionByZero, n.StartPosition(), "division by zero")
		}
		return NewTypedValue(lf / rf), nil
	case "%":
		return NewTypedValue(math.Mod(lf, rf)), nil
	case "^":
		return NewTypedValue(math.Pow(lf, rf)), nil
	}
	return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "unknown operator %q", n.op)
}

func (n *BinaryOp) compare(l, r any) (TypedValue, error) {
	if ls, ok := l.(string); ok {
		rs, ok := r.(string)
		if !ok {
			return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "cannot order string against %s", typeName(r))
		}
		c := strings.Compare(ls, rs)
		return NewTypedValue(orderHolds(n.op, c)), nil
	}
	lf, lNum := asFloat(l)
	rf, rNum := asFloat(r)
	if !lNum || !rNum {
		return TypedValue{}, evalErrf(CodeTypeMismatch, n.StartPosition(), "operator %q needs two numbers or two strings, got %s and %s", n.op, typeName(l), typeName(r))
	}
	c := 0
	if lf < rf {
		c = -1
	} else if lf > rf {
		c = 1
	}
	return NewTypedValue(orderHolds(n.op, c)), nil
}

func orderHolds(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func asInt(v any) (int64, bool) {
	i, ok := v.(int64)
	return i, ok
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0 // integer power truncates toward zero, like integer division
	}
	out := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			out *= base
		}
		base *= base
		exp >>= 1
	}
	return out
}

// valuesEqual compares two evaluated values: numbers numerically across
// int64/float64, everything else structurally.
func valuesEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	lf, lNum := asFloat(l)
	rf, rNum := asFloat(r)
	if lNum && rNum {
		return lf == rf
	}
	return reflect.DeepEqual(l, r)
}

func stringify(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
