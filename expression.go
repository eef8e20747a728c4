// expression.go — the public facade over the lexer, parser and node tree.
//
// This file is the narrow surface most embedders need:
//
//	expr, err := xpr.Parse("user.age >= 18 && upper(user.name) == #who")
//	ctx := xpr.NewContext().SetRoot(user)
//	ctx.SetVariable("who", "ADA")
//	ok, err := xpr.EvalAs[bool](expr, ctx)
//
// An *Expression wraps the immutable parsed tree together with its source
// text, so errors from any later evaluation can be rendered against the
// original source (WrapErrorWithSource). One Expression may be evaluated
// concurrently with distinct contexts.
package xpr

// Expression is a parsed, reusable expression.
type Expression struct {
	src  string
	root Node
}

// Parse lexes and parses src. The returned error is a *LexError or
// *ParseError.
func Parse(src string) (*Expression, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	root, err := NewParser(toks).ParseExpression()
	if err != nil {
		return nil, err
	}
	return &Expression{src: src, root: root}, nil
}

// MustParse is Parse for static expressions; it panics on error.
func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// AST returns the root node of the parsed tree.
func (e *Expression) AST() Node { return e.root }

// Source returns the original expression text.
func (e *Expression) Source() string { return e.src }

// String renders the tree back to canonical expression text.
func (e *Expression) String() string { return e.root.String() }

// Eval evaluates against ctx and returns the raw value. A nil ctx gets a
// fresh default context — explicitly, here at the facade; node-level
// evaluation never fabricates one.
func (e *Expression) Eval(ctx *Context) (any, error) {
	return Value(e.root, NewState(ctx))
}

// EvalAs evaluates expr against ctx and coerces the result to T, with the
// assignability short-circuit and conversion rules of ValueAs.
func EvalAs[T any](e *Expression, ctx *Context) (T, error) {
	return ValueAs[T](e.root, NewState(ctx))
}

// IsWritable reports whether the whole expression can be assigned through.
func (e *Expression) IsWritable(ctx *Context) (bool, error) {
	return e.root.IsWritable(NewState(ctx))
}

// SetValue assigns newValue through the expression (which must be a
// writable form: variable, property, indexer, or a chain ending in one).
func (e *Expression) SetValue(ctx *Context, newValue any) error {
	return e.root.SetValue(NewState(ctx), newValue)
}
