// errors.go: evaluation-error taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// Two things. First, it defines *EvalError, the single error type every node
// raises during evaluation: a machine-readable code, the raising node's start
// byte offset, and (where it matters, e.g. refused assignment) the offending
// node kind. Every evaluation failure carries a position — that is a
// cross-cutting invariant each node honors by raising through evalErrf with
// its own span.
//
// Second, it renders lex/parse/eval errors as readable snippets with a caret
// pointing at the offending column:
//
//	EVAL ERROR at 1:9: SETVALUE_NOT_SUPPORTED: node kind IntLiteral is not assignable
//
//	   1 | price + 3
//	     |         ^
//
// The snippet numbers the lines, includes up to one line of context on each
// side, and places the caret under the 1-based column derived from the byte
// offset. Output is plain text (no ANSI), suitable for logs and terminals.
//
// Behavior guarantees
// -------------------
//   - WrapErrorWithSource recognizes *LexError, *ParseError and *EvalError;
//     anything else is returned unchanged.
//   - Byte offsets out of range are clamped so the caret renders safely on
//     empty or truncated sources.
//   - Errors propagate up the recursive evaluation unmodified; nothing is
//     retried or recovered at this layer.
package xpr

import (
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// EvalCode identifies the category of an evaluation failure.
type EvalCode int

const (
	CodeSetValueNotSupported EvalCode = iota + 1
	CodeTypeConversion
	CodeTypeMismatch
	CodePropertyNotFound
	CodeNotAssignable
	CodeValueIsNil
	CodeIndexOutOfBounds
	CodeCannotIndex
	CodeFunctionNotFound
	CodeWrongArgumentCount
	CodeDivisionByZero
	CodeNoState
)

var evalCodeNames = map[EvalCode]string{
	CodeSetValueNotSupported: "SETVALUE_NOT_SUPPORTED",
	CodeTypeConversion:       "TYPE_CONVERSION_ERROR",
	CodeTypeMismatch:         "TYPE_MISMATCH",
	CodePropertyNotFound:     "PROPERTY_NOT_FOUND",
	CodeNotAssignable:        "NOT_ASSIGNABLE",
	CodeValueIsNil:           "VALUE_IS_NIL",
	CodeIndexOutOfBounds:     "INDEX_OUT_OF_BOUNDS",
	CodeCannotIndex:          "CANNOT_INDEX",
	CodeFunctionNotFound:     "FUNCTION_NOT_FOUND",
	CodeWrongArgumentCount:   "WRONG_ARGUMENT_COUNT",
	CodeDivisionByZero:       "DIVISION_BY_ZERO",
	CodeNoState:              "NO_EVALUATION_STATE",
}

func (c EvalCode) String() string {
	if s, ok := evalCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("EVAL_ERROR_%d", int(c))
}

// EvalError is an evaluation failure positioned at a node's start offset.
// Kind is the offending node's kind where the code concerns a node itself
// (refused assignment); KindNone otherwise.
type EvalError struct {
	Code EvalCode
	Pos  int // start byte offset of the raising node
	Kind NodeKind
	Msg  string
}

func (e *EvalError) Error() string {
	if e.Kind != KindNone {
		return fmt.Sprintf("eval error at offset %d: %s: %s (node kind %s)", e.Pos, e.Code, e.Msg, e.Kind)
	}
	return fmt.Sprintf("eval error at offset %d: %s: %s", e.Pos, e.Code, e.Msg)
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes lexer/parser/evaluation
// errors and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with an optional source name
// shown in the header ("... in <name> at 1:5: ...").
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		line, col := offsetToLineCol(src, e.Pos)
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, line, col, e.Msg))
	case *ParseError:
		line, col := offsetToLineCol(src, e.Pos)
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, line, col, e.Msg))
	case *EvalError:
		line, col := offsetToLineCol(src, e.Pos)
		msg := fmt.Sprintf("%s: %s", e.Code, e.Msg)
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "EVAL ERROR", srcName, line, col, msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: helpers & rendering
   =========================== */

// evalErrf builds a positioned evaluation error for a node.
func evalErrf(code EvalCode, pos int, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// offsetToLineCol maps a byte offset to 1-based (line, col). Offsets out of
// range are clamped to the last byte.
func offsetToLineCol(src string, off int) (line, col int) {
	if off < 0 {
		off = 0
	}
	if off > len(src) {
		off = len(src)
	}
	line, col = 1, 1
	for i := 0; i < off && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// prettyErrorStringLabeled builds a Python-like snippet with a header and a
// caret. It shows at most one previous and one next line when available.
// Coordinates are 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad < 0 {
		caretPad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
