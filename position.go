// position.go — packed source positions for expression AST nodes.
//
// Every AST node carries the byte span of the tokens it was built from, so
// that evaluation errors can point at the offending place in the original
// text. Spans are half-open byte intervals [start, end) into the UTF-8
// source, packed into a single integer: start in the top 16 bits, end in the
// bottom 16. One int per node instead of two keeps the tree compact; the
// price is a 65535-byte ceiling on expression sources, which the lexer
// enforces up front (see MaxSourceLen in lexer.go).
//
// A token is never empty, so a packed position is never zero. Constructing a
// zero position is a bug in the parser, not a runtime condition, and panics.
package xpr

import "fmt"

// Pos is a packed (start, end) byte span: start<<16 | end, end exclusive.
type Pos int32

// NewPos packs a half-open byte span. It panics when the packed value would
// be zero or when either offset exceeds the 16-bit ceiling; both indicate a
// parser bug rather than bad user input (over-long sources are rejected by
// the lexer before any node exists).
func NewPos(start, end int) Pos {
	if start < 0 || end < 0 || start > maxOffset || end > maxOffset {
		panic(fmt.Sprintf("xpr: position out of range: [%d,%d)", start, end))
	}
	p := Pos(start<<16 | end)
	if p == 0 {
		panic("xpr: zero position (empty token span)")
	}
	return p
}

// Start returns the inclusive start byte offset.
func (p Pos) Start() int { return int(p >> 16) }

// End returns the exclusive end byte offset.
func (p Pos) End() int { return int(p & 0xffff) }

func (p Pos) String() string {
	return fmt.Sprintf("[%d,%d)", p.Start(), p.End())
}

const maxOffset = 0xffff
