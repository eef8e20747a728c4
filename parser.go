// parser.go — recursive-descent (precedence climbing) parser for xpr.
//
// OVERVIEW
// --------
// The parser consumes the token stream produced by the lexer (lexer.go) and
// builds the node tree defined in ast.go and nodes_*.go. Grammar, loosest
// binding first:
//
//	expr        := assign
//	assign      := ternary ( '=' assign )?            // right-assoc
//	ternary     := elvis ( '?' expr ':' expr )?
//	elvis       := or ( '?:' or )*
//	or          := and ( '||' and )*
//	and         := equality ( '&&' equality )*
//	equality    := relational ( ('=='|'!=') relational )*
//	relational  := additive ( ('<'|'<='|'>'|'>=') additive )*
//	additive    := multiplicative ( ('+'|'-') multiplicative )*
//	mult        := power ( ('*'|'/'|'%') power )*
//	power       := unary ( '^' power )?               // right-assoc
//	unary       := ('-'|'!') unary | postfix
//	postfix     := primary ( '.' ID | '?.' ID | '[' expr ']' )*
//	primary     := INT | NUM | STRING | BOOL | NULL
//	             | '#' ID | ID '(' args ')' | ID
//	             | '(' expr ')' | '{' items '}'
//
// A postfix chain folds into a Compound node whose children are the primary
// followed by one node per step; a bare primary stays as-is. '{...}' is an
// inline list, or an inline map when every item is `key ':' value` with a
// string or identifier key.
//
// POSITIONS
// ---------
// Operator nodes carry the operator token's span, so an evaluation error at
// `a / b` puts the caret on the '/'. Leaf nodes carry their own token span;
// compounds span the whole chain. Parenthesized expressions keep the inner
// node untouched.
//
// INCOMPLETE INPUT
// ----------------
// A failure caused by running out of tokens sets ParseError.Incomplete. REPLs
// probe with it: keep reading lines while IsIncomplete(err), the same
// continuation contract the CLI's repl command uses.
package xpr

import "fmt"

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseError is a syntax failure at a byte offset in the source.
type ParseError struct {
	Pos        int
	Msg        string
	Incomplete bool // true when more input could make the expression parse
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// IsIncomplete reports whether err is a ParseError caused by truncated
// input.
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Incomplete
}

// Parser builds a node tree from a token stream.
type Parser struct {
	tokens []Token
	cur    int
}

// NewParser returns a parser over tokens (as produced by Lexer.Scan,
// EOF-terminated).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseExpression parses exactly one expression and requires the stream to
// be exhausted. The returned error is a *ParseError.
func (p *Parser) ParseExpression() (Node, error) {
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != EOF {
		return nil, p.errAt(t, "unexpected %q after expression", t.Lexeme)
	}
	return n, nil
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

func (p *Parser) peek() Token { return p.tokens[p.cur] }

func (p *Parser) advance() Token {
	t := p.tokens[p.cur]
	if t.Type != EOF {
		p.cur++
	}
	return t
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(tt TokenType) (Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	return Token{}, false
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	t := p.peek()
	if t.Type == EOF {
		return Token{}, &ParseError{Pos: t.Start, Msg: fmt.Sprintf("expected %s, found end of input", what), Incomplete: true}
	}
	return Token{}, p.errAt(t, "expected %s, found %q", what, t.Lexeme)
}

func (p *Parser) errAt(t Token, format string, args ...any) *ParseError {
	return &ParseError{Pos: t.Start, Msg: fmt.Sprintf(format, args...)}
}

func tokPos(t Token) Pos { return NewPos(t.Start, t.End) }

// spanOf covers an operator construct from its left operand to its right.
func spanOf(lhs, rhs Node) Pos { return NewPos(lhs.StartPosition(), rhs.EndPosition()) }

func (p *Parser) parseExpr() (Node, error) { return p.parseAssign() }

func (p *Parser) parseAssign() (Node, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match(ASSIGN); ok {
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return newAssign(tokPos(op), lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseTernary() (Node, error) {
	cond, err := p.parseElvis()
	if err != nil {
		return nil, err
	}
	op, ok := p.match(QUESTION)
	if !ok {
		return cond, nil
	}
	thenN, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "':' in ternary"); err != nil {
		return nil, err
	}
	elseN, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return newTernary(tokPos(op), cond, thenN, elseN), nil
}

func (p *Parser) parseElvis() (Node, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.match(ELVIS)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		lhs = newElvis(tokPos(op), lhs, rhs)
	}
}

// binaryLevel parses a left-associative run of the given operator tokens,
// with next as the tighter level.
func (p *Parser) binaryLevel(next func() (Node, error), ops ...TokenType) (Node, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, tt := range ops {
			if op, ok := p.match(tt); ok {
				rhs, err := next()
				if err != nil {
					return nil, err
				}
				lhs = newBinaryOp(tokPos(op), op.Lexeme, lhs, rhs)
				matched = true
				break
			}
		}
		if !matched {
			return lhs, nil
		}
	}
}

func (p *Parser) parseOr() (Node, error) {
	return p.binaryLevel(p.parseAnd, OR)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.binaryLevel(p.parseEquality, AND)
}

func (p *Parser) parseEquality() (Node, error) {
	return p.binaryLevel(p.parseRelational, EQ, NEQ)
}

func (p *Parser) parseRelational() (Node, error) {
	return p.binaryLevel(p.parseAdditive, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

func (p *Parser) parseAdditive() (Node, error) {
	return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

func (p *Parser) parseMultiplicative() (Node, error) {
	return p.binaryLevel(p.parsePower, MULT, DIV, MOD)
}

func (p *Parser) parsePower() (Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match(POWER); ok {
		rhs, err := p.parsePower() // right-assoc
		if err != nil {
			return nil, err
		}
		return newBinaryOp(tokPos(op), op.Lexeme, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (Node, error) {
	for _, tt := range []TokenType{MINUS, BANG} {
		if op, ok := p.match(tt); ok {
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return newUnaryOp(tokPos(op), op.Lexeme, operand), nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	head, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	parts := []Node{head}
	for {
		switch {
		case p.check(PERIOD), p.check(SAFE_NAV):
			op := p.advance()
			id, err := p.expect(ID, "property name")
			if err != nil {
				return nil, err
			}
			parts = append(parts, newPropertyRef(NewPos(op.Start, id.End), id.Lexeme, op.Type == SAFE_NAV))
		case p.check(LSQUARE):
			lb := p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			rb, err := p.expect(RSQUARE, "']'")
			if err != nil {
				return nil, err
			}
			parts = append(parts, newIndexer(NewPos(lb.Start, rb.End), idx))
		default:
			if len(parts) == 1 {
				return head, nil
			}
			return newCompound(spanOf(parts[0], parts[len(parts)-1]), parts...), nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	t := p.peek()
	switch t.Type {
	case INTEGER:
		p.advance()
		return newIntLiteral(tokPos(t), t.Literal.(int64)), nil
	case NUMBER:
		p.advance()
		return newFloatLiteral(tokPos(t), t.Literal.(float64)), nil
	case STRING:
		p.advance()
		return newStringLiteral(tokPos(t), t.Literal.(string)), nil
	case BOOLEAN:
		p.advance()
		return newBoolLiteral(tokPos(t), t.Literal.(bool)), nil
	case NULL:
		p.advance()
		return newNullLiteral(tokPos(t)), nil
	case HASH:
		p.advance()
		id, err := p.expect(ID, "variable name after '#'")
		if err != nil {
			return nil, err
		}
		return newVariableRef(NewPos(t.Start, id.End), id.Lexeme), nil
	case ID:
		p.advance()
		if p.check(LROUND) {
			return p.parseCall(t)
		}
		return newPropertyRef(tokPos(t), t.Lexeme, false), nil
	case LROUND:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RROUND, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case LCURLY:
		return p.parseCurly()
	case EOF:
		return nil, &ParseError{Pos: t.Start, Msg: "unexpected end of input", Incomplete: true}
	}
	return nil, p.errAt(t, "unexpected %q", t.Lexeme)
}

func (p *Parser) parseCall(name Token) (Node, error) {
	p.advance() // '('
	var args []Node
	if !p.check(RROUND) {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	rp, err := p.expect(RROUND, "')' closing call")
	if err != nil {
		return nil, err
	}
	return newFunctionCall(NewPos(name.Start, rp.End), name.Lexeme, args...), nil
}

// parseCurly handles inline lists {a, b} and inline maps {'k': v}. The
// construct is a map iff every item is `key ':' value`.
func (p *Parser) parseCurly() (Node, error) {
	lb := p.advance() // '{'
	if rb, ok := p.match(RCURLY); ok {
		return newListLiteral(NewPos(lb.Start, rb.End)), nil
	}

	// Map detection: a string/identifier key followed by ':'.
	if p.isMapKeyAhead() {
		var keys []string
		var values []Node
		for {
			kt := p.advance()
			key := kt.Lexeme
			if kt.Type == STRING {
				key = kt.Literal.(string)
			}
			if _, err := p.expect(COLON, "':' in map literal"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			values = append(values, v)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
		rb, err := p.expect(RCURLY, "'}' closing map")
		if err != nil {
			return nil, err
		}
		return newMapLiteral(NewPos(lb.Start, rb.End), keys, values...), nil
	}

	var elems []Node
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if _, ok := p.match(COMMA); !ok {
			break
		}
	}
	rb, err := p.expect(RCURLY, "'}' closing list")
	if err != nil {
		return nil, err
	}
	return newListLiteral(NewPos(lb.Start, rb.End), elems...), nil
}

func (p *Parser) isMapKeyAhead() bool {
	t := p.peek()
	if t.Type != STRING && t.Type != ID {
		return false
	}
	if p.cur+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.cur+1].Type == COLON
}
