// lexer.go — scanner for xpr expression sources.
//
// The lexer turns an expression string into a flat token slice. Every token
// carries its half-open byte span [Start, End) so the parser can pack node
// positions (position.go) and diagnostics can point back into the source.
//
// Notable rules:
//   - Strings accept single or double quotes with backslash escapes
//     (\\ \' \" \n \t \r); the decoded value lands in Token.Literal.
//   - A number with a '.' or exponent becomes NUMBER (float64), otherwise
//     INTEGER (int64).
//   - "?." , "?:" and "?" are three distinct tokens; the lexer prefers the
//     longest match.
//   - Sources longer than MaxSourceLen bytes are rejected before scanning,
//     since node positions cannot address offsets past 65535.
package xpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSourceLen is the largest expression source, in bytes, that positions
// can address.
const MaxSourceLen = maxOffset

// LexError is a scan failure at a byte offset in the source.
type LexError struct {
	Pos int // byte offset of the offending character
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// Lexer scans an xpr source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	tokens []Token
}

// NewLexer returns a lexer over src. Scanning happens in Scan.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes the whole source, ending with an EOF token. The returned
// error is a *LexError.
func (l *Lexer) Scan() ([]Token, error) {
	if len(l.src) > MaxSourceLen {
		return nil, &LexError{Pos: MaxSourceLen, Msg: fmt.Sprintf("expression too long (%d bytes, max %d)", len(l.src), MaxSourceLen)}
	}
	for !l.atEnd() {
		l.start = l.cur
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Start: l.cur, End: l.cur})
	return l.tokens, nil
}

//// END_OF_PUBLIC

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) advance() byte {
	c := l.src[l.cur]
	l.cur++
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) match(c byte) bool {
	if l.atEnd() || l.src[l.cur] != c {
		return false
	}
	l.cur++
	return true
}

func (l *Lexer) emit(t TokenType) {
	l.emitLit(t, nil)
}

func (l *Lexer) emitLit(t TokenType, lit any) {
	l.tokens = append(l.tokens, Token{
		Type:    t,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Start:   l.start,
		End:     l.cur,
	})
}

func (l *Lexer) errf(at int, format string, args ...any) error {
	return &LexError{Pos: at, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) scanToken() error {
	c := l.advance()
	switch c {
	case ' ', '\t', '\r', '\n':
		return nil
	case '(':
		l.emit(LROUND)
	case ')':
		l.emit(RROUND)
	case '[':
		l.emit(LSQUARE)
	case ']':
		l.emit(RSQUARE)
	case '{':
		l.emit(LCURLY)
	case '}':
		l.emit(RCURLY)
	case ':':
		l.emit(COLON)
	case ',':
		l.emit(COMMA)
	case '#':
		l.emit(HASH)
	case '+':
		l.emit(PLUS)
	case '-':
		l.emit(MINUS)
	case '*':
		l.emit(MULT)
	case '/':
		l.emit(DIV)
	case '%':
		l.emit(MOD)
	case '^':
		l.emit(POWER)
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber()
		}
		l.emit(PERIOD)
	case '?':
		switch {
		case l.match('.'):
			l.emit(SAFE_NAV)
		case l.match(':'):
			l.emit(ELVIS)
		default:
			l.emit(QUESTION)
		}
	case '=':
		if l.match('=') {
			l.emit(EQ)
		} else {
			l.emit(ASSIGN)
		}
	case '!':
		if l.match('=') {
			l.emit(NEQ)
		} else {
			l.emit(BANG)
		}
	case '<':
		if l.match('=') {
			l.emit(LESS_EQ)
		} else {
			l.emit(LESS)
		}
	case '>':
		if l.match('=') {
			l.emit(GREATER_EQ)
		} else {
			l.emit(GREATER)
		}
	case '&':
		if !l.match('&') {
			return l.errf(l.start, "unexpected '&' (did you mean '&&'?)")
		}
		l.emit(AND)
	case '|':
		if !l.match('|') {
			return l.errf(l.start, "unexpected '|' (did you mean '||'?)")
		}
		l.emit(OR)
	case '\'', '"':
		return l.scanString(c)
	default:
		if isDigit(c) {
			return l.scanNumber()
		}
		if isIdentStart(c) {
			l.scanIdent()
			return nil
		}
		r, _ := utf8.DecodeRuneInString(l.src[l.start:])
		return l.errf(l.start, "unexpected character %q", r)
	}
	return nil
}

// scanString consumes a quoted string; quote is the opening delimiter.
func (l *Lexer) scanString(quote byte) error {
	var b strings.Builder
	for {
		if l.atEnd() {
			return l.errf(l.start, "unterminated string")
		}
		c := l.advance()
		if c == quote {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if l.atEnd() {
			return l.errf(l.cur-1, "dangling escape at end of string")
		}
		e := l.advance()
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(e)
		default:
			return l.errf(l.cur-2, "unknown escape \\%c", e)
		}
	}
	l.emitLit(STRING, b.String())
	return nil
}

func (l *Lexer) scanNumber() error {
	isFloat := l.src[l.start] == '.'
	for isDigit(l.peek()) {
		l.advance()
	}
	// Fractional part. A '.' not followed by a digit is left alone so that
	// `1.name` surfaces as a parse error rather than a lex error.
	if !isFloat && l.peek() == '.' && l.cur+1 < len(l.src) && isDigit(l.src[l.cur+1]) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		mark := l.cur
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			l.cur = mark // bare 'e' starts an identifier, back off
		} else {
			isFloat = true
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	text := l.src[l.start:l.cur]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return l.errf(l.start, "bad number %q", text)
		}
		l.emitLit(NUMBER, f)
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return l.errf(l.start, "bad integer %q", text)
	}
	l.emitLit(INTEGER, n)
	return nil
}

func (l *Lexer) scanIdent() {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[l.start:l.cur]
	if t, ok := keywords[text]; ok {
		switch t {
		case BOOLEAN:
			l.emitLit(BOOLEAN, text == "true")
		case NULL:
			l.emitLit(NULL, nil)
		}
		return
	}
	l.emitLit(ID, text)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c >= 0x80 || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
