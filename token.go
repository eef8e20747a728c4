package xpr

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND    // "("
	RROUND    // ")"
	LSQUARE   // "["
	RSQUARE   // "]"
	LCURLY    // "{"
	RCURLY    // "}"
	COLON     // ":"
	COMMA     // ","
	PERIOD    // "."
	SAFE_NAV  // "?."
	QUESTION  // "?"
	ELVIS     // "?:"
	HASH      // "#"

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	POWER      // "^"
	ASSIGN     // "="
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="
	AND        // "&&"
	OR         // "||"
	BANG       // "!"

	// Literals & identifiers
	ID
	STRING
	INTEGER
	NUMBER
	BOOLEAN
	NULL
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", ILLEGAL: "ILLEGAL",
	LROUND: "(", RROUND: ")", LSQUARE: "[", RSQUARE: "]",
	LCURLY: "{", RCURLY: "}", COLON: ":", COMMA: ",", PERIOD: ".",
	SAFE_NAV: "?.", QUESTION: "?", ELVIS: "?:", HASH: "#",
	PLUS: "+", MINUS: "-", MULT: "*", DIV: "/", MOD: "%", POWER: "^",
	ASSIGN: "=", EQ: "==", NEQ: "!=", LESS: "<", LESS_EQ: "<=",
	GREATER: ">", GREATER_EQ: ">=", AND: "&&", OR: "||", BANG: "!",
	ID: "identifier", STRING: "string", INTEGER: "integer",
	NUMBER: "number", BOOLEAN: "boolean", NULL: "null",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "token(?)"
}

// Token is a lexical token with optional literal value and its half-open
// byte span in the source.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text slice
	Literal any    // parsed value for literals
	Start   int    // inclusive byte offset
	End     int    // exclusive byte offset
}

// keywords recognized as literal tokens.
var keywords = map[string]TokenType{
	"null":  NULL,
	"true":  BOOLEAN,
	"false": BOOLEAN,
}
