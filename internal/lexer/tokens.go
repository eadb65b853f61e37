package lexer

// TokenType classifies lexical tokens of the machining script grammar.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	// Keywords
	FOR // for
	IN  // in

	// Punctuation
	EQUALS    // =
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }

	// Arithmetic operators
	PLUS     // +
	MINUS    // -
	MULTIPLY // *
	DIVIDE   // /

	// Literals
	IDENTIFIER // variable and builtin names
	INTEGER    // 123
	FLOAT      // 3.14
	STRING     // 'text' with '' as an escaped quote
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case FOR:
		return "FOR"
	case IN:
		return "IN"
	case EQUALS:
		return "EQUALS"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case MULTIPLY:
		return "MULTIPLY"
	case DIVIDE:
		return "DIVIDE"
	case IDENTIFIER:
		return "IDENTIFIER"
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Position is a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// Token is one lexical token. For INTEGER and FLOAT tokens, Value holds the
// bare digits and Unit holds the optional unit suffix (mm, cm, m, in, ft, yd).
// For STRING tokens, Value holds the decoded content with '' collapsed to '.
type Token struct {
	Type  TokenType
	Value string
	Unit  string
	Pos   Position
}

// Keywords maps identifier spellings to keyword token types.
var Keywords = map[string]TokenType{
	"for": FOR,
	"in":  IN,
}

// SingleCharTokens maps single characters to their token types.
var SingleCharTokens = map[byte]TokenType{
	'=': EQUALS,
	',': COMMA,
	';': SEMICOLON,
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'+': PLUS,
	'-': MINUS,
	'*': MULTIPLY,
	'/': DIVIDE,
}
