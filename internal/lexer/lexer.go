// Package lexer turns machining-script source text into a token stream with
// precise line/column positions for error reporting.
package lexer

import (
	"log/slog"
	"os"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/gcad-lang/gcad/internal/number"
)

// ASCII classification tables for fast scanning.
var (
	isWhitespace [128]bool
	isLetter     [128]bool
	isDigit      [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
		isLetter[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isDigit[i] = '0' <= ch && ch <= '9'
	}
}

// Lexer scans one source text. The grammar is whitespace and newline
// insensitive; // comments run to end of line.
type Lexer struct {
	input    string
	position int // byte offset of ch
	readPos  int // byte offset after ch
	ch       byte
	line     int
	column   int

	logger *slog.Logger
}

// New creates a Lexer over the given source text. Setting the GCAD_DEBUG
// environment variable enables per-token debug logging to stderr.
func New(input string) *Lexer {
	logLevel := slog.LevelInfo
	if env.Bool("GCAD_DEBUG") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	l := &Lexer{
		input:  input,
		line:   1,
		column: 0, // incremented to 1 by the initial readChar
		logger: logger,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.position = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// Next returns the next token, or an EOF token at end of input.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()

	tok := l.scan()
	l.logger.Debug("token", "type", tok.Type.String(), "value", tok.Value, "line", tok.Pos.Line, "column", tok.Pos.Column)
	return tok
}

// Tokens scans the whole input. The final token is always EOF.
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch < 128 && isWhitespace[l.ch] && l.ch != 0 {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) scan() Token {
	pos := l.pos()

	switch {
	case l.ch == 0:
		return Token{Type: EOF, Pos: pos}
	case l.ch == '\'':
		return l.scanString(pos)
	case l.ch < 128 && isDigit[l.ch]:
		return l.scanNumber(pos)
	case l.ch < 128 && isLetter[l.ch]:
		return l.scanIdentifier(pos)
	}

	if tt, ok := SingleCharTokens[l.ch]; ok {
		tok := Token{Type: tt, Value: string(l.ch), Pos: pos}
		l.readChar()
		return tok
	}

	tok := Token{Type: ILLEGAL, Value: string(l.ch), Pos: pos}
	l.readChar()
	return tok
}

// scanString reads a single-quoted string literal. A doubled quote '' inside
// the literal stands for one quote character.
func (l *Lexer) scanString(pos Position) Token {
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		switch l.ch {
		case 0:
			return Token{Type: ILLEGAL, Value: "unterminated string", Pos: pos}
		case '\'':
			if l.peekChar() == '\'' {
				sb.WriteByte('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // consume closing quote
			return Token{Type: STRING, Value: sb.String(), Pos: pos}
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// scanNumber reads an integer or decimal literal with an optional unit
// suffix. A letter run after the digits that is not a valid unit makes the
// whole token ILLEGAL.
func (l *Lexer) scanNumber(pos Position) Token {
	start := l.position
	for l.ch < 128 && isDigit[l.ch] {
		l.readChar()
	}

	tt := INTEGER
	if l.ch == '.' && isDigit[l.peekChar()] {
		tt = FLOAT
		l.readChar()
		for l.ch < 128 && isDigit[l.ch] {
			l.readChar()
		}
	}
	digits := l.input[start:l.position]

	suffixStart := l.position
	for l.ch < 128 && isLetter[l.ch] {
		l.readChar()
	}
	suffix := l.input[suffixStart:l.position]

	if suffix != "" {
		if _, ok := number.ParseUnit(suffix); !ok {
			return Token{Type: ILLEGAL, Value: digits + suffix, Pos: pos}
		}
	}

	return Token{Type: tt, Value: digits, Unit: suffix, Pos: pos}
}

func (l *Lexer) scanIdentifier(pos Position) Token {
	start := l.position
	for l.ch < 128 && (isLetter[l.ch] || isDigit[l.ch]) {
		l.readChar()
	}
	word := l.input[start:l.position]

	if tt, ok := Keywords[word]; ok {
		return Token{Type: tt, Value: word, Pos: pos}
	}
	return Token{Type: IDENTIFIER, Value: word, Pos: pos}
}
