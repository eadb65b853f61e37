package parser

import (
	"fmt"
	"strings"

	"github.com/gcad-lang/gcad/internal/lexer"
)

// ParseError is a syntax error with location and context information.
type ParseError struct {
	Type    ErrorType
	Message string
	Token   lexer.Token
	Input   string
}

// ErrorType categorizes parsing errors.
type ErrorType int

const (
	ErrorSyntax ErrorType = iota
	ErrorUnexpected
	ErrorMissing
)

func (e ErrorType) String() string {
	switch e {
	case ErrorSyntax:
		return "syntax error"
	case ErrorUnexpected:
		return "unexpected token"
	case ErrorMissing:
		return "missing"
	default:
		return "error"
	}
}

// Error returns the formatted message with line/column and a code snippet.
func (e ParseError) Error() string {
	snippet := e.createCodeSnippet()
	return fmt.Sprintf("%s: %s\n%s", e.Type.String(), e.Message, snippet)
}

// createCodeSnippet renders the error location with a caret pointer.
func (e ParseError) createCodeSnippet() string {
	if e.Input == "" || e.Token.Pos.Line == 0 {
		return ""
	}

	lines := strings.Split(e.Input, "\n")
	if e.Token.Pos.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Token.Pos.Line-1]

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %d:%d\n", e.Token.Pos.Line, e.Token.Pos.Column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Token.Pos.Line, lineContent))
	snippet.WriteString("   | ")
	if e.Token.Pos.Column > 0 && e.Token.Pos.Column <= len(lineContent)+1 {
		snippet.WriteString(strings.Repeat(" ", e.Token.Pos.Column-1) + "^")
	}
	return snippet.String()
}

// NewSyntaxError creates a syntax error at the current token.
func (p *Parser) NewSyntaxError(message string) error {
	return ParseError{
		Type:    ErrorSyntax,
		Message: message,
		Token:   p.current(),
		Input:   p.input,
	}
}

// NewUnexpectedTokenError creates an error for an unexpected token.
func (p *Parser) NewUnexpectedTokenError(expected string, got lexer.Token) error {
	return ParseError{
		Type:    ErrorUnexpected,
		Message: fmt.Sprintf("expected %s, got %s", expected, got.Type.String()),
		Token:   got,
		Input:   p.input,
	}
}

// NewMissingTokenError creates an error for a missing expected token.
func (p *Parser) NewMissingTokenError(expected string) error {
	return ParseError{
		Type:    ErrorMissing,
		Message: fmt.Sprintf("expected %s", expected),
		Token:   p.current(),
		Input:   p.input,
	}
}
