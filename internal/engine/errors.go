package engine

import (
	"fmt"
	"strings"

	"github.com/gcad-lang/gcad/internal/lexer"
)

// ErrorKind categorizes runtime script errors. Every error is fatal to the
// run; the first one aborts interpretation.
type ErrorKind int

const (
	NameError ErrorKind = iota
	TypeError
	UnitError
	ArgumentError
	ArityError
	UnknownArgumentError
	DomainError
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case NameError:
		return "name error"
	case TypeError:
		return "type error"
	case UnitError:
		return "unit error"
	case ArgumentError:
		return "argument error"
	case ArityError:
		return "arity error"
	case UnknownArgumentError:
		return "unknown argument"
	case DomainError:
		return "domain error"
	case IOError:
		return "io error"
	default:
		return "error"
	}
}

// Error is a runtime script error carrying the source position it was raised
// at. Errors raised inside builtins start without a position; the interpreter
// stamps the call site onto them on the way out.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     lexer.Position
	Input   string
}

func (e *Error) Error() string {
	snippet := e.createCodeSnippet()
	if snippet == "" {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s\n%s", e.Kind.String(), e.Message, snippet)
}

func (e *Error) createCodeSnippet() string {
	if e.Input == "" || e.Pos.Line == 0 {
		return ""
	}

	lines := strings.Split(e.Input, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Pos.Line-1]

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %d:%d\n", e.Pos.Line, e.Pos.Column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Pos.Line, lineContent))
	snippet.WriteString("   | ")
	if e.Pos.Column > 0 && e.Pos.Column <= len(lineContent)+1 {
		snippet.WriteString(strings.Repeat(" ", e.Pos.Column-1) + "^")
	}
	return snippet.String()
}

// scriptErrorf builds an Error without a position; the interpreter fills the
// position in when the error crosses a call site.
func scriptErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
