// Package ast defines the parse tree for machining scripts. Every node
// retains the position of the token it was parsed from, so later stages can
// report errors against the source text.
package ast

import (
	"fmt"
	"strings"

	"github.com/gcad-lang/gcad/internal/lexer"
	"github.com/gcad-lang/gcad/internal/number"
)

// Node is any parse tree node.
type Node interface {
	Pos() lexer.Position
}

// Expr is a node that evaluates to a script value.
type Expr interface {
	Node
	exprNode()
}

// Program is the root node: top-level statements in source order. A statement
// is either an expression or a for-loop.
type Program struct {
	Statements []Node
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

// Assign stores the value of an expression under a name. Assignment is itself
// an expression and evaluates to the stored value.
type Assign struct {
	Name  lexer.Token // IDENTIFIER
	Value Expr
}

func (a *Assign) Pos() lexer.Position { return a.Name.Pos }
func (a *Assign) exprNode()           {}

// Binary is a left-associative arithmetic expression. Op is one of PLUS,
// MINUS, MULTIPLY, DIVIDE.
type Binary struct {
	Op    lexer.Token
	Left  Expr
	Right Expr
}

func (b *Binary) Pos() lexer.Position { return b.Left.Pos() }
func (b *Binary) exprNode()           {}

// Unary is a prefix negation.
type Unary struct {
	Op      lexer.Token // MINUS
	Operand Expr
}

func (u *Unary) Pos() lexer.Position { return u.Op.Pos }
func (u *Unary) exprNode()           {}

// NumberLit is a numeric literal, optionally unit-suffixed.
type NumberLit struct {
	Tok   lexer.Token
	Value number.Number
}

func (n *NumberLit) Pos() lexer.Position { return n.Tok.Pos }
func (n *NumberLit) exprNode()           {}

// StringLit is a single-quoted string literal; Value is the decoded content.
type StringLit struct {
	Tok   lexer.Token
	Value string
}

func (s *StringLit) Pos() lexer.Position { return s.Tok.Pos }
func (s *StringLit) exprNode()           {}

// Ident is a variable reference.
type Ident struct {
	Tok lexer.Token
}

func (i *Ident) Name() string        { return i.Tok.Value }
func (i *Ident) Pos() lexer.Position { return i.Tok.Pos }
func (i *Ident) exprNode()           {}

// Arg is one call-site argument. Positional arguments have a zero Name token;
// named arguments keep the name for binding and error reporting.
type Arg struct {
	Name  lexer.Token // IDENTIFIER, zero for positional
	Value Expr
}

// Named reports whether the argument was written as name=expr.
func (a Arg) Named() bool { return a.Name.Value != "" }

// Call invokes a builtin with positional and named arguments in call-site
// written order.
type Call struct {
	Ident lexer.Token // the builtin name
	Args  []Arg
}

func (c *Call) Pos() lexer.Position { return c.Ident.Pos }
func (c *Call) exprNode()           {}

// Block is a braced statement list; it evaluates to Null.
type Block struct {
	Lbrace     lexer.Token
	Statements []Node
}

func (b *Block) Pos() lexer.Position { return b.Lbrace.Pos }

// ForLoop iterates a range expression, binding the loop variable in the
// single global environment before each execution of the body.
type ForLoop struct {
	For       lexer.Token
	Var       lexer.Token // IDENTIFIER
	RangeExpr Expr
	Body      *Block
}

func (f *ForLoop) Pos() lexer.Position { return f.For.Pos }

// Dump renders the tree in an indented one-node-per-line form for verbose
// compiler output.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	indent := ""
	if depth > 0 {
		indent = strings.Repeat("|    ", depth-1) + "|----"
	}

	switch n := n.(type) {
	case *Program:
		fmt.Fprintf(sb, "%sprogram\n", indent)
		for _, s := range n.Statements {
			dump(sb, s, depth+1)
		}
	case *Assign:
		fmt.Fprintf(sb, "%sassign: %s\n", indent, n.Name.Value)
		dump(sb, n.Value, depth+1)
	case *Binary:
		fmt.Fprintf(sb, "%sbinary: %s\n", indent, n.Op.Value)
		dump(sb, n.Left, depth+1)
		dump(sb, n.Right, depth+1)
	case *Unary:
		fmt.Fprintf(sb, "%sunary: %s\n", indent, n.Op.Value)
		dump(sb, n.Operand, depth+1)
	case *NumberLit:
		fmt.Fprintf(sb, "%snumber: %s\n", indent, n.Value)
	case *StringLit:
		fmt.Fprintf(sb, "%sstring: %q\n", indent, n.Value)
	case *Ident:
		fmt.Fprintf(sb, "%sident: %s\n", indent, n.Name())
	case *Call:
		fmt.Fprintf(sb, "%scall: %s\n", indent, n.Ident.Value)
		for _, a := range n.Args {
			if a.Named() {
				fmt.Fprintf(sb, "%s|----named: %s\n", strings.Repeat("|    ", depth), a.Name.Value)
				dump(sb, a.Value, depth+2)
			} else {
				dump(sb, a.Value, depth+1)
			}
		}
	case *ForLoop:
		fmt.Fprintf(sb, "%sfor: %s\n", indent, n.Var.Value)
		dump(sb, n.RangeExpr, depth+1)
		dump(sb, n.Body, depth+1)
	case *Block:
		fmt.Fprintf(sb, "%sblock\n", indent)
		for _, s := range n.Statements {
			dump(sb, s, depth+1)
		}
	default:
		fmt.Fprintf(sb, "%s%T\n", indent, n)
	}
}
