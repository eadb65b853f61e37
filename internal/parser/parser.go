// Package parser builds the parse tree for machining scripts: expression
// statements and for-loops at the top level, math expressions by
// left-associative precedence climbing, calls with positional and named
// arguments.
package parser

import (
	"fmt"
	"strconv"

	"github.com/gcad-lang/gcad/internal/ast"
	"github.com/gcad-lang/gcad/internal/lexer"
	"github.com/gcad-lang/gcad/internal/number"
)

// Parser is a recursive descent parser over a pre-scanned token stream.
type Parser struct {
	input  string
	tokens []lexer.Token
	pos    int
}

// New creates a Parser for the given source text.
func New(input string) *Parser {
	return &Parser{
		input:  input,
		tokens: lexer.New(input).Tokens(),
	}
}

// Parse parses a whole program: statements until EOF.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		// Stray statement separators are consumed and ignored.
		for p.current().Type == lexer.SEMICOLON {
			p.advance()
		}
		if p.current().Type == lexer.EOF {
			return prog, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
}

func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.current().Type != tt {
		return lexer.Token{}, p.NewUnexpectedTokenError(what, p.current())
	}
	return p.advance(), nil
}

// parseStatement parses one top-level or block statement: a for-loop or an
// expression statement.
func (p *Parser) parseStatement() (ast.Node, error) {
	if p.current().Type == lexer.FOR {
		return p.parseForLoop()
	}
	return p.parseExpression()
}

// parseForLoop parses `for ident in range-expression block`.
func (p *Parser) parseForLoop() (ast.Node, error) {
	forTok := p.advance()

	name, err := p.expect(lexer.IDENTIFIER, "loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN, "'in'"); err != nil {
		return nil, err
	}
	rangeExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForLoop{For: forTok, Var: name, RangeExpr: rangeExpr, Body: body}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(lexer.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}

	block := &ast.Block{Lbrace: lbrace}
	for {
		for p.current().Type == lexer.SEMICOLON {
			p.advance()
		}
		switch p.current().Type {
		case lexer.RBRACE:
			p.advance()
			return block, nil
		case lexer.EOF:
			return nil, p.NewMissingTokenError("'}' to close block")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

// parseExpression parses an assignment or a math expression. Assignment is
// itself an expression and evaluates to the stored value.
func (p *Parser) parseExpression() (ast.Expr, error) {
	if p.current().Type == lexer.IDENTIFIER && p.peek().Type == lexer.EQUALS {
		name := p.advance()
		p.advance() // consume '='
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name, Value: val}, nil
	}
	return p.parseMath(1)
}

// precedence returns the binding power of a binary operator token, or 0 for
// non-operators. `* /` bind at 2, `+ -` at 1; all are left-associative.
func precedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.MULTIPLY, lexer.DIVIDE:
		return 2
	case lexer.PLUS, lexer.MINUS:
		return 1
	default:
		return 0
	}
}

// parseMath is the precedence climber for arithmetic.
func (p *Parser) parseMath(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec := precedence(p.current().Type)
		if prec < minPrec {
			return left, nil
		}
		op := p.advance()
		right, err := p.parseMath(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.current().Type == lexer.MINUS {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.INTEGER, lexer.FLOAT:
		p.advance()
		return p.numberLit(tok)
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Tok: tok, Value: tok.Value}, nil
	case lexer.IDENTIFIER:
		if p.peek().Type == lexer.LPAREN {
			return p.parseCall()
		}
		p.advance()
		return &ast.Ident{Tok: tok}, nil
	case lexer.LPAREN:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.ILLEGAL:
		return nil, p.NewSyntaxError(fmt.Sprintf("invalid token '%s'", tok.Value))
	default:
		return nil, p.NewUnexpectedTokenError("an expression", tok)
	}
}

// numberLit builds a NumberLit from an INTEGER or FLOAT token with its
// optional unit suffix.
func (p *Parser) numberLit(tok lexer.Token) (ast.Expr, error) {
	unit := number.None
	if tok.Unit != "" {
		u, ok := number.ParseUnit(tok.Unit)
		if !ok {
			return nil, ParseError{
				Type:    ErrorSyntax,
				Message: fmt.Sprintf("unknown unit suffix '%s'", tok.Unit),
				Token:   tok,
				Input:   p.input,
			}
		}
		unit = u
	}

	var n number.Number
	if tok.Type == lexer.INTEGER {
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, ParseError{
				Type:    ErrorSyntax,
				Message: fmt.Sprintf("invalid integer literal '%s'", tok.Value),
				Token:   tok,
				Input:   p.input,
			}
		}
		n = number.FromIntUnit(i, unit)
	} else {
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, ParseError{
				Type:    ErrorSyntax,
				Message: fmt.Sprintf("invalid decimal literal '%s'", tok.Value),
				Token:   tok,
				Input:   p.input,
			}
		}
		n = number.FromFloatUnit(f, unit)
	}

	return &ast.NumberLit{Tok: tok, Value: n}, nil
}

// parseCall parses `ident(arg, name=arg, ...)`. Arguments stay in call-site
// written order; named arguments are distinguished by a leading `name=`.
func (p *Parser) parseCall() (ast.Expr, error) {
	ident := p.advance()
	p.advance() // consume '('

	call := &ast.Call{Ident: ident}
	if p.current().Type == lexer.RPAREN {
		p.advance()
		return call, nil
	}

	for {
		var arg ast.Arg
		if p.current().Type == lexer.IDENTIFIER && p.peek().Type == lexer.EQUALS {
			arg.Name = p.advance()
			p.advance() // consume '='
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arg.Value = val
		call.Args = append(call.Args, arg)

		switch p.current().Type {
		case lexer.COMMA:
			p.advance()
		case lexer.RPAREN:
			p.advance()
			return call, nil
		default:
			return nil, p.NewUnexpectedTokenError("',' or ')'", p.current())
		}
	}
}
