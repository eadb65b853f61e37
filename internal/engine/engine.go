// Package engine is the tree-walking interpreter for machining scripts. One
// Engine owns the compilation context for a single run: the flat global
// variable environment, the materials registry and the G-code emission state.
// There are no ambient globals; everything is threaded through the Engine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/gcad-lang/gcad/internal/ast"
	"github.com/gcad-lang/gcad/internal/gcode"
	"github.com/gcad-lang/gcad/internal/lexer"
	"github.com/gcad-lang/gcad/internal/parser"
	"github.com/gcad-lang/gcad/internal/value"
)

// Engine interprets scripts against a single global environment and drives
// the G-code back end.
type Engine struct {
	vars      map[string]value.Value
	materials map[string]Material
	gcode     *gcode.State

	builtins     map[string]*builtin
	builtinNames []string

	logger *slog.Logger
	source string // source of the script currently running, for error snippets
}

// New creates an Engine writing G-code to w. Verbose mode (or the GCAD_DEBUG
// environment variable) enables parse-tree and execution-trace logging.
func New(w io.Writer, verbose bool) *Engine {
	logLevel := slog.LevelInfo
	if verbose || env.Bool("GCAD_DEBUG") {
		logLevel = slog.LevelDebug
	}

	e := &Engine{
		vars:      make(map[string]value.Value),
		materials: make(map[string]Material),
		gcode:     gcode.NewState(w),
		builtins:  make(map[string]*builtin),
		logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})),
	}
	for _, b := range builtinTable() {
		e.builtins[b.name] = b
		e.builtinNames = append(e.builtinNames, b.name)
	}
	return e
}

// WriteHeader emits the fixed program prologue. Call once, before any script.
func (e *Engine) WriteHeader() error {
	if err := e.gcode.WriteHeader(); err != nil {
		return scriptErrorf(IOError, "writing output: %s", err.Error())
	}
	return nil
}

// Finish emits the program-end instruction and flushes the output.
func (e *Engine) Finish() error {
	if err := e.gcode.Finish(); err != nil {
		return scriptErrorf(IOError, "writing output: %s", err.Error())
	}
	return nil
}

// Run parses and executes one script. The first error aborts the run.
func (e *Engine) Run(source string) error {
	prev := e.source
	e.source = source
	defer func() { e.source = prev }()

	prog, err := parser.New(source).Parse()
	if err != nil {
		return err
	}
	e.logger.Debug("parsed program", "tree", "\n"+ast.Dump(prog))

	for _, stmt := range prog.Statements {
		if _, err := e.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RunFile reads and runs a script file.
func (e *Engine) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Kind: IOError, Message: fmt.Sprintf("failed to read %s: %v", path, err)}
	}
	return e.Run(string(data))
}

// errorAt builds a positioned Error against the current source.
func (e *Engine) errorAt(kind ErrorKind, pos lexer.Position, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, Input: e.source}
}

// stamp attaches a call-site position to an error that was raised without
// one, so builtin failures always point at the offending call.
func (e *Engine) stamp(err error, pos lexer.Position) error {
	var se *Error
	if errors.As(err, &se) {
		if se.Pos.Line == 0 {
			se.Pos = pos
			se.Input = e.source
		}
		return se
	}
	return &Error{Kind: IOError, Message: err.Error(), Pos: pos, Input: e.source}
}

// exec evaluates one node to a script value, with side effects on the
// environment, the materials registry and the G-code state.
func (e *Engine) exec(node ast.Node) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Statements {
			if _, err := e.exec(stmt); err != nil {
				return value.Null(), err
			}
		}
		return value.Null(), nil

	case *ast.Assign:
		v, err := e.exec(n.Value)
		if err != nil {
			return value.Null(), err
		}
		e.vars[n.Name.Value] = v
		return v, nil

	case *ast.Binary:
		left, err := e.exec(n.Left)
		if err != nil {
			return value.Null(), err
		}
		right, err := e.exec(n.Right)
		if err != nil {
			return value.Null(), err
		}
		res, err := left.Binary(opFor(n.Op.Type), right)
		if err != nil {
			return value.Null(), e.errorAt(TypeError, n.Op.Pos, "%s", err.Error())
		}
		return res, nil

	case *ast.Unary:
		operand, err := e.exec(n.Operand)
		if err != nil {
			return value.Null(), err
		}
		res, err := operand.Neg()
		if err != nil {
			return value.Null(), e.errorAt(TypeError, n.Op.Pos, "%s", err.Error())
		}
		return res, nil

	case *ast.NumberLit:
		return value.Num(n.Value), nil

	case *ast.StringLit:
		return value.Str(n.Value), nil

	case *ast.Ident:
		v, ok := e.vars[n.Name()]
		if !ok {
			return value.Null(), e.errorAt(NameError, n.Pos(), "variable not found: %s", n.Name())
		}
		return v, nil

	case *ast.Call:
		return e.execCall(n)

	case *ast.ForLoop:
		rv, err := e.exec(n.RangeExpr)
		if err != nil {
			return value.Null(), err
		}
		r, err := rv.Range()
		if err != nil {
			return value.Null(), e.errorAt(TypeError, n.RangeExpr.Pos(), "for-loop requires a range, got %s", rv.Kind())
		}

		e.logger.Debug("for loop", "var", n.Var.Value, "count", r.Count)
		for i := 0; i < r.Count; i++ {
			// The loop variable lives in the shared environment and keeps
			// its last bound value after the loop ends.
			e.vars[n.Var.Value] = value.Num(r.At(i))
			if _, err := e.exec(n.Body); err != nil {
				return value.Null(), err
			}
		}
		return value.Null(), nil

	case *ast.Block:
		for _, stmt := range n.Statements {
			if _, err := e.exec(stmt); err != nil {
				return value.Null(), err
			}
		}
		return value.Null(), nil

	default:
		return value.Null(), e.errorAt(TypeError, node.Pos(), "unexpected node %T", node)
	}
}

// execCall evaluates the call's arguments in call-site written order, binds
// them against the builtin's parameter list and dispatches.
func (e *Engine) execCall(n *ast.Call) (value.Value, error) {
	var positional []value.Value
	var named []namedArg
	for _, a := range n.Args {
		v, err := e.exec(a.Value)
		if err != nil {
			return value.Null(), err
		}
		if a.Named() {
			named = append(named, namedArg{name: a.Name.Value, val: v})
		} else {
			positional = append(positional, v)
		}
	}

	b, ok := e.builtins[n.Ident.Value]
	if !ok {
		msg := "function not found: " + n.Ident.Value
		if match := findClosestMatch(n.Ident.Value, e.builtinNames); match != "" {
			msg += " (did you mean '" + match + "'?)"
		}
		return value.Null(), e.errorAt(NameError, n.Ident.Pos, "%s", msg)
	}

	e.logger.Debug("call", "builtin", b.name, "positional", len(positional), "named", len(named))

	bound, err := bindArgs(b.name, b.params, positional, named)
	if err != nil {
		return value.Null(), e.stamp(err, n.Ident.Pos)
	}
	ret, err := b.fn(e, bound)
	if err != nil {
		return value.Null(), e.stamp(err, n.Ident.Pos)
	}
	return ret, nil
}

// opFor maps an operator token to the value-level operator.
func opFor(tt lexer.TokenType) value.Op {
	switch tt {
	case lexer.PLUS:
		return value.OpAdd
	case lexer.MINUS:
		return value.OpSub
	case lexer.MULTIPLY:
		return value.OpMul
	default:
		return value.OpDiv
	}
}
