// Package value implements the script value model: a closed tagged union over
// numbers, strings, lazy ranges and null, with exhaustive per-operator
// matching. Bad operand combinations come back as typed error values, never as
// panics, so script-level mistakes stay recoverable to the caller.
package value

import (
	"fmt"

	"github.com/gcad-lang/gcad/internal/number"
)

// Kind discriminates the value union.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Range is a finite, restartable arithmetic sequence. It is produced only by
// linspace and consumed by for-loops; values are materialized on demand.
type Range struct {
	Start number.Number
	Step  number.Number
	Count int
}

// At returns the i-th element, start + step×i.
func (r Range) At(i int) number.Number {
	return r.Start.Add(r.Step.Mul(number.FromInt(int64(i))))
}

// Value is one script value. The zero Value is Null.
type Value struct {
	kind Kind
	num  number.Number
	str  string
	rng  Range
}

// Null returns the null value, the result of side-effecting builtins.
func Null() Value { return Value{} }

// Num wraps a Number.
func Num(n number.Number) Value { return Value{kind: KindNumber, num: n} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Rng wraps a Range.
func Rng(r Range) Value { return Value{kind: KindRange, rng: r} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// TypeMismatchError reports an operation applied to the wrong variant.
type TypeMismatchError struct {
	What  string // the operator or accessor that failed
	Left  Kind
	Right Kind // KindNull and unused for unary failures
	Unary bool
}

func (e *TypeMismatchError) Error() string {
	if e.Unary {
		return fmt.Sprintf("cannot apply '%s' to %s", e.What, e.Left)
	}
	return fmt.Sprintf("cannot apply '%s' to %s and %s", e.What, e.Left, e.Right)
}

// Number extracts the Number variant.
func (v Value) Number() (number.Number, error) {
	if v.kind != KindNumber {
		return number.Number{}, &TypeMismatchError{What: "number", Left: v.kind, Unary: true}
	}
	return v.num, nil
}

// Text extracts the String variant.
func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", &TypeMismatchError{What: "string", Left: v.kind, Unary: true}
	}
	return v.str, nil
}

// Range extracts the Range variant.
func (v Value) Range() (Range, error) {
	if v.kind != KindRange {
		return Range{}, &TypeMismatchError{What: "range", Left: v.kind, Unary: true}
	}
	return v.rng, nil
}

// Binary applies op to v and o. Arithmetic is defined only between Numbers;
// any other combination is a TypeMismatchError naming the operator.
func (v Value) Binary(op Op, o Value) (Value, error) {
	if v.kind != KindNumber || o.kind != KindNumber {
		return Value{}, &TypeMismatchError{What: op.String(), Left: v.kind, Right: o.kind}
	}
	switch op {
	case OpAdd:
		return Num(v.num.Add(o.num)), nil
	case OpSub:
		return Num(v.num.Sub(o.num)), nil
	case OpMul:
		return Num(v.num.Mul(o.num)), nil
	case OpDiv:
		return Num(v.num.Div(o.num)), nil
	default:
		return Value{}, &TypeMismatchError{What: op.String(), Left: v.kind, Right: o.kind}
	}
}

// Neg negates a Number; anything else is a TypeMismatchError.
func (v Value) Neg() (Value, error) {
	if v.kind != KindNumber {
		return Value{}, &TypeMismatchError{What: "-", Left: v.kind, Unary: true}
	}
	return Num(v.num.Neg()), nil
}

// Pow raises a Number to a Number power.
func (v Value) Pow(o Value) (Value, error) {
	if v.kind != KindNumber || o.kind != KindNumber {
		return Value{}, &TypeMismatchError{What: "pow", Left: v.kind, Right: o.kind}
	}
	return Num(v.num.Pow(o.num)), nil
}

// Factorial applies the factorial to a Number.
func (v Value) Factorial() (Value, error) {
	if v.kind != KindNumber {
		return Value{}, &TypeMismatchError{What: "factorial", Left: v.kind, Unary: true}
	}
	return Num(v.num.Factorial()), nil
}

// Equal reports structural equality. Used by tests via go-cmp.
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindString:
		return "'" + v.str + "'"
	case KindRange:
		return fmt.Sprintf("range(%s, step %s, %d values)", v.rng.Start, v.rng.Step, v.rng.Count)
	default:
		return "null"
	}
}
