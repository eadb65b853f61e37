// Package number implements the unit-aware numeric model for gcad scripts.
//
// A Number is an integer or floating magnitude tagged with an optional length
// unit. All unit conversions go through millimetres as the common base, and
// arithmetic between two Numbers reconciles their units before combining the
// magnitudes.
package number

import (
	"errors"
	"math"
	"strconv"
)

// Unit is a physical length unit, or None for a pure scalar.
type Unit int

const (
	None Unit = iota
	MM
	CM
	M
	IN
	FT
	YD
)

// mmFactor maps every dimensioned unit to its size in millimetres. Conversion
// between any two units is expressed through this table, never pairwise.
var mmFactor = [...]float64{
	MM: 1,
	CM: 10,
	M:  1000,
	IN: 25.4,
	FT: 304.8,
	YD: 914.4,
}

// unitNames holds the two-letter (or one-letter) source suffixes.
var unitNames = [...]string{
	None: "",
	MM:   "mm",
	CM:   "cm",
	M:    "m",
	IN:   "in",
	FT:   "ft",
	YD:   "yd",
}

// ParseUnit maps a source suffix to its Unit. The empty string is None.
func ParseUnit(s string) (Unit, bool) {
	for u, name := range unitNames {
		if s == name {
			return Unit(u), true
		}
	}
	return None, false
}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "?"
}

var (
	// ErrNotScalar is returned by AsFloat for dimensioned numbers. It is the
	// deliberate gate that rejects a unit wherever a pure scalar (rpm,
	// stepover, loop count) is required.
	ErrNotScalar = errors.New("number must not have a unit")

	// ErrNotInteger is returned by AsInt for floating magnitudes.
	ErrNotInteger = errors.New("number must be an integer")
)

// Number is a numeric magnitude tagged with an optional unit.
type Number struct {
	i     int64
	f     float64
	isInt bool
	unit  Unit
}

// FromInt returns a unitless integer Number.
func FromInt(i int64) Number {
	return Number{i: i, isInt: true}
}

// FromFloat returns a unitless floating Number.
func FromFloat(f float64) Number {
	return Number{f: f}
}

// FromIntUnit returns an integer Number tagged with unit.
func FromIntUnit(i int64, unit Unit) Number {
	return Number{i: i, isInt: true, unit: unit}
}

// FromFloatUnit returns a floating Number tagged with unit.
func FromFloatUnit(f float64, unit Unit) Number {
	return Number{f: f, unit: unit}
}

// Unit returns the number's unit tag.
func (n Number) Unit() Unit { return n.unit }

// IsInt reports whether the magnitude is stored as an integer.
func (n Number) IsInt() bool { return n.isInt }

// Float returns the raw magnitude as a float, ignoring the unit.
func (n Number) Float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// AsFloat returns the magnitude only when the number is unitless.
func (n Number) AsFloat() (float64, error) {
	if n.unit != None {
		return 0, ErrNotScalar
	}
	return n.Float(), nil
}

// AsInt returns the magnitude only when it is stored as an integer.
func (n Number) AsInt() (int64, error) {
	if !n.isInt {
		return 0, ErrNotInteger
	}
	return n.i, nil
}

// Convert expresses the number in the target unit. Converting to or from None,
// or to the same unit, leaves the magnitude untouched; a real conversion goes
// through millimetres and promotes to float.
func (n Number) Convert(to Unit) Number {
	if n.unit == None || to == None || n.unit == to {
		n.unit = to
		return n
	}
	mm := n.Float() * mmFactor[n.unit]
	return Number{f: mm / mmFactor[to], unit: to}
}

// MM returns the magnitude expressed in millimetres.
func (n Number) MM() float64 {
	return n.Convert(MM).Float()
}

// reconcile converts both operands to the destination unit for arithmetic:
// the left operand's unit, unless the left operand is unitless.
func reconcile(a, b Number) (Number, Number) {
	dst := a.unit
	if dst == None {
		dst = b.unit
	}
	return a.Convert(dst), b.Convert(dst)
}

// Add returns n + o in the reconciled unit.
func (n Number) Add(o Number) Number {
	a, b := reconcile(n, o)
	if a.isInt && b.isInt {
		return Number{i: a.i + b.i, isInt: true, unit: a.unit}
	}
	return Number{f: a.Float() + b.Float(), unit: a.unit}
}

// Sub returns n - o in the reconciled unit.
func (n Number) Sub(o Number) Number {
	a, b := reconcile(n, o)
	if a.isInt && b.isInt {
		return Number{i: a.i - b.i, isInt: true, unit: a.unit}
	}
	return Number{f: a.Float() - b.Float(), unit: a.unit}
}

// Mul returns n * o in the reconciled unit.
func (n Number) Mul(o Number) Number {
	a, b := reconcile(n, o)
	if a.isInt && b.isInt {
		return Number{i: a.i * b.i, isInt: true, unit: a.unit}
	}
	return Number{f: a.Float() * b.Float(), unit: a.unit}
}

// Div returns n / o in the reconciled unit. Division always promotes to float,
// so an integer zero divisor yields ±Inf or NaN rather than trapping.
func (n Number) Div(o Number) Number {
	a, b := reconcile(n, o)
	return Number{f: a.Float() / b.Float(), unit: a.unit}
}

// Neg returns the number with its magnitude negated.
func (n Number) Neg() Number {
	if n.isInt {
		return Number{i: -n.i, isInt: true, unit: n.unit}
	}
	return Number{f: -n.f, unit: n.unit}
}

// Pow raises n to o's raw magnitude, keeping n's unit. The result stays an
// integer only when both magnitudes are integers and the exponent is
// non-negative; everything else goes through math.Pow. Total: no error cases.
func (n Number) Pow(o Number) Number {
	if n.isInt && o.isInt && o.i >= 0 {
		r := int64(1)
		for k := int64(0); k < o.i; k++ {
			r *= n.i
		}
		return Number{i: r, isInt: true, unit: n.unit}
	}
	return Number{f: math.Pow(n.Float(), o.Float()), unit: n.unit}
}

// Factorial is total over the numeric domain: a non-negative integer yields
// the exact integer product, anything else is evaluated as Gamma(x+1), which
// produces NaN/±Inf at the poles instead of failing. The unit passes through.
func (n Number) Factorial() Number {
	if n.isInt && n.i >= 0 {
		r := int64(1)
		for k := int64(2); k <= n.i; k++ {
			r *= k
		}
		return Number{i: r, isInt: true, unit: n.unit}
	}
	return Number{f: math.Gamma(n.Float() + 1), unit: n.unit}
}

// Equal reports exact equality of representation: magnitude kind, magnitude
// and unit. Used by tests via go-cmp.
func (n Number) Equal(o Number) bool {
	return n == o
}

func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10) + n.unit.String()
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64) + n.unit.String()
}
