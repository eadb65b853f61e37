package engine

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcad-lang/gcad/internal/number"
	"github.com/gcad-lang/gcad/internal/value"
)

// testPreset registers a material with round numbers so expected feeds and
// speeds are easy to read in golden output.
const testPreset = "define_material('test', 3, 2, 600, 200, 10000)\n" +
	"material('test')\n" +
	"cutter_diameter(6mm)\n"

// compile runs a script through the full pipeline and returns the G-code.
func compile(t *testing.T, script string) string {
	t.Helper()
	var buf bytes.Buffer
	e := New(&buf, false)
	require.NoError(t, e.WriteHeader())
	require.NoError(t, e.Run(script))
	require.NoError(t, e.Finish())
	return buf.String()
}

// runError runs a script without the header and returns its script error.
func runError(t *testing.T, script string) *Error {
	t.Helper()
	e := New(io.Discard, false)
	err := e.Run(script)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	return se
}

func TestCompileDrill(t *testing.T) {
	got := compile(t, testPreset+"drill(0mm, 0mm, 5mm)")

	want := strings.Join([]string{
		"G90",
		"G21",
		"(Move to safe Z)",
		"G53 G0 Z-5",
		"M05",
		"M03 S10000",
		"G0 X0 Y0",
		"Z0.25",
		"G1 Z-5 F200",
		"G0 Z5",
		"M02",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileDrillLoop(t *testing.T) {
	got := compile(t, testPreset+
		"for i in linspace(0mm, 10mm, 3) { drill(i, 0mm, 1mm) }")

	// Repeated cycles shrink to the words that changed: after the first hole
	// only the new X, the approach Z and the plunge Z are restated.
	want := strings.Join([]string{
		"G90",
		"G21",
		"(Move to safe Z)",
		"G53 G0 Z-5",
		"M05",
		"M03 S10000",
		"G0 X0 Y0",
		"Z0.25",
		"G1 Z-1 F200",
		"G0 Z5",
		"X5",
		"Z0.25",
		"G1 Z-1",
		"G0 Z5",
		"X10",
		"Z0.25",
		"G1 Z-1",
		"G0 Z5",
		"M02",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileScale(t *testing.T) {
	got := compile(t, testPreset+"scale(2, 1)\ndrill(1mm, 1mm, 1mm)")
	assert.Contains(t, got, "G0 X2 Y1")
}

func TestCompileContourLineUp(t *testing.T) {
	got := compile(t, testPreset+"contour_line(0mm, 0mm, depth=2mm, up=10mm)")
	assert.Contains(t, got, "Y10 F600")
}

func TestCompileCirclePocketRadius(t *testing.T) {
	got := compile(t, testPreset+"circle_pocket(0mm, 0mm, radius=5mm, depth=2mm)")
	assert.Contains(t, got, "G3")
}

func TestCompileComment(t *testing.T) {
	got := compile(t, "comment('flip the stock here')")
	assert.Contains(t, got, "(flip the stock here)")
}

func TestBuiltinMaterialsScript(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run(BuiltinMaterials))
	require.NoError(t, e.Run("material('aluminum')"))

	assert.Equal(t, 1.5, e.gcode.Stepover)
	assert.Equal(t, 0.8, e.gcode.DepthPerPass)
	assert.Equal(t, 300.0, e.gcode.FeedRate)
	assert.Equal(t, 100.0, e.gcode.PlungeRate)
}

func TestVariablesAndArithmetic(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run("x = 2mm + 1cm\ny = x / 2"))

	assert.Equal(t, value.Num(number.FromFloatUnit(12, number.MM)), e.vars["x"])
	assert.Equal(t, value.Num(number.FromFloatUnit(6, number.MM)), e.vars["y"])
}

func TestAssignmentIsAnExpression(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run("x = y = 3"))

	assert.Equal(t, value.Num(number.FromInt(3)), e.vars["x"])
	assert.Equal(t, value.Num(number.FromInt(3)), e.vars["y"])
}

func TestLoopVariableOutlivesLoop(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run("for i in linspace(1, 3, 3) { x = i }"))

	assert.Equal(t, value.Num(number.FromFloat(3)), e.vars["i"])
	assert.Equal(t, value.Num(number.FromFloat(3)), e.vars["x"])
}

func TestLinspace(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run("r = linspace(0, 10, 5)"))

	r, err := e.vars["r"].Range()
	require.NoError(t, err)
	assert.Equal(t, 5, r.Count)
	want := []float64{0, 2.5, 5, 7.5, 10}
	for i, w := range want {
		assert.Equal(t, w, r.At(i).Float(), "element %d", i)
	}
}

func TestLinspaceUnits(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run("r = linspace(0mm, 1cm, 3)"))

	r, err := e.vars["r"].Range()
	require.NoError(t, err)
	assert.Equal(t, 3, r.Count)
	assert.Equal(t, number.FromFloatUnit(5, number.MM), r.At(1))
	assert.Equal(t, number.FromFloatUnit(10, number.MM), r.At(2))
}

func TestLinspaceSingleElement(t *testing.T) {
	// num=1 produces a division by zero in the step; the resulting NaN is
	// deliberately not masked.
	e := New(io.Discard, false)
	require.NoError(t, e.Run("r = linspace(0, 10, 1)"))

	r, err := e.vars["r"].Range()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count)
	assert.True(t, math.IsNaN(r.At(0).Float()))
}

func TestLinspaceErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		kind    ErrorKind
		message string
	}{
		{"num with unit", "linspace(0, 10, 3mm)", UnitError, "num must not have a unit"},
		{"stop missing unit", "linspace(0mm, 10, 3)", UnitError, "stop must have a unit if start has a unit"},
		{"start missing unit", "linspace(0, 10mm, 3)", UnitError, "start must have a unit if stop has a unit"},
		{"num not integer", "linspace(0, 10, 2.5)", TypeError, "num argument must be an integer"},
		{"num zero", "linspace(0, 10, 0)", ArgumentError, "num argument must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := runError(t, tt.script)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestUnknownFunctionSuggestion(t *testing.T) {
	se := runError(t, "dril(1mm, 2mm, 3mm)")
	assert.Equal(t, NameError, se.Kind)
	assert.Equal(t, "function not found: dril (did you mean 'drill'?)", se.Message)
}

func TestUnknownFunctionNoSuggestion(t *testing.T) {
	se := runError(t, "zzz()")
	assert.Equal(t, NameError, se.Kind)
	assert.Equal(t, "function not found: zzz", se.Message)
}

func TestUnknownMaterialSuggestion(t *testing.T) {
	e := New(io.Discard, false)
	require.NoError(t, e.Run(BuiltinMaterials))

	err := e.Run("material('alu')")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, NameError, se.Kind)
	assert.Equal(t, "unknown material: alu (did you mean 'aluminum'?)", se.Message)
}

func TestVariableNotFound(t *testing.T) {
	se := runError(t, "drill(q, 1mm, 1mm)")
	assert.Equal(t, NameError, se.Kind)
	assert.Equal(t, "variable not found: q", se.Message)
}

func TestBinaryTypeMismatch(t *testing.T) {
	se := runError(t, "x = 'a' + 1")
	assert.Equal(t, TypeError, se.Kind)
	assert.Equal(t, "cannot apply '+' to string and number", se.Message)
}

func TestForLoopRequiresRange(t *testing.T) {
	se := runError(t, "for i in 5 { }")
	assert.Equal(t, TypeError, se.Kind)
	assert.Equal(t, "for-loop requires a range, got number", se.Message)
}

func TestUnitErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		message string
	}{
		{"drill without units", "drill(1, 2, 3)", "all arguments must have a unit"},
		{"cutter diameter without unit", "cutter_diameter(6)", "diameter must have a unit"},
		{"rpm with unit", "rpm(100mm)", "rpm must not have a unit"},
		{"scale with unit", "scale(2mm, 1)", "all arguments must not have a unit"},
		{"preset field with unit", "define_material('t', 3mm, 2, 1, 1, 1)", "stepover must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := runError(t, tt.script)
			assert.Equal(t, UnitError, se.Kind)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestContourLineNeedsEndpoint(t *testing.T) {
	se := runError(t, "contour_line(0mm, 0mm, depth=1mm)")
	assert.Equal(t, ArgumentError, se.Kind)
	assert.Equal(t, "either x2/y2 must be specified or another argument like up", se.Message)
}

func TestCirclePocketNeedsSize(t *testing.T) {
	se := runError(t, "circle_pocket(0mm, 0mm, depth=1mm)")
	assert.Equal(t, ArgumentError, se.Kind)
	assert.Equal(t, "either diameter or radius must be specified", se.Message)
}

func TestCirclePocketTooSmallIsDomainError(t *testing.T) {
	se := runError(t, testPreset+"circle_pocket(0mm, 0mm, diameter=6mm, depth=1mm)")
	assert.Equal(t, DomainError, se.Kind)
	assert.Equal(t, "diameter must be greater than cutter diameter", se.Message)
}

func TestBuiltinErrorsCarryCallPosition(t *testing.T) {
	se := runError(t, "drill(1, 2, 3)")

	// The unit check fires inside the builtin; the reported position must be
	// the call site.
	assert.Equal(t, 1, se.Pos.Line)
	assert.Equal(t, 1, se.Pos.Column)
	assert.Contains(t, se.Error(), "--> 1:1")
	assert.Contains(t, se.Error(), " 1 | drill(1, 2, 3)")
}
