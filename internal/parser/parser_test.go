package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcad-lang/gcad/internal/ast"
)

// parseDump parses input and renders the tree, which pins both shape and
// literal values in one comparison.
func parseDump(t *testing.T, input string) string {
	t.Helper()
	prog, err := New(input).Parse()
	require.NoError(t, err)
	return ast.Dump(prog)
}

func TestParsePrecedence(t *testing.T) {
	got := parseDump(t, "x = 1 + 2 * 3")
	want := strings.Join([]string{
		"program",
		"|----assign: x",
		"|    |----binary: +",
		"|    |    |----number: 1",
		"|    |    |----binary: *",
		"|    |    |    |----number: 2",
		"|    |    |    |----number: 3",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	got := parseDump(t, "(1 + 2) * 3")
	want := strings.Join([]string{
		"program",
		"|----binary: *",
		"|    |----binary: +",
		"|    |    |----number: 1",
		"|    |    |----number: 2",
		"|    |----number: 3",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	// 10 - 2 - 3 must group as (10 - 2) - 3.
	got := parseDump(t, "10 - 2 - 3")
	want := strings.Join([]string{
		"program",
		"|----binary: -",
		"|    |----binary: -",
		"|    |    |----number: 10",
		"|    |    |----number: 2",
		"|    |----number: 3",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnaryMinus(t *testing.T) {
	got := parseDump(t, "-5mm")
	want := strings.Join([]string{
		"program",
		"|----unary: -",
		"|    |----number: 5mm",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCallWithNamedArguments(t *testing.T) {
	got := parseDump(t, "drill(1mm, y=2mm, depth=3mm)")
	want := strings.Join([]string{
		"program",
		"|----call: drill",
		"|    |----number: 1mm",
		"|    |----named: y",
		"|    |    |----number: 2mm",
		"|    |----named: depth",
		"|    |    |----number: 3mm",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseForLoop(t *testing.T) {
	got := parseDump(t, "for i in linspace(0, 10, 5) { drill(i, 0mm, 1mm) }")
	want := strings.Join([]string{
		"program",
		"|----for: i",
		"|    |----call: linspace",
		"|    |    |----number: 0",
		"|    |    |----number: 10",
		"|    |    |----number: 5",
		"|    |----block",
		"|    |    |----call: drill",
		"|    |    |    |----ident: i",
		"|    |    |    |----number: 0mm",
		"|    |    |    |----number: 1mm",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSemicolonSeparators(t *testing.T) {
	prog, err := New("a = 1; b = 2;; c = 3").Parse()
	require.NoError(t, err)
	assert.Len(t, prog.Statements, 3)
}

func TestParseEmptyCall(t *testing.T) {
	prog, err := New("end_mill()").Parse()
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	call, ok := prog.Statements[0].(*ast.Call)
	require.True(t, ok)
	assert.Empty(t, call.Args)
}

func TestParseStringEscape(t *testing.T) {
	prog, err := New("material('it''s oak')").Parse()
	require.NoError(t, err)
	call := prog.Statements[0].(*ast.Call)
	lit := call.Args[0].Value.(*ast.StringLit)
	assert.Equal(t, "it's oak", lit.Value)
}

func TestParseUnclosedCall(t *testing.T) {
	_, err := New("drill(1mm").Parse()
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorUnexpected, pe.Type)
	assert.Contains(t, pe.Message, "expected ',' or ')'")
}

func TestParseForLoopErrors(t *testing.T) {
	_, err := New("for x linspace(0, 1, 2) { }").Parse()
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "expected 'in'")

	_, err = New("for i in x {").Parse()
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorMissing, pe.Type)
	assert.Contains(t, pe.Message, "'}' to close block")
}

func TestParseIllegalToken(t *testing.T) {
	_, err := New("x = 5km").Parse()
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorSyntax, pe.Type)
	assert.Contains(t, pe.Message, "invalid token '5km'")
}

func TestParseErrorSnippet(t *testing.T) {
	_, err := New("x = )").Parse()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "--> 1:5")
	assert.Contains(t, msg, " 1 | x = )")
	assert.Contains(t, msg, "    ^")
}
