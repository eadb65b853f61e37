package engine

import (
	"errors"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gcad-lang/gcad/internal/gcode"
	"github.com/gcad-lang/gcad/internal/number"
	"github.com/gcad-lang/gcad/internal/value"
)

// builtin is one callable script function: its declared parameter list and
// the implementation operating on bound arguments.
type builtin struct {
	name   string
	params []ParamSpec
	fn     func(e *Engine, args *boundArgs) (value.Value, error)
}

// builtinTable declares every builtin in registration order. The order also
// feeds the "did you mean" candidate list.
func builtinTable() []*builtin {
	return []*builtin{
		{
			name:   "rpm",
			params: []ParamSpec{{Name: "rpm", Required: true}},
			fn:     (*Engine).builtinRPM,
		},
		{
			name:   "material",
			params: []ParamSpec{{Name: "name", Required: true}},
			fn:     (*Engine).builtinMaterial,
		},
		{
			name:   "cutter_diameter",
			params: []ParamSpec{{Name: "diameter", Required: true}},
			fn:     (*Engine).builtinCutterDiameter,
		},
		{
			name: "contour_line",
			params: []ParamSpec{
				{Name: "x1", Required: true},
				{Name: "y1", Required: true},
				{Name: "x2"},
				{Name: "y2"},
				{Name: "depth", Required: true},
				{Name: "up"},
			},
			fn: (*Engine).builtinContourLine,
		},
		{
			name: "drill",
			params: []ParamSpec{
				{Name: "x", Required: true},
				{Name: "y", Required: true},
				{Name: "depth", Required: true},
			},
			fn: (*Engine).builtinDrill,
		},
		{
			name: "circle_pocket",
			params: []ParamSpec{
				{Name: "cx", Required: true},
				{Name: "cy", Required: true},
				{Name: "diameter"},
				{Name: "radius"},
				{Name: "depth", Required: true},
			},
			fn: (*Engine).builtinCirclePocket,
		},
		{
			name: "groove_pocket",
			params: []ParamSpec{
				{Name: "x", Required: true},
				{Name: "y", Required: true},
				{Name: "width", Required: true},
				{Name: "height", Required: true},
				{Name: "depth", Required: true},
			},
			fn: (*Engine).builtinGroovePocket,
		},
		{
			name: "define_material",
			params: []ParamSpec{
				{Name: "name", Required: true},
				{Name: "stepover", Required: true},
				{Name: "depth_per_pass", Required: true},
				{Name: "feed_rate", Required: true},
				{Name: "plunge_rate", Required: true},
				{Name: "rpm", Required: true},
			},
			fn: (*Engine).builtinDefineMaterial,
		},
		{
			name:   "comment",
			params: []ParamSpec{{Name: "text", Required: true}},
			fn:     (*Engine).builtinComment,
		},
		{
			name: "linspace",
			params: []ParamSpec{
				{Name: "start", Required: true},
				{Name: "stop", Required: true},
				{Name: "num", Required: true},
			},
			fn: (*Engine).builtinLinspace,
		},
		{
			name: "scale",
			params: []ParamSpec{
				{Name: "x", Required: true},
				{Name: "y", Required: true},
			},
			fn: (*Engine).builtinScale,
		},
	}
}

// findClosestMatch finds the closest candidate name using fuzzy matching, or
// "" when nothing comes close.
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		return ranks[0].Target
	}
	return ""
}

// wrapGcodeErr classifies an error coming back from the G-code back end:
// geometric impossibilities are DomainErrors, anything else failed the output
// stream.
func wrapGcodeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gcode.ErrPocketTooSmall) || errors.Is(err, gcode.ErrNoCurrentPosition) {
		return scriptErrorf(DomainError, "%s", err.Error())
	}
	return scriptErrorf(IOError, "writing output: %s", err.Error())
}

// requireUnits fails with a UnitError unless every given number carries a
// unit. All dimensioned builtin arguments go through this gate before being
// converted to millimetres.
func requireUnits(nums ...number.Number) error {
	for _, n := range nums {
		if n.Unit() == number.None {
			return scriptErrorf(UnitError, "all arguments must have a unit")
		}
	}
	return nil
}

func (e *Engine) builtinRPM(args *boundArgs) (value.Value, error) {
	n, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	rpm, err := n.AsFloat()
	if err != nil {
		return value.Null(), scriptErrorf(UnitError, "rpm must not have a unit")
	}

	if err := e.gcode.SetRPM(rpm); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinMaterial(args *boundArgs) (value.Value, error) {
	name, err := args.text(0)
	if err != nil {
		return value.Null(), err
	}

	m, ok := e.materials[name]
	if !ok {
		msg := "unknown material: " + name
		if match := findClosestMatch(name, e.materialNames()); match != "" {
			msg += " (did you mean '" + match + "'?)"
		}
		return value.Null(), scriptErrorf(NameError, "%s", msg)
	}

	e.gcode.Stepover = m.Stepover
	e.gcode.DepthPerPass = m.DepthPerPass
	e.gcode.FeedRate = m.FeedRate
	e.gcode.PlungeRate = m.PlungeRate
	if err := e.gcode.SetRPM(m.RPM); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinCutterDiameter(args *boundArgs) (value.Value, error) {
	d, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	if d.Unit() == number.None {
		return value.Null(), scriptErrorf(UnitError, "diameter must have a unit")
	}

	e.gcode.CutterDiameter = d.MM()
	return value.Null(), nil
}

func (e *Engine) builtinContourLine(args *boundArgs) (value.Value, error) {
	x1, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	y1, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}
	x2, err := args.optNumber(2)
	if err != nil {
		return value.Null(), err
	}
	y2, err := args.optNumber(3)
	if err != nil {
		return value.Null(), err
	}
	depth, err := args.number(4)
	if err != nil {
		return value.Null(), err
	}
	up, err := args.optNumber(5)
	if err != nil {
		return value.Null(), err
	}

	var ex2, ey2 number.Number
	switch {
	case up != nil:
		if up.Unit() == number.None {
			return value.Null(), scriptErrorf(UnitError, "up must have a unit")
		}
		ex2, ey2 = x1, y1.Add(*up)
	case x2 != nil && y2 != nil:
		ex2, ey2 = *x2, *y2
	default:
		return value.Null(), scriptErrorf(ArgumentError, "either x2/y2 must be specified or another argument like up")
	}

	if err := requireUnits(x1, y1, ex2, ey2, depth); err != nil {
		return value.Null(), err
	}

	if err := e.gcode.ContourLine(x1.MM(), y1.MM(), ex2.MM(), ey2.MM(), depth.MM()); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinDrill(args *boundArgs) (value.Value, error) {
	x, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	y, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}
	depth, err := args.number(2)
	if err != nil {
		return value.Null(), err
	}
	if err := requireUnits(x, y, depth); err != nil {
		return value.Null(), err
	}

	if err := e.gcode.Drill(x.MM(), y.MM(), depth.MM()); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinCirclePocket(args *boundArgs) (value.Value, error) {
	cx, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	cy, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}
	diameter, err := args.optNumber(2)
	if err != nil {
		return value.Null(), err
	}
	radius, err := args.optNumber(3)
	if err != nil {
		return value.Null(), err
	}
	depth, err := args.number(4)
	if err != nil {
		return value.Null(), err
	}

	var d number.Number
	switch {
	case diameter != nil:
		d = *diameter
	case radius != nil:
		d = radius.Mul(number.FromFloat(2))
	default:
		return value.Null(), scriptErrorf(ArgumentError, "either diameter or radius must be specified")
	}

	if err := requireUnits(cx, cy, d, depth); err != nil {
		return value.Null(), err
	}

	if err := e.gcode.CirclePocket(cx.MM(), cy.MM(), d.MM(), depth.MM()); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinGroovePocket(args *boundArgs) (value.Value, error) {
	x, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	y, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}
	width, err := args.number(2)
	if err != nil {
		return value.Null(), err
	}
	height, err := args.number(3)
	if err != nil {
		return value.Null(), err
	}
	depth, err := args.number(4)
	if err != nil {
		return value.Null(), err
	}
	if err := requireUnits(x, y, width, height, depth); err != nil {
		return value.Null(), err
	}

	if err := e.gcode.GroovePocket(x.MM(), y.MM(), width.MM(), height.MM(), depth.MM()); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinDefineMaterial(args *boundArgs) (value.Value, error) {
	name, err := args.text(0)
	if err != nil {
		return value.Null(), err
	}

	// All preset parameters are unitless by contract.
	fields := [...]string{"stepover", "depth_per_pass", "feed_rate", "plunge_rate", "rpm"}
	var vals [len(fields)]float64
	for i, field := range fields {
		n, err := args.number(i + 1)
		if err != nil {
			return value.Null(), err
		}
		f, err := n.AsFloat()
		if err != nil {
			return value.Null(), scriptErrorf(UnitError, "%s must be a number", field)
		}
		vals[i] = f
	}

	e.materials[name] = Material{
		Stepover:     vals[0],
		DepthPerPass: vals[1],
		FeedRate:     vals[2],
		PlungeRate:   vals[3],
		RPM:          vals[4],
	}
	return value.Null(), nil
}

func (e *Engine) builtinComment(args *boundArgs) (value.Value, error) {
	text, err := args.text(0)
	if err != nil {
		return value.Null(), err
	}
	if err := e.gcode.WriteComment(text); err != nil {
		return value.Null(), wrapGcodeErr(err)
	}
	return value.Null(), nil
}

func (e *Engine) builtinLinspace(args *boundArgs) (value.Value, error) {
	start, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	stop, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}
	num, err := args.number(2)
	if err != nil {
		return value.Null(), err
	}

	if num.Unit() != number.None {
		return value.Null(), scriptErrorf(UnitError, "num must not have a unit")
	}
	if start.Unit() == number.None && stop.Unit() != number.None {
		return value.Null(), scriptErrorf(UnitError, "start must have a unit if stop has a unit")
	}
	if start.Unit() != number.None && stop.Unit() == number.None {
		return value.Null(), scriptErrorf(UnitError, "stop must have a unit if start has a unit")
	}

	n, err := num.AsInt()
	if err != nil {
		return value.Null(), scriptErrorf(TypeError, "num argument must be an integer")
	}
	if n < 1 {
		return value.Null(), scriptErrorf(ArgumentError, "num argument must be a positive integer")
	}

	stop = stop.Convert(start.Unit())
	// num=1 divides by zero here; the Inf/NaN step propagates into the Range
	// rather than being rejected.
	step := stop.Sub(start).Div(number.FromInt(n - 1))

	return value.Rng(value.Range{Start: start, Step: step, Count: int(n)}), nil
}

func (e *Engine) builtinScale(args *boundArgs) (value.Value, error) {
	xn, err := args.number(0)
	if err != nil {
		return value.Null(), err
	}
	yn, err := args.number(1)
	if err != nil {
		return value.Null(), err
	}

	x, err := xn.AsFloat()
	if err != nil {
		return value.Null(), scriptErrorf(UnitError, "all arguments must not have a unit")
	}
	y, err := yn.AsFloat()
	if err != nil {
		return value.Null(), scriptErrorf(UnitError, "all arguments must not have a unit")
	}

	e.gcode.Transform = gcode.Scaling(x, y)
	return value.Null(), nil
}
