package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// word is one G-code word: a letter and a numeric value. G and M words are
// command words; all others carry axis, offset, feed or speed values.
type word struct {
	letter byte
	value  float64
}

func gWord(n int) word { return word{letter: 'G', value: float64(n)} }
func mWord(n int) word { return word{letter: 'M', value: float64(n)} }

func (w word) isCommand() bool {
	return w.letter == 'G' || w.letter == 'M'
}

func (w word) String() string {
	switch w.letter {
	case 'G':
		return fmt.Sprintf("G%d", int(w.value))
	case 'M':
		return fmt.Sprintf("M%02d", int(w.value))
	default:
		return string(w.letter) + formatNumber(w.value)
	}
}

// formatNumber renders a coordinate or feed value with three decimals, then
// strips trailing zeros and a dangling decimal point.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// Transform is a 2D affine transform applied to every programmed X/Y
// coordinate. Z and feed values are never transformed.
type Transform struct {
	XX, XY, TX float64
	YX, YY, TY float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{XX: 1, YY: 1}
}

// Scaling returns a non-uniform scaling transform.
func Scaling(sx, sy float64) Transform {
	return Transform{XX: sx, YY: sy}
}

// Apply transforms the point (x, y).
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.XX*x + t.XY*y + t.TX, t.YX*x + t.YY*y + t.TY
}
