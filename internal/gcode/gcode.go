// Package gcode holds the machining back end: live cutter parameters, a 2D
// coordinate transform, and the modal emission state machine that writes
// position-diffed G-code lines to an output stream.
//
// Emission is modal: a command word, axis value, feed or spindle speed is
// written only when it differs from the last value the machine was given.
// Lines that would move nothing are suppressed entirely. Diffing happens
// against live tracked state as each move is decided, not as a second pass.
package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Retract is the Z safety margin, in millimetres, left between pocketing
// passes.
const Retract = 0.25

var (
	// ErrNoCurrentPosition is returned when an arc is requested before the
	// machine has a known X/Y position to express I/J offsets against.
	ErrNoCurrentPosition = errors.New("cannot generate G3 arc without current position")

	// ErrPocketTooSmall is returned when a pocket diameter does not exceed
	// the cutter diameter.
	ErrPocketTooSmall = errors.New("diameter must be greater than cutter diameter")
)

// lineClass decides when a fully diffed line still has to say something to be
// worth emitting.
type lineClass int

const (
	classOther   lineClass = iota // emitted whenever any word survives
	classMove                     // needs a surviving X, Y or Z word
	classSpindle                  // needs a surviving S word
)

// State is the G-code emission state machine. All lengths are millimetres.
// It is owned by a single compilation run and written to exactly once.
type State struct {
	Stepover       float64
	DepthPerPass   float64
	FeedRate       float64
	PlungeRate     float64
	CutterDiameter float64

	// Transform is applied to every programmed X/Y pair. Identity until a
	// scale() call replaces it.
	Transform Transform

	w          *bufio.Writer
	lastCmd    word
	hasLastCmd bool
	known      map[byte]float64 // last written value per word letter
}

// NewState creates an emission state writing to w.
func NewState(w io.Writer) *State {
	return &State{
		Transform: Identity(),
		w:         bufio.NewWriter(w),
		known:     make(map[byte]float64),
	}
}

// emit writes one diffed G-code line. A G53 word disables value diffing for
// the rest of the line, resets the modal command, and invalidates the tracked
// state of every value the line touches (the machine coordinate system is
// unknown to us).
func (s *State) emit(class lineClass, words ...word) error {
	g53 := false
	var pieces []word

	for _, w := range words {
		if w.isCommand() {
			if w.letter == 'G' && int(w.value) == 53 {
				g53 = true
				s.hasLastCmd = false
			}
			if !s.hasLastCmd || s.lastCmd != w {
				pieces = append(pieces, w)
			}
			continue
		}
		if g53 {
			pieces = append(pieces, w)
		} else if v, ok := s.known[w.letter]; !ok || v != w.value {
			pieces = append(pieces, w)
		}
	}

	// Skip the line when it says nothing, or nothing that matters.
	if len(pieces) == 0 {
		return nil
	}
	switch class {
	case classMove:
		if !anyLetter(pieces, 'X', 'Y', 'Z') {
			return nil
		}
	case classSpindle:
		if !anyLetter(pieces, 'S') {
			return nil
		}
	}

	parts := make([]string, len(pieces))
	for i, w := range pieces {
		parts[i] = w.String()
	}
	if _, err := s.w.WriteString(strings.Join(parts, " ") + "\n"); err != nil {
		return err
	}

	// Update tracked state from the words as written.
	for _, w := range pieces {
		if w.isCommand() {
			if !g53 {
				s.lastCmd = w
				s.hasLastCmd = true
			}
		} else if !g53 {
			s.known[w.letter] = w.value
		} else {
			delete(s.known, w.letter)
		}
	}
	return nil
}

func anyLetter(words []word, letters ...byte) bool {
	for _, w := range words {
		for _, l := range letters {
			if w.letter == l {
				return true
			}
		}
	}
	return false
}

// WriteHeader emits the fixed program prologue: absolute distance mode, metric
// units, a comment, an absolute-machine-coordinate rapid retract of Z to
// -5 mm, and spindle stop. This establishes a known safe starting state.
func (s *State) WriteHeader() error {
	if err := s.emit(classOther, gWord(90)); err != nil {
		return err
	}
	if err := s.emit(classOther, gWord(21)); err != nil {
		return err
	}
	if err := s.WriteComment("Move to safe Z"); err != nil {
		return err
	}
	if err := s.emit(classOther, gWord(53), gWord(0), word{'Z', -5.0}); err != nil {
		return err
	}
	return s.emit(classOther, mWord(5))
}

// SetRPM issues spindle-on clockwise at the given speed.
func (s *State) SetRPM(rpm float64) error {
	return s.emit(classSpindle, mWord(3), word{'S', rpm})
}

// WriteComment emits a parenthesized comment line. Comments bypass modal
// diffing entirely.
func (s *State) WriteComment(comment string) error {
	_, err := fmt.Fprintf(s.w, "(%s)\n", comment)
	return err
}

// RapidMove emits a rapid move to (x, y).
func (s *State) RapidMove(x, y float64) error {
	tx, ty := s.Transform.Apply(x, y)
	return s.emit(classMove, gWord(0), word{'X', tx}, word{'Y', ty})
}

// RapidMoveZ emits a rapid move to (x, y, z).
func (s *State) RapidMoveZ(x, y, z float64) error {
	tx, ty := s.Transform.Apply(x, y)
	return s.emit(classMove, gWord(0), word{'X', tx}, word{'Y', ty}, word{'Z', z})
}

// CuttingMove emits a feed-rate move to (x, y).
func (s *State) CuttingMove(x, y float64) error {
	tx, ty := s.Transform.Apply(x, y)
	return s.emit(classMove, gWord(1), word{'X', tx}, word{'Y', ty}, word{'F', s.FeedRate})
}

// Plunge emits a Z-only feed move at the plunge rate.
func (s *State) Plunge(z float64) error {
	return s.emit(classMove, gWord(1), word{'Z', z}, word{'F', s.PlungeRate})
}

// ArcCut emits a counter-clockwise arc to (x, y) around center (cx, cy). The
// center is expressed as I/J offsets from the current position, so the
// current X/Y must be known.
func (s *State) ArcCut(x, y, cx, cy float64) error {
	curX, okX := s.known['X']
	curY, okY := s.known['Y']
	if !okX || !okY {
		return ErrNoCurrentPosition
	}

	tx, ty := s.Transform.Apply(x, y)
	tcx, tcy := s.Transform.Apply(cx, cy)
	return s.emit(classMove,
		gWord(3),
		word{'X', tx}, word{'Y', ty},
		word{'I', tcx - curX}, word{'J', tcy - curY},
		word{'F', s.FeedRate})
}

// Finish emits the program-end instruction and flushes the output stream.
func (s *State) Finish() error {
	if err := s.emit(classOther, mWord(2)); err != nil {
		return err
	}
	return s.w.Flush()
}
