package gcode

import "math"

// Drill runs a drill cycle at (x, y): rapid over the hole, rapid down to a
// 0.25 mm approach, plunge to -depth, rapid retract to 5 mm.
func (s *State) Drill(x, y, depth float64) error {
	if err := s.RapidMove(x, y); err != nil {
		return err
	}
	if err := s.RapidMoveZ(x, y, 0.25); err != nil {
		return err
	}
	if err := s.Plunge(-depth); err != nil {
		return err
	}
	return s.RapidMoveZ(x, y, 5.0)
}

// ContourLine cuts a straight line from (x1, y1) to (x2, y2) in
// ceil(depth/depth_per_pass) passes of equal depth. Each pass re-approaches
// the start and re-cuts the whole line at its own Z, then retracts.
func (s *State) ContourLine(x1, y1, x2, y2, depth float64) error {
	nPasses := int(math.Ceil(depth / s.DepthPerPass))

	for layer := 1; layer <= nPasses; layer++ {
		z := -(depth * float64(layer) / float64(nPasses))
		if err := s.RapidMove(x1, y1); err != nil {
			return err
		}
		if err := s.Plunge(z); err != nil {
			return err
		}
		if err := s.CuttingMove(x2, y2); err != nil {
			return err
		}
		if err := s.RapidMoveZ(x2, y2, 5.0); err != nil {
			return err
		}
	}
	return nil
}

// CirclePocket clears a circular pocket centered at (cx, cy) with concentric
// counter-clockwise arc pairs sweeping outward from the center. The diameter
// must exceed the cutter diameter.
func (s *State) CirclePocket(cx, cy, diameter, depth float64) error {
	if diameter <= s.CutterDiameter {
		return ErrPocketTooSmall
	}

	nCircles := int(math.Floor(diameter / s.CutterDiameter))
	nPasses := int(math.Ceil(depth / s.DepthPerPass))
	xOffset := diameter/2 - s.CutterDiameter*float64(nCircles)/2

	if err := s.RapidMove(cx+xOffset, cy); err != nil {
		return err
	}
	if err := s.Plunge(2.5); err != nil {
		return err
	}

	for i := 1; i <= nPasses; i++ {
		if err := s.Plunge(-(depth * float64(i) / float64(nPasses))); err != nil {
			return err
		}

		for j := 1; j <= nCircles; j++ {
			if err := s.ArcCut(cx-xOffset-s.CutterDiameter*float64(j-1)/2, cy, cx, cy); err != nil {
				return err
			}

			if j == nCircles {
				// Close the final radius with a repeated center arc.
				if err := s.ArcCut(cx+xOffset+s.CutterDiameter*float64(j-1)/2, cy, cx, cy); err != nil {
					return err
				}
			} else {
				if err := s.ArcCut(cx+xOffset+s.CutterDiameter*float64(j)/2, cy, cx+s.CutterDiameter/4, cy); err != nil {
					return err
				}
			}
		}

		if i < nPasses {
			// Step back to the start radius for the next pass.
			if err := s.CuttingMove(cx+xOffset, cy); err != nil {
				return err
			}
		}
	}

	return s.RapidMoveZ(cx+xOffset+s.CutterDiameter*float64(nCircles-1)/2, cy, 5.0)
}

// groovePattern builds the spiral rectangular cutting pattern for a pocket
// with lower-left corner (x, y). The loops are generated starting from the
// largest inset rectangle and shrinking by the stepover, then the whole list
// is reversed so the cut begins at the innermost ring's first vertex.
// pattern[0] stays the re-entry point for every Z pass.
func groovePattern(x, y, width, height, cutterDiameter, stepover float64) [][2]float64 {
	cx := x + cutterDiameter/2
	cy := y + cutterDiameter/2
	cw := width - cutterDiameter
	ch := height - cutterDiameter
	nLoops := 1 + int(math.Ceil((width/2-cutterDiameter)/stepover))

	var pattern [][2]float64
	for l := 0; l < nLoops; l++ {
		pattern = append(pattern, [2]float64{cx, cy})
		cx += cw
		pattern = append(pattern, [2]float64{cx, cy})
		cy += ch
		pattern = append(pattern, [2]float64{cx, cy})
		cx -= cw
		pattern = append(pattern, [2]float64{cx, cy})
		cy -= ch
		pattern = append(pattern, [2]float64{cx, cy})

		cx += stepover
		cy += stepover
		cw -= 2 * stepover
		ch -= 2 * stepover
	}

	for i, j := 0, len(pattern)-1; i < j; i, j = i+1, j-1 {
		pattern[i], pattern[j] = pattern[j], pattern[i]
	}
	return pattern
}

// GroovePocket cuts a rectangular pocket with lower-left corner (x, y) by
// tracing the spiral pattern once per Z pass. Between passes the tool
// retracts by the fixed Retract margin above the pass depth; after the last
// pass it retracts to 5 mm. Note that this only handles narrow rectangles
// right now, hence the name groove.
func (s *State) GroovePocket(x, y, width, height, depth float64) error {
	pattern := groovePattern(x, y, width, height, s.CutterDiameter, s.Stepover)
	nPasses := int(math.Ceil(depth / s.DepthPerPass))

	for layer := 1; layer <= nPasses; layer++ {
		z := -(depth * float64(layer) / float64(nPasses))
		px, py := pattern[0][0], pattern[0][1]

		if layer == 1 {
			if err := s.RapidMove(px, py); err != nil {
				return err
			}
			if err := s.RapidMoveZ(px, py, 5.0); err != nil {
				return err
			}
			if err := s.Plunge(z); err != nil {
				return err
			}
		} else {
			if err := s.RapidMove(px, py); err != nil {
				return err
			}
			if err := s.Plunge(z); err != nil {
				return err
			}
		}

		for _, pt := range pattern[1:] {
			if err := s.CuttingMove(pt[0], pt[1]); err != nil {
				return err
			}
		}

		if layer == nPasses {
			if err := s.RapidMoveZ(px, py, 5.0); err != nil {
				return err
			}
		} else {
			if err := s.RapidMoveZ(px, py, z+Retract); err != nil {
				return err
			}
		}
	}
	return nil
}
