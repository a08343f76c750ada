package models

import "gonum.org/v1/gonum/spatial/r3"

// line is v = slope·h + b through two lattice points of a plane.
type line struct {
	slope, b float64
	h        float64
	vertical bool
}

func fit(h0, v0, h1, v1 float64) line {
	dh := h1 - h0
	if dh == 0 {
		return line{h: h0, vertical: true}
	}
	slope := (v1 - v0) / dh
	return line{slope: slope, b: v0 - slope*h0}
}

// clip extends the line to h = hBound, stopping early where it leaves
// through the top or bottom edge.
func (l line) clip(hBound, vLow, vHigh float64) (float64, float64) {
	if l.slope == 0 {
		return hBound, l.b
	}
	v := l.slope*hBound + l.b
	switch {
	case v > 0 && v >= vHigh:
		return (vHigh - l.b) / l.slope, vHigh
	case v < 0 && v <= vLow:
		return (vLow - l.b) / l.slope, vLow
	}
	return hBound, v
}

// IsoLines draws one segment per field offset shared by at least two
// samples, running through the first and last of them in sampling order and
// extended to the edges of the plane's rectangle.
func IsoLines(samples []Sample, pl Plane) []Segment {
	hc := Coords(pl.Horizontal)
	vc := Coords(pl.Vertical)
	hLow, hHigh := hc[0], hc[len(hc)-1]
	vLow, vHigh := vc[0], vc[len(vc)-1]

	order := make([]float64, 0)
	groups := make(map[float64][]r3.Vec)
	for _, s := range samples {
		if _, ok := groups[s.Offset]; !ok {
			order = append(order, s.Offset)
		}
		groups[s.Offset] = append(groups[s.Offset], s.Position)
	}

	point := func(h, v float64) r3.Vec {
		var p r3.Vec
		place(&p, pl.Horizontal, h)
		place(&p, pl.Vertical, v)
		return p
	}

	segments := make([]Segment, 0, len(order))
	for _, offset := range order {
		positions := groups[offset]
		if len(positions) < 2 {
			continue
		}
		first, last := positions[0], positions[len(positions)-1]
		fh, fv := Project(first, pl.Horizontal), Project(first, pl.Vertical)
		lh, lv := Project(last, pl.Horizontal), Project(last, pl.Vertical)
		ln := fit(fh, fv, lh, lv)

		startAt := func() r3.Vec { return point(ln.clip(hLow, vLow, vHigh)) }
		endAt := func() r3.Vec { return point(ln.clip(hHigh, vLow, vHigh)) }

		seg := Segment{Offset: offset}
		switch {
		case (fh == hLow && lh == hHigh) || (fv == vLow && lv == vHigh):
			seg.Case, seg.Start, seg.End = 1, first, last
		case fh != hLow && lh == hHigh:
			seg.Case, seg.Start, seg.End = 2, startAt(), last
		case fh == hLow && lh != hHigh:
			seg.Case, seg.Start, seg.End = 3, first, endAt()
		default:
			seg.Case, seg.Start, seg.End = 4, startAt(), endAt()
		}
		// constant h spans the full vertical extent, in sampling direction
		if ln.vertical {
			seg.Start, seg.End = point(fh, vLow), point(lh, vHigh)
			if fv > lv {
				seg.Start, seg.End = point(fh, vHigh), point(lh, vLow)
			}
		}
		segments = append(segments, seg)
	}
	return segments
}
