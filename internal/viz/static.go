package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrilab/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// gradient lattice coordinates span ±8 along z
const latticeScale = 1.0 / 8

// resample picks n evenly spaced values so a 1000-point grid fits a
// terminal-width plot.
func resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}

// FourierView plots f and s_N over the grid, then the coefficients c_n.
func FourierView(a models.Approximation, width, height int) string {
	var b strings.Builder
	b.WriteString(asciigraph.PlotMany(
		[][]float64{resample(a.F, width), resample(a.S, width)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("f(x)", fmt.Sprintf("s_%d(x)", a.Terms)),
		asciigraph.Caption(fmt.Sprintf("%s on [-2.5, 2.5], max |s_N - f| = %.3f", a.Function, a.MaxError())),
	))
	b.WriteString("\n\n")
	if len(a.Coefficients) > 1 {
		b.WriteString(asciigraph.Plot(a.Coefficients,
			asciigraph.Height(max(3, height/2)),
			asciigraph.Caption(fmt.Sprintf("c_n for n = %d..%d", a.N[0], a.N[len(a.N)-1])),
		))
		b.WriteString("\n")
	}
	return b.String()
}

// GradientScene draws each lattice sample as a z-directed arrow of its
// normalized length. Faded samples become points; iso-lines are segments.
func GradientScene(field models.Field) Scene {
	s := Scene{Axes: 1.2}
	for _, smp := range field.Samples {
		origin := r3.Scale(latticeScale, smp.Position)
		if smp.Emphasis < 1 {
			s.Points = append(s.Points, origin)
			continue
		}
		s.Arrows = append(s.Arrows, Arrow{Origin: origin, Vec: r3.Vec{Z: smp.Length * latticeScale * 2}})
	}
	for _, seg := range field.IsoLines {
		s.Segments = append(s.Segments, [2]r3.Vec{
			r3.Scale(latticeScale, seg.Start),
			r3.Scale(latticeScale, seg.End),
		})
	}
	return s
}

// GradientView renders a gradient field with its classification and the
// iso-line offsets.
func GradientView(field models.Field, cam *Camera) string {
	if cam == nil {
		cam = NewCamera()
	}
	cv := NewCanvas(canvasWidth, canvasHeight)
	Render(cv, GradientScene(field), cam)

	var b strings.Builder
	b.WriteString(cv.String())
	fmt.Fprintf(&b, "mode: %s, %d samples\n", field.Classification, len(field.Samples))
	for _, seg := range field.IsoLines {
		fmt.Fprintf(&b, "  iso %+6.0f mT  (%g,%g,%g) -> (%g,%g,%g)\n", seg.Offset,
			seg.Start.X, seg.Start.Y, seg.Start.Z, seg.End.X, seg.End.Y, seg.End.Z)
	}
	return b.String()
}
