package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/viz"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stroke colours for successive channels.
var Palette = []string{"#ff5555", "#50fa7b", "#8be9fd", "#f1fa8c", "#ff79c6"}

const background = "#0a0a0a"

func svgHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	var sb strings.Builder
	svgHeader(&sb, float64(dw)*scale, float64(dh)*scale)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is a padded data rectangle mapped onto the image.
type bounds struct {
	minX, maxX, minY, maxY float64
}

func newBounds(xs, ys []float64) bounds {
	b := bounds{floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)}
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func writePath(sb *strings.Builder, xs, ys []float64, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := range xs {
		x, y := b.project(xs[i], ys[i], width, height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>` + "\n")
}

// TrailToSVG projects a magnetization trail through the camera and draws it
// as one path, with the camera's x, y and z axes dashed.
func TrailToSVG(trail []r3.Vec, cam *viz.Camera, width, height int, stroke string) string {
	if len(trail) < 2 {
		return ""
	}
	if cam == nil {
		cam = viz.NewCamera()
	}

	project := func(p r3.Vec) (float64, float64) {
		x, y, _, _ := cam.Project(p, width, height)
		return float64(x), float64(y)
	}

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	ox, oy := project(r3.Vec{})
	for _, ax := range []r3.Vec{{X: 1.2}, {Y: 1.2}, {Z: 1.2}} {
		x, y := project(ax)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#666688" stroke-dasharray="4 4"/>`+"\n", ox, oy, x, y)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i, p := range trail {
		x, y := project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String()
}

// SeriesToSVG draws every channel of a result against time on shared axes.
func SeriesToSVG(res *dynamo.Result, width, height int) string {
	if res == nil || len(res.Times) < 2 {
		return ""
	}

	var all []float64
	for _, ch := range res.Channels {
		all = append(all, res.Series[ch]...)
	}
	if len(all) == 0 {
		return ""
	}
	lo, hi := floats.Min(all), floats.Max(all)
	b := newBounds(res.Times, []float64{lo, hi})

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	if b.minY < 0 && b.maxY > 0 {
		_, y := b.project(0, 0, width, height)
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#666688"/>`+"\n", y, width, y)
	}
	for i, ch := range res.Channels {
		vals := res.Series[ch]
		n := min(len(vals), len(res.Times))
		if n < 2 {
			continue
		}
		writePath(&sb, res.Times[:n], vals[:n], b, width, height, Palette[i%len(Palette)])
	}
	for i, ch := range res.Channels {
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
			16*(i+1), Palette[i%len(Palette)], ch)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
