package viz

import (
	"math"
	"sort"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orbits the origin. World z is up on screen at zero pitch.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: -math.Pi / 6, Pitch: 0.35, Distance: 6, Zoom: 1}
}

func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// View maps a world point to camera space: X right, Y up, Z away from the
// viewer.
func (c *Camera) View(p r3.Vec) r3.Vec {
	p = physics.RotateZ(p, -c.Yaw)
	p = physics.Rotate(p, physics.UnitX, c.Pitch)
	return r3.Vec{X: p.X, Y: p.Z, Z: p.Y}
}

// Project converts a world point to dot coordinates on a sw×sh canvas.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	v := r3.Scale(c.Zoom, c.View(p))
	den := c.Distance + v.Z
	if den <= 0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / den * float64(min(sw, sh)) / 3
	sx := int(math.Round(v.X*scale)) + sw/2
	sy := int(math.Round(-v.Y*scale)) + sh/2
	return sx, sy, v.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Arrow is a labelled vector drawn from Origin to Origin+Vec.
type Arrow struct {
	Name   string
	Origin r3.Vec
	Vec    r3.Vec
}

// Scene is everything drawn for one frame of a vector demo.
type Scene struct {
	Arrows   []Arrow
	Trail    []r3.Vec
	Path     []r3.Vec
	Points   []r3.Vec
	Segments [][2]r3.Vec
	Axes     float64
}

// NewScene collects the frame's vectors in name order so that M is drawn
// last and stays on top.
func NewScene(f dynamo.Frame, trail []r3.Vec) Scene {
	s := Scene{Trail: trail, Path: f.Path, Axes: 1.2}
	names := make([]string, 0, len(f.Vectors))
	for name := range f.Vectors {
		if name != dynamo.Magnetization {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := f.Vectors[dynamo.Magnetization]; ok {
		names = append(names, dynamo.Magnetization)
	}
	for _, name := range names {
		s.Arrows = append(s.Arrows, Arrow{Name: name, Vec: f.Vectors[name]})
	}
	return s
}

func (c *Camera) drawSegment(cv *Canvas, a, b r3.Vec, dashed bool) {
	sw, sh := cv.Dots()
	x0, y0, _, v0 := c.Project(a, sw, sh)
	x1, y1, _, v1 := c.Project(b, sw, sh)
	if !v0 && !v1 {
		return
	}
	if dashed {
		cv.DrawDashed(x0, y0, x1, y1)
		return
	}
	cv.DrawLine(x0, y0, x1, y1)
}

func (c *Camera) drawArrow(cv *Canvas, a Arrow) {
	tip := r3.Add(a.Origin, a.Vec)
	if r3.Norm(a.Vec) < 1e-9 {
		return
	}
	c.drawSegment(cv, a.Origin, tip, false)

	sw, sh := cv.Dots()
	x0, y0, _, _ := c.Project(a.Origin, sw, sh)
	x1, y1, _, ok := c.Project(tip, sw, sh)
	if !ok {
		return
	}
	dx, dy := float64(x1-x0), float64(y1-y0)
	n := math.Hypot(dx, dy)
	if n >= 4 {
		const head = 3.0
		ux, uy := dx/n, dy/n
		for _, side := range []float64{-1, 1} {
			hx := float64(x1) - head*ux + side*head*0.6*-uy
			hy := float64(y1) - head*uy + side*head*0.6*ux
			cv.DrawLine(x1, y1, int(math.Round(hx)), int(math.Round(hy)))
		}
	}
	lx, ly := x1+2, y1
	if dx < 0 {
		lx = x1 - 2*(len([]rune(a.Name))+1)
	}
	cv.Text(lx, ly, a.Name)
}

// Render draws the scene: dashed axes, the trail, any path, then arrows.
func Render(cv *Canvas, s Scene, cam *Camera) {
	if cv == nil || cam == nil {
		return
	}
	if s.Axes > 0 {
		sw, sh := cv.Dots()
		for _, ax := range []struct {
			v     r3.Vec
			label string
		}{
			{r3.Scale(s.Axes, physics.UnitX), "x"},
			{r3.Scale(s.Axes, physics.UnitY), "y"},
			{r3.Scale(s.Axes, physics.UnitZ), "z"},
		} {
			cam.drawSegment(cv, r3.Vec{}, ax.v, true)
			if x, y, _, ok := cam.Project(ax.v, sw, sh); ok {
				cv.Text(x, y, ax.label)
			}
		}
	}

	sw, sh := cv.Dots()
	for _, p := range s.Trail {
		if x, y, _, ok := cam.Project(p, sw, sh); ok {
			cv.Set(x, y)
		}
	}
	for _, p := range s.Points {
		if x, y, _, ok := cam.Project(p, sw, sh); ok {
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					cv.Set(x+dx, y+dy)
				}
			}
		}
	}
	for _, seg := range s.Segments {
		cam.drawSegment(cv, seg[0], seg[1], false)
	}
	for i := 1; i < len(s.Path); i++ {
		cam.drawSegment(cv, s.Path[i-1], s.Path[i], false)
	}
	for _, a := range s.Arrows {
		cam.drawArrow(cv, a)
	}
}
