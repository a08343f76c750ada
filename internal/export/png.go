package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PNGOptions sizes a rendered plot.
type PNGOptions struct {
	WidthIn, HeightIn float64
	DPI               int
}

var DefaultPNG = PNGOptions{WidthIn: 8, HeightIn: 5, DPI: 150}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
}

func addLine(p *plot.Plot, i int, name string, xs, ys []float64) error {
	n := min(len(xs), len(ys))
	if n == 0 {
		return fmt.Errorf("%s: no data", name)
	}
	pts := make(plotter.XYs, n)
	for k := 0; k < n; k++ {
		pts[k].X = xs[k]
		pts[k].Y = ys[k]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// WritePNG renders p onto a PNG canvas.
func WritePNG(w io.Writer, p *plot.Plot, opts PNGOptions) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func savePNG(p *plot.Plot, path string, opts PNGOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()
	return WritePNG(f, p, opts)
}

// SeriesPlot plots every recorded channel against the demo's time axis.
func SeriesPlot(res *dynamo.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = res.Demo
	if res.Mode != "" {
		p.Title.Text += " (" + res.Mode + ")"
	}
	p.X.Label.Text = res.Timing.Caption()
	p.Y.Label.Text = "value"
	stylePlot(p)

	for i, ch := range res.Channels {
		if err := addLine(p, i, ch, res.Times, res.Series[ch]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FourierPlot overlays the base function and its partial sum.
func FourierPlot(a models.Approximation) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fourier series of %s, N = %d", a.Function, a.Terms)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "f(x)"
	stylePlot(p)

	if err := addLine(p, 0, "f(x)", a.X, a.F); err != nil {
		return nil, err
	}
	if err := addLine(p, 1, fmt.Sprintf("s_%d(x)", a.Terms), a.X, a.S); err != nil {
		return nil, err
	}
	return p, nil
}

// SpectrumPlot draws a magnitude spectrum against frequency.
func SpectrumPlot(title string, freqs, mags []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "cycles per step"
	p.Y.Label.Text = "|X(f)|"
	stylePlot(p)
	if err := addLine(p, 0, "spectrum", freqs, mags); err != nil {
		return nil, err
	}
	return p, nil
}

func SeriesPNG(path string, res *dynamo.Result, opts PNGOptions) error {
	p, err := SeriesPlot(res)
	if err != nil {
		return err
	}
	return savePNG(p, path, opts)
}

func FourierPNG(path string, a models.Approximation, opts PNGOptions) error {
	p, err := FourierPlot(a)
	if err != nil {
		return err
	}
	return savePNG(p, path, opts)
}

func SpectrumPNG(path, title string, freqs, mags []float64, opts PNGOptions) error {
	p, err := SpectrumPlot(title, freqs, mags)
	if err != nil {
		return err
	}
	return savePNG(p, path, opts)
}
