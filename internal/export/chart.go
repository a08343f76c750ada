package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var chartColors = []drawing.Color{
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorBlue,
	{R: 255, G: 165, B: 0, A: 255},
}

// Curve is one named line of a chart.
type Curve struct {
	Name string
	X, Y []float64
}

// LineChart lays out curves on shared axes with a legend.
func LineChart(title, xName, yName string, curves ...Curve) (chart.Chart, error) {
	series := make([]chart.Series, 0, len(curves))
	for i, c := range curves {
		n := min(len(c.X), len(c.Y))
		if n < 2 {
			return chart.Chart{}, fmt.Errorf("%s: need at least 2 points, got %d", c.Name, n)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.Name,
			XValues: c.X[:n],
			YValues: c.Y[:n],
			Style: chart.Style{
				StrokeColor: chartColors[i%len(chartColors)],
				StrokeWidth: 2.0,
				DotColor:    chartColors[i%len(chartColors)],
				DotWidth:    3.0,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  xName,
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph, nil
}

// SweepChart plots one metric against the swept parameter.
func SweepChart(param string, values []float64, metric string, ys []float64) (chart.Chart, error) {
	return LineChart(fmt.Sprintf("%s vs %s", metric, param), param, metric, Curve{Name: metric, X: values, Y: ys})
}

// SpectrumChart plots a magnitude spectrum against frequency.
func SpectrumChart(title string, freqs, mags []float64) (chart.Chart, error) {
	return LineChart(title, "cycles per step", "|X(f)|", Curve{Name: "spectrum", X: freqs, Y: mags})
}

// WriteChart renders the chart as SVG or PNG, following the extension of
// path.
func WriteChart(path string, graph chart.Chart) error {
	var provider chart.RendererProvider
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		provider = chart.SVG
	case ".png":
		provider = chart.PNG
	default:
		return fmt.Errorf("chart %s: extension must be .svg or .png", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return RenderChart(file, graph, provider)
}

func RenderChart(w io.Writer, graph chart.Chart, provider chart.RendererProvider) error {
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render %q: %w", graph.Title, err)
	}
	return nil
}
