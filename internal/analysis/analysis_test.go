package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mrilab/internal/models"
)

func precessionMx(steps int) []float64 {
	p := models.NewPrecession()
	xs := make([]float64, steps)
	for k := range xs {
		xs[k] = p.Evolve(k).Values["Mx"]
	}
	return xs
}

func TestDominantFrequencyPrecession(t *testing.T) {
	xs := precessionMx(300)

	f := DominantFrequency(xs, 1)
	if math.Abs(f-1.0/30) > 1e-4 {
		t.Errorf("expected %f, got %f", 1.0/30, f)
	}

	rate := AngularRate(xs)
	if math.Abs(rate-0.2094395) > 1e-3 {
		t.Errorf("expected %f, got %f", 0.2094395, rate)
	}
}

func TestDominantFrequencyBetweenBins(t *testing.T) {
	const n = 512
	const want = 0.0371
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = 2 + math.Sin(2*math.Pi*want*float64(i))
	}

	got := DominantFrequency(xs, 1)
	if math.Abs(got-want) > 1.0/n {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestSpectrumShape(t *testing.T) {
	tests := []struct {
		name string
		n    int
		bins int
	}{
		{"empty", 0, 0},
		{"single", 1, 0},
		{"even", 64, 33},
		{"odd", 45, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := Spectrum(make([]float64, tt.n))
			if len(ps) != tt.bins {
				t.Errorf("expected %d bins, got %d", tt.bins, len(ps))
			}
		})
	}

	fs := Frequencies(64, 30)
	if math.Abs(fs[32]-15) > 1e-12 {
		t.Errorf("expected Nyquist 15, got %f", fs[32])
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	xs := make([]float64, 100)
	for i := range xs {
		xs[i] = 1
	}
	if f := DominantFrequency(xs, 1); f != 0 {
		t.Errorf("expected 0 for a constant series, got %f", f)
	}
}

func TestPeriod(t *testing.T) {
	xs := precessionMx(300)
	if p := Period(xs); math.Abs(p-30) > 1e-6 {
		t.Errorf("expected period 30, got %f", p)
	}
	if p := Period([]float64{0, 1, 2, 3}); p != 0 {
		t.Errorf("expected 0 without two crossings, got %f", p)
	}
}

func TestCrossings(t *testing.T) {
	c := Crossings([]float64{-1, 1, -1, 3}, 0)
	if len(c) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(c))
	}
	if c[0] != 0.5 || c[1] != 2.25 {
		t.Errorf("expected [0.5 2.25], got %v", c)
	}
}

func TestPortraitASCII(t *testing.T) {
	p := models.NewPrecession()
	var mx, my []float64
	for k := 0; k < 30; k++ {
		f := p.Evolve(k)
		mx = append(mx, f.Values["Mx"])
		my = append(my, f.Values["My"])
	}

	portrait := NewPortrait("Mx", mx, "My", my[:20])
	if len(portrait.Points) != 20 {
		t.Errorf("expected 20 points, got %d", len(portrait.Points))
	}

	out := portrait.ASCII(40, 20)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") {
		t.Error("expected points and a vertical axis")
	}
	if (&Portrait{}).ASCII(10, 10) != "" {
		t.Error("expected empty output for an empty portrait")
	}
}
