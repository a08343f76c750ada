package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

type countMetric struct {
	count int
}

func (c *countMetric) Name() string           { return "count" }
func (c *countMetric) Observe(f dynamo.Frame) { c.count++ }
func (c *countMetric) Value() float64         { return float64(c.count) }
func (c *countMetric) Reset()                 { c.count = 0 }

// nanEvolver produces an invalid frame from step 3 on.
type nanEvolver struct{}

func (nanEvolver) Name() string          { return "nan" }
func (nanEvolver) Channels() []string    { return []string{"v"} }
func (nanEvolver) Timing() dynamo.Timing { return dynamo.Timing{FrameRate: 100, TimeFactor: 1} }
func (nanEvolver) TrailCapacity() int    { return 0 }
func (nanEvolver) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, float64(step))
	f.Values["v"] = 1
	if step >= 3 {
		f.Values["v"] = math.NaN()
	}
	return f
}

func TestSessionRun(t *testing.T) {
	s := NewSession(models.NewPrecession())
	metric := &countMetric{}
	s.AddMetric(metric)

	res, err := s.Run(context.Background(), 500)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.StepsTaken != 500 {
		t.Errorf("expected 500 steps, got %d", res.StepsTaken)
	}
	if len(res.Trail) != 300 {
		t.Errorf("expected trail capped at 300, got %d", len(res.Trail))
	}
	for _, ch := range []string{dynamo.ChannelMx, dynamo.ChannelMy, dynamo.ChannelMz} {
		if len(res.Series[ch]) != 500 {
			t.Errorf("expected 500 %s values, got %d", ch, len(res.Series[ch]))
		}
	}
	if res.Metrics["count"] != 500 {
		t.Errorf("expected metric to see 500 frames, got %f", res.Metrics["count"])
	}
	if math.Abs(res.Times[30]-7.829) > 1e-12 {
		t.Errorf("expected t_g 7.829 at step 30, got %f", res.Times[30])
	}
	if res.Params["b0"] != 3 {
		t.Errorf("expected params in result, got %v", res.Params)
	}
	if s.Playing() {
		t.Error("session should be paused after Run")
	}
}

func TestSessionRunRejectsSteps(t *testing.T) {
	s := NewSession(models.NewPrecession())
	if _, err := s.Run(context.Background(), 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestSessionRunCanceled(t *testing.T) {
	s := NewSession(models.NewPrecession())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, 100)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a canceled error, got %v", err)
	}
	if res == nil || res.StepsTaken != 0 {
		t.Errorf("expected an empty partial result, got %+v", res)
	}
}

func TestSessionInvalidFrame(t *testing.T) {
	s := NewSession(nanEvolver{})
	res, err := s.Run(context.Background(), 10)

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 3 || !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected invalid state at step 3, got %v", err)
	}
	if len(res.Series["v"]) != 3 {
		t.Errorf("expected the three valid frames kept, got %d", len(res.Series["v"]))
	}
}

func TestSessionResetIdempotent(t *testing.T) {
	s := NewSession(models.NewPrecession())
	s.Play()
	for i := 0; i < 20; i++ {
		if _, _, err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	s.Reset()
	first := s.Result()
	s.Reset()
	second := s.Result()

	for _, r := range []*dynamo.Result{first, second} {
		if r.StepsTaken != 0 || len(r.Trail) != 0 || len(r.Times) != 0 {
			t.Errorf("expected zero state, got steps=%d trail=%d times=%d", r.StepsTaken, len(r.Trail), len(r.Times))
		}
		for ch, v := range r.Series {
			if len(v) != 0 {
				t.Errorf("expected %s empty, got %d", ch, len(v))
			}
		}
	}
	if !s.Playing() {
		t.Error("Reset must not change the play state")
	}
}

func TestSessionParamReset(t *testing.T) {
	tests := []struct {
		name      string
		evolver   dynamo.Evolver
		param     string
		value     float64
		wantReset bool
	}{
		{"precession b0", models.NewPrecession(), "b0", 1.5, true},
		{"precession tilt", models.NewPrecession(), "tilt", 45, true},
		{"rotating frame b0", models.NewRotatingFrameView(), "b0", 1.5, false},
		{"rotating frame phase", models.NewRotatingFrameView(), "phase", 90, true},
		{"resonant b1", models.NewResonant(), "b1", 1e-6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.evolver)
			s.Play()
			for i := 0; i < 10; i++ {
				_, _, _ = s.Tick()
			}
			if err := s.SetParam(tt.param, tt.value); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reset := s.Step() == 0; reset != tt.wantReset {
				t.Errorf("expected reset=%v, step is %d", tt.wantReset, s.Step())
			}
		})
	}
}

func TestSessionRejectedParamKeepsState(t *testing.T) {
	s := NewSession(models.NewPrecession())
	s.Play()
	_, _, _ = s.Tick()
	if err := s.SetParam("b0", 9); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Fatalf("expected ErrParameterBounds, got %v", err)
	}
	if s.Step() != 1 {
		t.Errorf("rejected change must not reset, step is %d", s.Step())
	}
}

func TestSessionModeSwitchRetimes(t *testing.T) {
	s := NewSession(models.NewResonant())
	s.Play()
	_, _, _ = s.Tick()

	if err := s.SetMode(models.RotatingFrame); err != nil {
		t.Fatal(err)
	}
	if s.Step() != 0 {
		t.Errorf("mode switch should reset, step is %d", s.Step())
	}
	if got := s.Timing().Caption(); got != "Time (ms)" {
		t.Errorf("expected rotating time axis, got %q", got)
	}

	if err := NewSession(models.NewPrecession()).SetMode("rrf"); !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode for an unmoded demo, got %v", err)
	}
}

func TestSessionCoilLifecycle(t *testing.T) {
	coil := models.NewCoil()
	s := NewSession(coil)
	err := s.Mutate(func(e dynamo.Evolver) error {
		return e.(*models.Coil).SetDipoles([]r3.Vec{{X: 2}})
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Play()
	if coil.Sensitivity().X != -0.25 {
		t.Fatalf("Play should compute the sensitivity, got %v", coil.Sensitivity())
	}
	for i := 0; i < 5; i++ {
		_, _, _ = s.Tick()
	}
	if got := len(s.Series(dynamo.ChannelFlux)); got != 5 {
		t.Fatalf("expected 5 flux values, got %d", got)
	}

	err = s.Mutate(func(e dynamo.Evolver) error {
		_, err := e.(*models.Coil).AddDipole(r3.Vec{X: -8})
		return err
	})
	if !errors.Is(err, dynamo.ErrPlaying) {
		t.Errorf("expected ErrPlaying, got %v", err)
	}

	s.Pause()
	if s.Step() != 0 || len(s.Series(dynamo.ChannelEMF)) != 0 {
		t.Error("pausing the coil demo should rewind and clear the series")
	}
}

func TestSessionCoilConstantWhilePlaying(t *testing.T) {
	coil := models.NewCoil()
	s := NewSession(coil)
	if err := s.Mutate(func(e dynamo.Evolver) error {
		return e.(*models.Coil).SetDipoles([]r3.Vec{{X: 2}})
	}); err != nil {
		t.Fatal(err)
	}

	s.Play()
	before, _, err := s.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetParam("k", 2); err != nil {
		t.Fatal(err)
	}
	after, _, err := s.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if after.Step != before.Step {
		t.Fatalf("expected a rewind to step %d, got %d", before.Step, after.Step)
	}
	want := 2 * before.Values[dynamo.ChannelFlux]
	if got := after.Values[dynamo.ChannelFlux]; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected flux %f after doubling k, got %f", want, got)
	}
	if coil.Sensitivity().X != -0.5 {
		t.Errorf("expected sensitivity -0.5, got %v", coil.Sensitivity())
	}
}

func TestSessionTickWhilePaused(t *testing.T) {
	s := NewSession(models.NewPrecession())
	if _, ok, err := s.Tick(); ok || err != nil {
		t.Errorf("paused tick should do nothing, got ok=%v err=%v", ok, err)
	}
	if s.Step() != 0 {
		t.Error("paused tick advanced the clock")
	}
}

func TestSessionObserver(t *testing.T) {
	s := NewSession(models.NewPrecession())
	var seen []int
	s.AddObserver(ObserverFunc(func(f dynamo.Frame) { seen = append(seen, f.Step) }))
	if _, err := s.Run(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 4 || seen[3] != 3 {
		t.Errorf("expected steps 0..3, got %v", seen)
	}
}

func TestDriverStepLimit(t *testing.T) {
	s := NewSession(models.NewResonant())
	s.Play()
	d := NewDriver(s, nil)
	d.MaxSteps = 5
	frames := 0
	d.OnFrame = func(dynamo.Frame) { frames++ }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("driver failed: %v", err)
	}
	if frames != 5 || s.Step() != 5 {
		t.Errorf("expected 5 frames, got %d (step %d)", frames, s.Step())
	}
}

func TestDriverCanceled(t *testing.T) {
	s := NewSession(models.NewPrecession())
	d := NewDriver(s, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.Step() != 0 {
		t.Error("a paused session must not advance under the driver")
	}
}

func newPrecession() (dynamo.Evolver, error) { return models.NewPrecession(), nil }

func TestSweep(t *testing.T) {
	sw := NewSweep(newPrecession, "b0", []float64{0.5, 1.5, 3})
	results, err := sw.Run(context.Background(), 60)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, b0 := range []float64{0.5, 1.5, 3} {
		if results[i].Params["b0"] != b0 {
			t.Errorf("result %d: expected b0 %f, got %f", i, b0, results[i].Params["b0"])
		}
	}

	withMetric := NewSweep(newPrecession, "tilt", []float64{15, 90})
	withMetric.Metrics = func() []dynamo.Metric { return []dynamo.Metric{&countMetric{}} }
	results, err = withMetric.Run(context.Background(), 25)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Metrics["count"] != 25 {
			t.Errorf("result %d: expected 25 observed frames, got %f", i, r.Metrics["count"])
		}
	}

	bad := NewSweep(newPrecession, "b0", []float64{1, 7})
	if _, err := bad.Run(context.Background(), 10); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	broken := NewSweep(func() (dynamo.Evolver, error) {
		return nil, dynamo.ErrUnknownDemo
	}, "b0", []float64{1})
	if _, err := broken.Run(context.Background(), 10); !errors.Is(err, dynamo.ErrUnknownDemo) {
		t.Errorf("expected the factory error, got %v", err)
	}
}
