package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/mrilab/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlayState is the Playing/Paused state of a session.
type PlayState int

const (
	Paused PlayState = iota
	Playing
)

func (s PlayState) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// ObserverFunc adapts a function to dynamo.Observer.
type ObserverFunc func(f dynamo.Frame)

func (fn ObserverFunc) OnFrame(f dynamo.Frame) { fn(f) }

// Session owns one demo instance: its clock, trail and series buffers and
// the Playing/Paused state. Every parameter or mode change goes through the
// session so that resets and evolution steps happen in one sequence.
type Session struct {
	mu sync.Mutex

	evolver  dynamo.Evolver
	clock    *dynamo.Clock
	trail    *Trail
	series   map[string]*TimeSeries
	times    []float64
	channels []string
	state    PlayState

	last     dynamo.Frame
	hasFrame bool

	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func NewSession(e dynamo.Evolver) *Session {
	s := &Session{
		evolver:  e,
		clock:    dynamo.NewClock(e.Timing()),
		trail:    NewTrail(e.TrailCapacity()),
		series:   make(map[string]*TimeSeries),
		channels: e.Channels(),
	}
	for _, ch := range s.channels {
		s.series[ch] = NewTimeSeries(ch)
	}
	return s
}

func (s *Session) AddMetric(m dynamo.Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

func (s *Session) AddObserver(o dynamo.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Session) Evolver() dynamo.Evolver { return s.evolver }
func (s *Session) Channels() []string      { return s.channels }

func (s *Session) State() PlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Playing() bool { return s.State() == Playing }

func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Step()
}

func (s *Session) Timing() dynamo.Timing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Timing()
}

// Play starts the clock. Lifecycle demos freeze their inputs here.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.play()
}

func (s *Session) play() {
	if s.state == Playing {
		return
	}
	s.state = Playing
	if lc, ok := s.evolver.(dynamo.Lifecycle); ok {
		lc.Start()
	}
}

// Pause stops the clock. A Lifecycle demo may ask for a rewind on pause.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pause()
}

func (s *Session) pause() {
	if s.state == Paused {
		return
	}
	s.state = Paused
	if lc, ok := s.evolver.(dynamo.Lifecycle); ok && lc.Stop() {
		s.reset()
	}
}

func (s *Session) Toggle() PlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Playing {
		s.pause()
	} else {
		s.play()
	}
	return s.state
}

// Reset rewinds the clock to zero and clears every buffer. It leaves the
// play state alone and is idempotent.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.clock.Reset()
	s.trail.Clear()
	for _, ts := range s.series {
		ts.Clear()
	}
	s.times = s.times[:0]
	for _, m := range s.metrics {
		m.Reset()
	}
	s.last = dynamo.Frame{}
	s.hasFrame = false
}

// SetParam validates and applies a parameter change, then resets unless the
// demo's ResetPolicy says the parameter only retunes the evolution.
func (s *Session) SetParam(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.evolver.(dynamo.Configurable)
	if !ok {
		return fmt.Errorf("%w: %s has no parameters", dynamo.ErrUnknownParameter, s.evolver.Name())
	}
	if err := c.SetParam(name, value); err != nil {
		return err
	}
	if rp, ok := s.evolver.(dynamo.ResetPolicy); ok && !rp.ResetsOn(name) {
		return nil
	}
	s.reset()
	return nil
}

// SetMode switches the reference frame, rewinds and adopts the new frame's
// graph time axis.
func (s *Session) SetMode(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.evolver.(dynamo.Moded)
	if !ok {
		return fmt.Errorf("%w: %s has no modes", dynamo.ErrUnknownMode, s.evolver.Name())
	}
	if err := m.SetMode(mode); err != nil {
		return err
	}
	s.reset()
	s.clock.SetTiming(s.evolver.Timing())
	return nil
}

// Mutate runs fn against the evolver in the session's sequence and resets
// afterwards when fn succeeds. It is the way to change state that is not a
// scalar parameter, such as a dipole set.
func (s *Session) Mutate(fn func(e dynamo.Evolver) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.evolver); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Advance evaluates the current step, records it and moves the clock on,
// regardless of the play state.
func (s *Session) Advance() (dynamo.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advance()
}

func (s *Session) advance() (dynamo.Frame, error) {
	f := s.evolver.Evolve(s.clock.Step())
	if !f.IsValid() {
		return f, &dynamo.SimulationError{Step: f.Step, Time: f.Time, Wrapped: dynamo.ErrInvalidState}
	}

	if m, ok := f.Vectors[dynamo.Magnetization]; ok {
		s.trail.Push(m)
	}
	s.times = append(s.times, f.Time)
	for _, ch := range s.channels {
		s.series[ch].Append(f.Time, f.Values[ch])
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}

	s.clock.Advance()
	s.last = f
	s.hasFrame = true
	return f, nil
}

// Tick is what the animation driver calls: one step when playing, nothing
// when paused.
func (s *Session) Tick() (dynamo.Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return dynamo.Frame{}, false, nil
	}
	f, err := s.advance()
	return f, err == nil, err
}

// Frame returns the most recent frame, if any.
func (s *Session) Frame() (dynamo.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasFrame
}

// Preview evaluates the current step without recording it.
func (s *Session) Preview() dynamo.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evolver.Evolve(s.clock.Step())
}

func (s *Session) Trail() []r3.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trail.Points()
}

func (s *Session) TrailLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trail.Len()
}

// Series returns a copy of one channel's values.
func (s *Session) Series(channel string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.series[channel]
	if !ok {
		return nil
	}
	return ts.Copy()
}

// Window returns the newest n values of a channel.
func (s *Session) Window(channel string, n int) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.series[channel]
	if !ok {
		return nil
	}
	return append([]float64(nil), ts.Window(n)...)
}

func (s *Session) Times() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.times...)
}

// Run resets, plays for the given number of steps and returns the recorded
// result. The session is paused afterwards.
func (s *Session) Run(ctx context.Context, steps int) (*dynamo.Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, steps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Paused
	s.reset()
	s.play()
	defer func() {
		s.state = Paused
		if lc, ok := s.evolver.(dynamo.Lifecycle); ok {
			lc.Stop()
		}
	}()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return s.result(), fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}
		if _, err := s.advance(); err != nil {
			return s.result(), err
		}
	}
	return s.result(), nil
}

// Result snapshots everything recorded since the last reset.
func (s *Session) Result() *dynamo.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result()
}

func (s *Session) result() *dynamo.Result {
	res := &dynamo.Result{
		Demo:       s.evolver.Name(),
		Timing:     s.clock.Timing(),
		Channels:   append([]string(nil), s.channels...),
		Times:      append([]float64(nil), s.times...),
		Series:     make(map[string][]float64, len(s.series)),
		Trail:      s.trail.Points(),
		Final:      s.last,
		Metrics:    make(map[string]float64, len(s.metrics)),
		StepsTaken: s.clock.Step(),
	}
	if m, ok := s.evolver.(dynamo.Moded); ok {
		res.Mode = m.Mode()
	}
	if c, ok := s.evolver.(dynamo.Configurable); ok {
		res.Params = c.GetParams()
	}
	for name, ts := range s.series {
		res.Series[name] = ts.Copy()
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
