package sim

import "gonum.org/v1/gonum/floats"

// TimeSeries is an append-only sequence of (t_g, value) pairs. It grows
// without bound while playing; windowing is left to the display.
type TimeSeries struct {
	Name   string
	Times  []float64
	Values []float64
}

func NewTimeSeries(name string) *TimeSeries {
	return &TimeSeries{Name: name}
}

func (s *TimeSeries) Append(t, v float64) {
	s.Times = append(s.Times, t)
	s.Values = append(s.Values, v)
}

func (s *TimeSeries) Len() int { return len(s.Values) }

func (s *TimeSeries) Clear() {
	s.Times = s.Times[:0]
	s.Values = s.Values[:0]
}

// Window returns the newest n values, or all of them when fewer exist.
func (s *TimeSeries) Window(n int) []float64 {
	if n <= 0 || n >= len(s.Values) {
		return s.Values
	}
	return s.Values[len(s.Values)-n:]
}

// Range returns the min and max value, zero for an empty series.
func (s *TimeSeries) Range() (float64, float64) {
	if len(s.Values) == 0 {
		return 0, 0
	}
	return floats.Min(s.Values), floats.Max(s.Values)
}

// Copy returns a detached copy of the values.
func (s *TimeSeries) Copy() []float64 {
	return append([]float64(nil), s.Values...)
}
