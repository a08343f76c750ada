package sim

import "gonum.org/v1/gonum/spatial/r3"

// Trail is a bounded FIFO of vector tips. Pushing beyond capacity evicts
// the oldest point.
type Trail struct {
	buf   []r3.Vec
	start int
	size  int
}

// NewTrail returns a trail holding at most capacity points. A capacity of
// zero yields a trail that records nothing.
func NewTrail(capacity int) *Trail {
	if capacity < 0 {
		capacity = 0
	}
	return &Trail{buf: make([]r3.Vec, capacity)}
}

func (t *Trail) Cap() int { return len(t.buf) }
func (t *Trail) Len() int { return t.size }

func (t *Trail) Push(p r3.Vec) {
	if len(t.buf) == 0 {
		return
	}
	if t.size < len(t.buf) {
		t.buf[(t.start+t.size)%len(t.buf)] = p
		t.size++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

// Points returns a copy of the trail, oldest first.
func (t *Trail) Points() []r3.Vec {
	out := make([]r3.Vec, t.size)
	for i := range out {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Last returns the newest point.
func (t *Trail) Last() (r3.Vec, bool) {
	if t.size == 0 {
		return r3.Vec{}, false
	}
	return t.buf[(t.start+t.size-1)%len(t.buf)], true
}

func (t *Trail) Clear() {
	t.start, t.size = 0, 0
}
