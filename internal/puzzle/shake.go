package puzzle

import (
	"math"
	"time"
)

const (
	// StandardGravity in m/s².
	StandardGravity = 9.80665

	// ShakeThreshold is the g-force a sample must exceed to count.
	ShakeThreshold = 2.0

	// ShakeDebounce is the minimum gap between two counted samples.
	ShakeDebounce = 150 * time.Millisecond

	// ShakeTarget is the number of counted shakes needed to win.
	ShakeTarget = 12
)

// Sample is one accelerometer reading in m/s².
type Sample struct {
	X, Y, Z float64
	At      time.Time
}

// GForce returns the magnitude of the sample in units of standard gravity.
func (s Sample) GForce() float64 {
	return math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) / StandardGravity
}

// Shake counts vigorous movements. Progress only accumulates.
type Shake struct {
	Count  int
	Target int

	last    time.Time
	counted bool
	closed  bool
}

func NewShake() *Shake {
	return &Shake{Target: ShakeTarget}
}

// Feed consumes one sample. counted reports whether the sample was a
// qualifying shake; solved is true only for the sample that reaches the
// target.
func (s *Shake) Feed(sample Sample) (counted, solved bool) {
	if s.closed || s.Done() {
		return false, false
	}
	if sample.GForce() <= ShakeThreshold {
		return false, false
	}
	if s.counted && sample.At.Sub(s.last) < ShakeDebounce {
		return false, false
	}

	s.counted = true
	s.last = sample.At
	s.Count++
	return true, s.Done()
}

// Done reports whether the target has been reached.
func (s *Shake) Done() bool {
	return s.Count >= s.Target
}

// Progress is the completed fraction in [0, 1].
func (s *Shake) Progress() float64 {
	if s.Target <= 0 {
		return 1
	}
	return math.Min(1, float64(s.Count)/float64(s.Target))
}
