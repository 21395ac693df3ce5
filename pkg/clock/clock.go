package clock

import "time"

// Clock abstracts the current time so that time-dependent catalog rules
// (timestamps, the new-product window) can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns a Clock backed by the system time.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock pinned to a controllable instant, for tests.
type FixedClock struct {
	current time.Time
}

// NewFixed creates a FixedClock pinned at t.
func NewFixed(t time.Time) *FixedClock {
	return &FixedClock{current: t}
}

func (c *FixedClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Set pins the clock at t.
func (c *FixedClock) Set(t time.Time) {
	c.current = t
}
