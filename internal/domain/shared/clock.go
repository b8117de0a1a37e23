package shared

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock time so episode timestamps are reproducible in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time in UTC
type SystemClock struct{}

// Now returns the current system time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns the production clock
func NewSystemClock() Clock {
	return SystemClock{}
}

// SteppingClock starts at a fixed instant and moves forward by Step on every Now
// call. It is safe for concurrent use.
type SteppingClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewSteppingClock creates a stepping clock. A zero start uses the Unix epoch.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	return &SteppingClock{current: start, step: step}
}

// Now returns the current instant and advances the clock
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Peek returns the next instant Now would return without advancing
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
