// Package clock abstracts "now" so that window and expiry logic can be driven
// deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current instant. Implementations return UTC.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock
type Real struct{}

// NewReal creates a system clock
func NewReal() Real {
	return Real{}
}

// Now returns the current system time in UTC
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Simulated is a manually driven clock, safe for concurrent use
type Simulated struct {
	mu      sync.RWMutex
	current time.Time
}

// NewSimulated creates a Simulated clock starting at start
func NewSimulated(start time.Time) *Simulated {
	return &Simulated{current: start.UTC()}
}

// Now returns the simulated current time
func (c *Simulated) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance moves the simulated time forward by d
func (c *Simulated) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the simulated time to t
func (c *Simulated) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t.UTC()
}
