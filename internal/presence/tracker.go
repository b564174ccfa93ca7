package presence

import (
	"math"
	"sync/atomic"
	"time"
)

// Tracker exposes how fresh the sensor heartbeat is. Reads are
// side-effect-free and safe under concurrent mutation by the listener.
type Tracker interface {
	// SecondsSinceLastHeartbeat returns the elapsed seconds since the last
	// heartbeat, or +Inf if no heartbeat was ever received.
	SecondsSinceLastHeartbeat() float64
}

// Clock holds the last-received heartbeat timestamp. The listener goroutine
// is the sole writer; any number of monitor loops may read concurrently.
type Clock struct {
	lastNano atomic.Int64 // unix nanoseconds of the last heartbeat, 0 = never
}

// NewClock creates a clock with no heartbeat recorded.
func NewClock() *Clock {
	return &Clock{}
}

// Mark records a heartbeat at the current wall-clock time.
func (c *Clock) Mark() {
	c.lastNano.Store(time.Now().UnixNano())
}

// SecondsSinceLastHeartbeat implements Tracker.
func (c *Clock) SecondsSinceLastHeartbeat() float64 {
	last := c.lastNano.Load()
	if last == 0 {
		return math.Inf(1)
	}
	return time.Since(time.Unix(0, last)).Seconds()
}
