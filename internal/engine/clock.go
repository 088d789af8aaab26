package engine

import "sync/atomic"

// Clock stamps recorded frames with a strictly increasing seq.
//
// Recordings are ordered by seq, never by wall time, so two runs of the same
// scenario produce identical orderings.
//
// Safe for concurrent use, although only the driver's record step calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
// Used to append to an existing recording.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
