package engine

// FrameQuota counts frames driven in one run and enforces a maximum.
//
// A run with no frame count runs until its context is cancelled; the quota
// bounds it so a forgotten cancel cannot drive frames forever.
type FrameQuota struct {
	maxFrames int
	current   int
}

// NewFrameQuota creates a quota allowing maxFrames frames.
func NewFrameQuota(maxFrames int) *FrameQuota {
	return &FrameQuota{maxFrames: maxFrames}
}

// Check counts one frame. Returns a quota RuntimeError when the frame would
// exceed the limit.
func (q *FrameQuota) Check() error {
	if q.current >= q.maxFrames {
		return NewQuotaError(q.current, q.maxFrames)
	}
	q.current++
	return nil
}

// Current returns the number of frames counted so far.
func (q *FrameQuota) Current() int {
	return q.current
}

// MaxFrames returns the limit.
func (q *FrameQuota) MaxFrames() int {
	return q.maxFrames
}
