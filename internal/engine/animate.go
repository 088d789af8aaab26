package engine

import (
	"math"

	"github.com/roach88/mocsync/internal/mirror"
)

// Oscillate returns an Animator that sweeps every parameter through its
// range along a sine wave of the given period in frames. Each parameter and
// each instance is phase-shifted so rigs do not move in lockstep. The
// output depends only on frame, instance and parameter position.
func Oscillate(period int) Animator {
	if period < 1 {
		period = 1
	}
	return func(frame, instance int, rig *mirror.Rig) {
		params := rig.Parameters().Items()
		for i, p := range params {
			phase := float64(frame)/float64(period) + float64(i)/float64(len(params)) + float64(instance)*0.125
			t := 0.5 + 0.5*math.Sin(2*math.Pi*phase)
			p.Value = p.Minimum + float32(t)*(p.Maximum-p.Minimum)
		}
	}
}
