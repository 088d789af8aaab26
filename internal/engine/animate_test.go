package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/mocsync/internal/testutil"
)

func TestOscillate_StaysInRange(t *testing.T) {
	_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
	animate := Oscillate(10)

	for frame := 0; frame < 25; frame++ {
		animate(frame, 1, rig)
		for _, p := range rig.Parameters().Items() {
			assert.GreaterOrEqual(t, p.Value, p.Minimum, "%s at frame %d", p.ID, frame)
			assert.LessOrEqual(t, p.Value, p.Maximum, "%s at frame %d", p.ID, frame)
		}
	}
}

func TestOscillate_Deterministic(t *testing.T) {
	_, a := testutil.NewSoftRig(t, testutil.HaruLayout())
	_, b := testutil.NewSoftRig(t, testutil.HaruLayout())

	Oscillate(8)(3, 0, a)
	Oscillate(8)(3, 0, b)
	for i, p := range a.Parameters().Items() {
		assert.Equal(t, p.Value, b.Parameters().At(i).Value)
	}
}

func TestOscillate_Periodic(t *testing.T) {
	_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
	animate := Oscillate(4)

	animate(1, 0, rig)
	first := rig.Parameter("ParamAngleX").Value
	animate(5, 0, rig)
	assert.InDelta(t, first, rig.Parameter("ParamAngleX").Value, 1e-4)
}

func TestOscillate_InstancesDiffer(t *testing.T) {
	_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
	animate := Oscillate(16)

	animate(0, 0, rig)
	first := rig.Parameter("ParamAngleX").Value
	animate(0, 1, rig)
	assert.NotEqual(t, first, rig.Parameter("ParamAngleX").Value)
}
