package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/testutil"
)

func f32(v float32) *float32 { return &v }
func intp(v int) *int        { return &v }
func boolp(v bool) *bool     { return &v }

var haruLayout = filepath.Join("testdata", "layouts", "haru.cue")

func TestRun_PushWritesNativeOffset(t *testing.T) {
	scenario := &Scenario{
		Name:        "push_offset",
		Description: "Managed writes land at the native offset",
		Layout:      haruLayout,
		Steps: []Step{
			{Op: OpSet, Part: "PartFace", Value: f32(0.25)},
			{Op: OpPush, Target: TargetParts},
		},
		Assertions: []Assertion{
			{Type: AssertNativeValue, Part: "PartFace", Value: f32(0.25)},
			{Type: AssertNativeValue, Part: "PartHair", Value: f32(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, "parts", result.Trace[1].Target)
}

func TestRun_PullWithoutPushOverwritesManaged(t *testing.T) {
	scenario := &Scenario{
		Name:        "pull_overwrites",
		Description: "Pull replaces unpushed managed values",
		Layout:      haruLayout,
		Steps: []Step{
			{Op: OpSet, Parameter: "ParamAngleY", Value: f32(7)},
			{Op: OpPull, Target: TargetParameters},
		},
		Assertions: []Assertion{
			{Type: AssertParameterValue, Parameter: "ParamAngleY", Value: f32(0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailedAssertionsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Failures are collected, not returned",
		Layout:      haruLayout,
		Steps:       []Step{{Op: OpPull, Target: TargetDrawables}},
		Assertions: []Assertion{
			{Type: AssertDirty, Drawable: "ArtMeshFace", Dirty: boolp(false)},
			{Type: AssertResetCount, Count: intp(5)},
			{Type: AssertParameterValue, Parameter: "ParamMissing", Value: f32(1)},
			{Type: AssertVertex, Drawable: "ArtMeshHair", Vertex: intp(9), X: f32(0), Y: f32(0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "dirty=true")
	assert.Contains(t, result.Errors[1], "Expected: 5")
	assert.Contains(t, result.Errors[2], "not found")
	assert.Contains(t, result.Errors[3], "vertex index below 2")
}

func TestRun_DirtyWithoutPull(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_pull",
		Description: "Dirty needs a drawable pull",
		Layout:      haruLayout,
		Steps:       []Step{{Op: OpUpdate}},
		Assertions: []Assertion{
			{Type: AssertDirty, Drawable: "ArtMeshFace", Dirty: boolp(true)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no pull recorded")
}

func TestRun_FlagsNotClearedBeforePull(t *testing.T) {
	scenario := &Scenario{
		Name:        "flags_raised",
		Description: "A fresh core has every change flag raised",
		Layout:      haruLayout,
		Steps:       []Step{{Op: OpUpdate}},
		Assertions:  []Assertion{{Type: AssertFlagsCleared}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ArtMeshHair=visible|")
}

func TestRun_UnknownEntityFailsStep(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_entity",
		Description: "Steps naming unknown entities abort the run",
		Layout:      haruLayout,
		Steps:       []Step{{Op: OpNativeSet, Parameter: "ParamNose", Value: f32(1)}},
		Assertions:  []Assertion{{Type: AssertFlagsCleared}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step 0 (native_set): unknown parameter "ParamNose"`)
}

func TestRun_VertexCountMismatchFailsStep(t *testing.T) {
	scenario := &Scenario{
		Name:        "vertex_mismatch",
		Description: "Native vertex writes keep the vertex count",
		Layout:      haruLayout,
		Steps: []Step{
			{Op: OpNativeSet, Drawable: "ArtMeshHair", Vertices: [][]float32{{1, 1}}},
		},
		Assertions: []Assertion{{Type: AssertFlagsCleared}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 2 vertices, got 1")
}

func TestRun_MissingLayout(t *testing.T) {
	scenario := &Scenario{
		Name:   "missing",
		Layout: filepath.Join(t.TempDir(), "gone.cue"),
		Steps:  []Step{{Op: OpUpdate}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load layout")
}

func TestRunSpec_InMemoryLayout(t *testing.T) {
	scenario := &Scenario{
		Name:        "in_memory",
		Description: "RunSpec skips the CUE loader",
		Steps: []Step{
			{Op: OpSet, Parameter: "ParamAngleX", Value: f32(-10)},
			{Op: OpSync},
		},
		Assertions: []Assertion{
			{Type: AssertVertex, Drawable: "ArtMeshFace", Vertex: intp(1), X: f32(0.9), Y: f32(-1)},
			{Type: AssertRecordedFrames, Count: intp(1)},
			{Type: AssertResetCount, Count: intp(1)},
		},
	}

	result, err := RunSpec(scenario, testutil.HaruLayout())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace[1].Snapshots, 2)
	assert.True(t, result.Trace[1].Snapshots[1].Dirty)
}
