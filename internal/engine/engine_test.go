package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/store"
	"github.com/roach88/mocsync/internal/testutil"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// swayAngle sets ParamAngleX to 10 per frame.
func swayAngle(frame, _ int, rig *mirror.Rig) {
	rig.Parameter("ParamAngleX").Value = float32(frame * 10)
}

func newTestEngine(t *testing.T, s *store.Store, instances int, opts ...EngineOption) *Engine {
	t.Helper()
	e := New(s, testutil.NewSequenceGenerator("session"), opts...)
	for i := 0; i < instances; i++ {
		_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
		e.Add("Haru", rig)
	}
	return e
}

func TestEngine_RecordsFramesInInstanceOrder(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, 2, WithAnimator(swayAngle), WithWorkers(2))
	ctx := context.Background()

	require.NoError(t, e.Run(ctx, 3))

	assert.Equal(t, []string{"session-1", "session-2"}, e.Sessions())
	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 1, sessions[1].Instance)

	first, err := s.ReadFrames(ctx, "session-1")
	require.NoError(t, err)
	second, err := s.ReadFrames(ctx, "session-2")
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.Len(t, second, 3)

	for f := 0; f < 3; f++ {
		assert.Equal(t, int64(2*f+1), first[f].Seq)
		assert.Equal(t, int64(2*f+2), second[f].Seq)
	}
}

func TestEngine_RecordsDirtyGating(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, 2, WithAnimator(swayAngle))
	ctx := context.Background()

	require.NoError(t, e.Run(ctx, 3))

	assert.Equal(t, Stats{Frames: 3, DirtyDrawables: 8, CleanDrawables: 4}, e.Stats())

	frames, err := s.ReadFrames(ctx, "session-1")
	require.NoError(t, err)

	// Native offset 0 is ArtMeshHair (reverse order), which never deforms.
	last := frames[2]
	assert.Equal(t, "ArtMeshHair", last.Drawables[0].ID)
	assert.False(t, last.Drawables[0].Dirty)
	assert.Nil(t, last.Drawables[0].Vertices)

	face := last.Drawables[1]
	assert.Equal(t, "ArtMeshFace", face.ID)
	require.True(t, face.Dirty)
	require.Len(t, face.Vertices, 3)
	assert.InDelta(t, -0.8, face.Vertices[0].X, 1e-5)
	assert.InDelta(t, -1.0, face.Vertices[0].Y, 1e-6)

	angle := last.Parameters[2]
	assert.Equal(t, "ParamAngleX", angle.ID)
	assert.Equal(t, float32(20), angle.Value)
}

func TestEngine_AddBetweenRuns(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, 1, WithAnimator(swayAngle))
	ctx := context.Background()

	require.NoError(t, e.Run(ctx, 1))

	_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
	late := e.Add("Haru", rig)
	require.NoError(t, e.Run(ctx, 1))

	sess, err := s.ReadSession(ctx, late)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Instance)
	assert.Equal(t, int64(1), sess.StartedSeq)

	frames, err := s.ReadFrames(ctx, late)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 0, frames[0].Frame)
	assert.Equal(t, int64(3), frames[0].Seq)
	assert.Equal(t, float32(0), frames[0].Parameters[2].Value)

	early, err := s.ReadFrames(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, early, 2)
	assert.Equal(t, 1, early[1].Frame)
	assert.Equal(t, int64(2), early[1].Seq)
}

func TestEngine_WithoutStore(t *testing.T) {
	e := newTestEngine(t, nil, 3, WithAnimator(swayAngle))

	require.NoError(t, e.Run(context.Background(), 2))
	assert.Equal(t, 2, e.Stats().Frames)
}

func TestEngine_ResumesClockFromStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, newTestEngine(t, s, 1).Run(ctx, 2))

	e := New(s, testutil.NewSequenceGenerator("again"))
	_, rig := testutil.NewSoftRig(t, testutil.HaruLayout())
	e.Add("Haru", rig)
	require.NoError(t, e.Run(ctx, 1))

	frames, err := s.ReadFrames(ctx, "again-1")
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, int64(3), frames[0].Seq)

	sess, err := s.ReadSession(ctx, "again-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sess.StartedSeq)
}

func TestEngine_QuotaRejectsOversizedRun(t *testing.T) {
	e := newTestEngine(t, nil, 1, WithMaxFrames(3))

	err := e.Run(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.Equal(t, 0, e.Stats().Frames)
}

func TestEngine_QuotaBoundsOpenRun(t *testing.T) {
	e := newTestEngine(t, nil, 1, WithMaxFrames(3))

	err := e.Run(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.Equal(t, 3, e.Stats().Frames)
}

func TestEngine_Cancelled(t *testing.T) {
	e := newTestEngine(t, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Stats().Frames)
}

func TestEngine_CancelFromAnimator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newTestEngine(t, nil, 1, WithAnimator(func(frame, _ int, _ *mirror.Rig) {
		if frame == 4 {
			cancel()
		}
	}))

	err := e.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, e.Stats().Frames)
}

func TestEngine_PanickingAnimator(t *testing.T) {
	e := newTestEngine(t, nil, 2, WithAnimator(func(frame, instance int, _ *mirror.Rig) {
		if instance == 1 {
			panic("bad animator")
		}
	}))

	err := e.Run(context.Background(), 1)
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeTaskFailed, re.Code)
	assert.Equal(t, "session-2", re.Session)
	assert.Contains(t, err.Error(), "bad animator")
}
