package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/mocsync/internal/model"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestFrame creates a frame with one parameter, one dirty and one
// clean drawable.
func createTestFrame(sessionID string, frame int, seq int64, value float32) Frame {
	return Frame{
		SessionID: sessionID,
		Frame:     frame,
		Seq:       seq,
		Parameters: []ParameterSample{
			{Index: 0, ID: "ParamAngleX", Value: value},
		},
		Drawables: []DrawableSample{
			{
				Index:     0,
				ID:        "Face",
				Flags:     model.IsVisible | model.VertexPositionsDidChange,
				Dirty:     true,
				Opacity:   1,
				DrawOrder: 500,
				Vertices:  []model.Vec2{{X: value, Y: 0}, {X: 1, Y: -0.5}},
			},
			{
				Index:       1,
				ID:          "Hair",
				Flags:       model.IsVisible,
				Opacity:     0.5,
				DrawOrder:   500,
				RenderOrder: 1,
			},
		},
	}
}
