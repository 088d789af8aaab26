package store

import "github.com/roach88/mocsync/internal/model"

// Session is one recorded rig.
type Session struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	Instance   int    `json:"instance"`
	StartedSeq int64  `json:"started_seq"`
}

// Frame is everything recorded for one session in one frame.
type Frame struct {
	SessionID  string            `json:"session_id"`
	Frame      int               `json:"frame"`
	Seq        int64             `json:"seq"`
	Parameters []ParameterSample `json:"parameters"`
	Drawables  []DrawableSample  `json:"drawables"`
}

// ParameterSample is a parameter value at a native offset.
type ParameterSample struct {
	Index int     `json:"index"`
	ID    string  `json:"id"`
	Value float32 `json:"value"`
}

// DrawableSample is what one drawable pull observed.
// Vertices is nil unless Dirty.
type DrawableSample struct {
	Index       int                `json:"index"`
	ID          string             `json:"id"`
	Flags       model.DynamicFlags `json:"flags"`
	Dirty       bool               `json:"dirty"`
	Opacity     float32            `json:"opacity"`
	DrawOrder   int32              `json:"draw_order"`
	RenderOrder int32              `json:"render_order"`
	Vertices    []model.Vec2       `json:"vertices,omitempty"`
}
