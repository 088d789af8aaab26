package layout

import "github.com/roach88/mocsync/internal/model"

// IndexOrder controls how native offsets relate to declaration order.
type IndexOrder string

const (
	IndexForward IndexOrder = "forward"
	IndexReverse IndexOrder = "reverse"
)

// ValidIndexOrders defines allowed index orders.
var ValidIndexOrders = map[IndexOrder]bool{
	IndexForward: true,
	IndexReverse: true,
}

// Spec is a compiled model layout.
type Spec struct {
	Name       string          `json:"name"`
	IndexOrder IndexOrder      `json:"index_order"`
	Parameters []ParameterSpec `json:"parameters"`
	Parts      []PartSpec      `json:"parts"`
	Drawables  []DrawableSpec  `json:"drawables"`
}

// ParameterSpec declares one parameter.
type ParameterSpec struct {
	ID      string  `json:"id"`
	Min     float32 `json:"min"`
	Max     float32 `json:"max"`
	Default float32 `json:"default"`
}

// PartSpec declares one part.
type PartSpec struct {
	ID      string  `json:"id"`
	Opacity float32 `json:"opacity"`
}

// DrawableSpec declares one drawable. Weights map a parameter ID to the
// displacement applied to every vertex per unit of that parameter.
type DrawableSpec struct {
	ID          string                `json:"id"`
	Vertices    []model.Vec2          `json:"vertices"`
	Weights     map[string]model.Vec2 `json:"weights,omitempty"`
	Opacity     float32               `json:"opacity"`
	DrawOrder   int32                 `json:"draw_order"`
	RenderOrder int32                 `json:"render_order"`
}

// NativeIndex returns the native offset of the i-th of n declared entities.
func (s *Spec) NativeIndex(i, n int) int {
	if s.IndexOrder == IndexReverse {
		return n - 1 - i
	}
	return i
}

// Entities builds fresh managed collections in declaration order, each
// entity carrying the native offset the core assigns to it. Parameter values
// start at their defaults and part opacities at their declared opacity.
func (s *Spec) Entities() ([]*model.Parameter, []*model.Part, []*model.Drawable) {
	params := make([]*model.Parameter, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = &model.Parameter{
			ID:    p.ID,
			Index: s.NativeIndex(i, len(s.Parameters)),
			Value: p.Default,
		}
	}

	parts := make([]*model.Part, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = &model.Part{
			ID:      p.ID,
			Index:   s.NativeIndex(i, len(s.Parts)),
			Opacity: p.Opacity,
		}
	}

	drawables := make([]*model.Drawable, len(s.Drawables))
	for i, d := range s.Drawables {
		drawables[i] = &model.Drawable{
			ID:    d.ID,
			Index: s.NativeIndex(i, len(s.Drawables)),
		}
	}

	return params, parts, drawables
}
