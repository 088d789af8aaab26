package mirror

import (
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native"
)

// DrawableSnapshot is what one drawable pull observed.
type DrawableSnapshot struct {
	Index int                `json:"index"`
	Flags model.DynamicFlags `json:"flags"`
	Dirty bool               `json:"dirty"`
}

// PullParameters reads every parameter value back from the core.
func PullParameters(b *Bound[*model.Parameter], core native.Core) {
	pullScalars(b, native.Float32s(core.ParameterValues(), b.Len()),
		func(p *model.Parameter, v float32) { p.Value = v })
}

// PullParts reads every part opacity back from the core.
func PullParts(b *Bound[*model.Part], core native.Core) {
	pullScalars(b, native.Float32s(core.PartOpacities(), b.Len()),
		func(p *model.Part, v float32) { p.Opacity = v })
}

func pullScalars[E model.Indexed, T native.Scalar](b *Bound[E], src native.View[T], set func(E, T)) {
	for _, e := range b.items {
		set(e, src.At(e.NativeIndex()))
	}
}

// PullDrawables reads the dynamic state of every drawable, copies vertex
// positions for dirty drawables only, then resets the core's dynamic flags
// once. Snapshots are appended to dst[:0] and returned.
func PullDrawables(b *Bound[*model.Drawable], core native.Core, dst []DrawableSnapshot) []DrawableSnapshot {
	n := b.Len()
	flags := native.Flags(core.DrawableDynamicFlags(), n)
	opacities := native.Float32s(core.DrawableOpacities(), n)
	drawOrders := native.Int32s(core.DrawableDrawOrders(), n)
	renderOrders := native.Int32s(core.DrawableRenderOrders(), n)
	positions := native.VertexTableOf(core.DrawableVertexPositions(), n)

	dst = dst[:0]
	for i, d := range b.items {
		data := &d.Data
		data.Flags = flags.At(i)
		data.Opacity = opacities.At(i)
		data.DrawOrder = drawOrders.At(i)
		data.RenderOrder = renderOrders.At(i)

		dirty := data.AreVertexPositionsDirty()
		if dirty {
			src := positions.Row(i, len(data.VertexPositions))
			for v := range src {
				data.VertexPositions[v].X = src[v].X
				data.VertexPositions[v].Y = src[v].Y
			}
		}
		dst = append(dst, DrawableSnapshot{Index: i, Flags: data.Flags, Dirty: dirty})
	}

	core.ResetDrawableDynamicFlags()
	return dst
}
