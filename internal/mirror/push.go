package mirror

import (
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native"
)

// PushParameters writes every parameter value into the core.
func PushParameters(b *Bound[*model.Parameter], core native.Core) {
	pushScalars(b, native.Float32s(core.ParameterValues(), b.Len()),
		func(p *model.Parameter) float32 { return p.Value })
}

// PushParts writes every part opacity into the core.
func PushParts(b *Bound[*model.Part], core native.Core) {
	pushScalars(b, native.Float32s(core.PartOpacities(), b.Len()),
		func(p *model.Part) float32 { return p.Opacity })
}

func pushScalars[E model.Indexed, T native.Scalar](b *Bound[E], dst native.View[T], get func(E) T) {
	for _, e := range b.items {
		dst.Set(e.NativeIndex(), get(e))
	}
}
