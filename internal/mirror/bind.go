package mirror

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native"
)

var (
	// ErrInvalidIndices is returned when native offsets are not a zero-based
	// permutation of the collection (gaps, duplicates or out of range).
	ErrInvalidIndices = errors.New("native offsets are not a permutation")

	// ErrCountMismatch is returned when the collection length differs from
	// the core's entity count.
	ErrCountMismatch = errors.New("collection length does not match core")

	// ErrInvalidVertexCount is returned when the core reports a negative
	// vertex count for a drawable.
	ErrInvalidVertexCount = errors.New("invalid vertex count")

	// ErrUnknownID is returned by ResolveIndices for an entity the core does
	// not know.
	ErrUnknownID = errors.New("unknown entity id")
)

const (
	KindParameter = "parameter"
	KindPart      = "part"
	KindDrawable  = "drawable"
)

// BindParameters binds parameters and reads each one's range and default
// from the core.
func BindParameters(items []*model.Parameter, core native.Core) (*Bound[*model.Parameter], error) {
	n := core.ParameterCount()
	b, err := bind(KindParameter, items, n, nil)
	if err != nil {
		return nil, err
	}

	mins := native.Float32s(core.ParameterMinimumValues(), n)
	maxs := native.Float32s(core.ParameterMaximumValues(), n)
	defs := native.Float32s(core.ParameterDefaultValues(), n)
	for i, p := range b.items {
		p.Minimum = mins.At(i)
		p.Maximum = maxs.At(i)
		p.Default = defs.At(i)
	}
	return b, nil
}

// BindParts binds parts. Parts need no setup beyond ordering.
func BindParts(items []*model.Part, core native.Core) (*Bound[*model.Part], error) {
	return bind(KindPart, items, core.PartCount(), nil)
}

// BindDrawables binds drawables and sizes each one's vertex positions to the
// core's vertex count. A drawable whose slice already has the right length
// keeps it, so rebinding preserves Z.
func BindDrawables(items []*model.Drawable, core native.Core) (*Bound[*model.Drawable], error) {
	n := core.DrawableCount()
	counts := native.Int32s(core.DrawableVertexCounts(), n)
	b, err := bind(KindDrawable, items, n, func(d *model.Drawable) error {
		if count := counts.At(d.Index); count < 0 {
			return fmt.Errorf("drawable %q: %w: %d", d.ID, ErrInvalidVertexCount, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, d := range b.items {
		count := int(counts.At(i))
		if len(d.Data.VertexPositions) != count {
			d.Data.VertexPositions = make([]model.Vec3, count)
		}
	}
	return b, nil
}

// bind validates offsets and runs check on every entity, then sorts items in
// place by offset. check sees offsets already known to be in range. The slice
// is left untouched when validation fails.
func bind[E model.Indexed](kind string, items []E, count int, check func(E) error) (*Bound[E], error) {
	if len(items) != count {
		return nil, fmt.Errorf("%s: %w: have %d, core has %d", kind, ErrCountMismatch, len(items), count)
	}

	seen := make([]bool, len(items))
	for _, e := range items {
		i := e.NativeIndex()
		if i < 0 || i >= len(items) {
			return nil, fmt.Errorf("%s %q: %w: offset %d out of range [0, %d)", kind, e.EntityID(), ErrInvalidIndices, i, len(items))
		}
		if seen[i] {
			return nil, fmt.Errorf("%s %q: %w: duplicate offset %d", kind, e.EntityID(), ErrInvalidIndices, i)
		}
		seen[i] = true
	}
	if check != nil {
		for _, e := range items {
			if err := check(e); err != nil {
				return nil, err
			}
		}
	}

	slices.SortFunc(items, func(a, b E) int {
		return cmp.Compare(a.NativeIndex(), b.NativeIndex())
	})

	slog.Debug("bound collection", "kind", kind, "count", len(items))
	return &Bound[E]{items: items}, nil
}

// ResolveIndices assigns each entity's native offset by looking its ID up in
// ids, the core's ID table in native order.
func ResolveIndices[E model.Indexed](items []E, ids []string) error {
	offsets := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := offsets[id]; !dup {
			offsets[id] = i
		}
	}
	for _, e := range items {
		i, ok := offsets[e.EntityID()]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownID, e.EntityID())
		}
		e.SetNativeIndex(i)
	}
	return nil
}
