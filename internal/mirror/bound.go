package mirror

import "github.com/roach88/mocsync/internal/model"

// Bound is a collection whose position i holds the entity with native
// offset i. Only the Bind functions construct one.
type Bound[E model.Indexed] struct {
	items []E
}

// Len returns the number of bound entities.
func (b *Bound[E]) Len() int { return len(b.items) }

// Items returns the bound collection in native order. Callers may mutate the
// entities but must not reorder or resize the slice.
func (b *Bound[E]) Items() []E { return b.items }

// At returns the entity at native offset i.
func (b *Bound[E]) At(i int) E { return b.items[i] }

// Find returns the bound entity with the given ID.
func (b *Bound[E]) Find(id string) (E, bool) { return model.Find(b.items, id) }
