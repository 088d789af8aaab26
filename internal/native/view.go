package native

import (
	"unsafe"

	"github.com/roach88/mocsync/internal/model"
)

// Address is a raw address into core-owned memory.
type Address = unsafe.Pointer

// Scalar is an element type a core buffer can hold.
type Scalar interface {
	~uint8 | ~int32 | ~float32
}

// View is a non-owning, bounds-known window over a core buffer.
// The zero View is empty.
type View[T Scalar] struct {
	s []T
}

// ViewOf views n elements of type T starting at addr.
// A nil address or non-positive length yields an empty view.
func ViewOf[T Scalar](addr Address, n int) View[T] {
	if addr == nil || n <= 0 {
		return View[T]{}
	}
	return View[T]{s: unsafe.Slice((*T)(addr), n)}
}

// Float32s views a float buffer.
func Float32s(addr Address, n int) View[float32] { return ViewOf[float32](addr, n) }

// Int32s views an int buffer.
func Int32s(addr Address, n int) View[int32] { return ViewOf[int32](addr, n) }

// Flags views a dynamic flag buffer.
func Flags(addr Address, n int) View[model.DynamicFlags] {
	return ViewOf[model.DynamicFlags](addr, n)
}

// Len returns the number of elements in the view.
func (v View[T]) Len() int { return len(v.s) }

// At returns element i. Panics when i is out of range.
func (v View[T]) At(i int) T { return v.s[i] }

// Set writes element i. Panics when i is out of range.
func (v View[T]) Set(i int, x T) { v.s[i] = x }

// VertexTable views the per-drawable table of vertex position arrays.
type VertexTable struct {
	rows []*model.Vec2
}

// VertexTableOf views a table of n row addresses starting at addr.
func VertexTableOf(addr Address, n int) VertexTable {
	if addr == nil || n <= 0 {
		return VertexTable{}
	}
	return VertexTable{rows: unsafe.Slice((**model.Vec2)(addr), n)}
}

// Len returns the number of rows.
func (t VertexTable) Len() int { return len(t.rows) }

// Row returns the first count positions of drawable i.
func (t VertexTable) Row(i, count int) []model.Vec2 {
	p := t.rows[i]
	if p == nil || count <= 0 {
		return nil
	}
	return unsafe.Slice(p, count)
}

// AddressOf returns the address of the first element of s, or nil when s is
// empty. Go-backed cores use it to hand out their buffers.
func AddressOf[T any](s []T) Address {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(s))
}
