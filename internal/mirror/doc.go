// Package mirror keeps managed entity collections in step with a native core
// model.
//
// The package has three operations per entity kind:
//
//   - Bind sorts a collection by native offset, checks that the offsets are a
//     zero-based permutation, and runs one-time setup against the core
//   - Push copies managed scalars into the core's buffers
//   - Pull copies core buffers back into the managed entities
//
// Bind returns a *Bound[E]. Push and Pull only accept bound collections, so
// the position == offset invariant is established once and then assumed on
// every frame without further checks.
//
// Drawable pulls are gated by the native dirty flag: vertex positions are
// copied only for drawables whose VertexPositionsDidChange bit is set, and one
// ResetDrawableDynamicFlags call follows the whole pass. The per-drawable
// outcome is returned as a DrawableSnapshot value.
//
// None of these operations are safe to run concurrently on one core.
package mirror
