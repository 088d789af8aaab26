// Package native defines the foreign accessor boundary to a core model and
// the buffer views used to read and write its memory.
//
// A Core hands out raw addresses into memory it owns. Those addresses are
// only valid until the next call that may repack the model, so callers build
// a View per synchronization call and never keep one.
//
// All pointer arithmetic lives in view.go. The rest of the module indexes
// views and never touches an Address directly.
//
// Two implementations exist:
//   - softcore: a pure-Go core used by tests, scenarios and the CLI
//   - cubismcore: a cgo wrapper over the Live2D Cubism Core library
//     (build tag "cubismcore")
package native
