// Package store provides SQLite-backed recording of synchronized frames.
//
// A recording is append-only:
//   - Sessions: one per rig driven by the frame driver
//   - Frames: one row per (session, frame), stamped with a logical seq
//   - Parameter samples: parameter values pushed that frame
//   - Drawable samples: what the drawable pull observed that frame
//
// # Ordering
//
// All ordering uses the seq INTEGER from the driver's logical clock, never
// wall time. Reads order by seq, then by native offset, so two reads of the
// same database return identical results.
//
// # Vertex data
//
// Drawable samples carry vertex positions only when the pull copied them
// (the dirty flag was set). Clean drawables store NULL, mirroring what the
// managed side actually received.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
