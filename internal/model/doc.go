// Package model provides the managed entity types mirrored against a native
// core model.
//
// This package contains type definitions and lookups only. It imports nothing
// internal, so every other package can depend on it.
//
// Key design constraints:
//   - Vec2 matches the native csmVector2 layout (two float32) bit for bit
//   - DynamicFlags matches the native csmFlags byte
//   - An entity's Index is the native offset assigned by the core model;
//     the managed collection order is only meaningful after binding
package model
