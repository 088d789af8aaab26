// Package harness runs YAML synchronization scenarios against a software
// core model.
//
// # Scenario Format
//
//	name: reverse_offsets_round_trip
//	description: "Managed position 0 holds native offset 0"
//	layout: ../layouts/three.cue
//	model: Three
//	steps:
//	  - op: set
//	    parameter: ParamEyeOpen
//	    value: 0.75
//	  - op: push
//	  - op: native_set
//	    parameter: ParamEyeOpen
//	    value: 0.5
//	  - op: pull
//	assertions:
//	  - type: parameter_value
//	    parameter: ParamEyeOpen
//	    value: 0.5
//
// # Steps
//
//   - set: write a managed parameter value or part opacity
//   - push / pull: run the synchronizers (target narrows the kind)
//   - native_set: write the core's buffers directly, acting as native code
//   - native_flag: raise dynamic flags on a drawable
//   - update: run the core's deformation
//   - repack: move every core buffer to fresh memory
//   - sync: drive one recorded frame through the frame driver
//
// # Assertion Types
//
//   - parameter_value: managed parameter value or part opacity
//   - native_value: the core's buffer slot for a parameter or part
//   - vertex: one managed vertex position
//   - dirty: the dirty result of the last drawable pull
//   - flags_cleared: no drawable has a native flag set
//   - reset_count: how many times the core's flags were reset
//   - recorded_frames: how many frames the driver recorded
//
// # Deterministic Testing
//
// Each run uses a fresh core, a fresh in-memory database, a logical clock
// for trace seq and sequential session IDs, so traces are byte-identical
// across runs and suitable for golden comparison.
package harness
