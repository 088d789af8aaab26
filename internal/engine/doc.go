// Package engine drives bound rigs frame by frame and records what each
// frame synchronized.
//
// ARCHITECTURE:
//
// Per frame, every rig gets exactly one task on an ants worker pool. The task
// runs the Animator for that rig, then Rig.Sync (push parameters, push parts,
// update the core, pull drawables), then samples the result. The driver waits
// for every task before recording, so no core is ever touched by two
// goroutines and no rig starts frame n+1 before all rigs finished frame n.
//
// Recording happens on the Run goroutine in instance order. Each recorded
// frame is stamped with the next seq from Clock, so the recording order is
// the same no matter which worker finished first.
//
// A run either drives a fixed number of frames or runs until its context is
// cancelled. FrameQuota bounds both.
package engine
