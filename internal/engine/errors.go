package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while driving frames.
//
// Runtime errors include:
//   - Quota exceeded: a run asked for more frames than MaxFrames
//   - Task failed: a rig's frame task panicked or could not be scheduled
//   - Record failed: a frame could not be written to the store
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Session identifies the affected recording session, if any.
	Session string

	// Frame is the frame number being driven.
	Frame int

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeQuotaExceeded indicates a run exceeded MaxFrames.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeTaskFailed indicates a rig task panicked or was rejected by the pool.
	ErrCodeTaskFailed RuntimeErrorCode = "TASK_FAILED"

	// ErrCodeRecordFailed indicates a store write failed.
	ErrCodeRecordFailed RuntimeErrorCode = "RECORD_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s (frame=%d)", e.Code, e.Message, e.Frame)
	if e.Session != "" {
		msg = fmt.Sprintf("%s: %s (session=%s, frame=%d)", e.Code, e.Message, e.Session, e.Frame)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

// IsQuotaError returns true if the error is a quota exceeded error.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeQuotaExceeded
	}
	return false
}

// NewQuotaError creates a RuntimeError for an exhausted frame quota.
func NewQuotaError(frame, maxFrames int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("run exceeded max frames (%d >= %d)", frame, maxFrames),
		Frame:   frame,
		Details: map[string]string{
			"frame":      fmt.Sprintf("%d", frame),
			"max_frames": fmt.Sprintf("%d", maxFrames),
		},
	}
}

func newTaskError(session string, frame int, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTaskFailed,
		Message: "rig task failed",
		Session: session,
		Frame:   frame,
		Err:     err,
	}
}

func newRecordError(session string, frame int, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeRecordFailed,
		Message: "record frame",
		Session: session,
		Frame:   frame,
		Err:     err,
	}
}
