package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameQuota_WithinLimit(t *testing.T) {
	q := NewFrameQuota(10)

	for i := 0; i < 10; i++ {
		assert.NoError(t, q.Check(), "frame %d should be allowed", i)
	}
	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxFrames())
}

func TestFrameQuota_ExceedsLimit(t *testing.T) {
	q := NewFrameQuota(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Check())
	}

	err := q.Check()
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeQuotaExceeded, re.Code)
	assert.Equal(t, "3", re.Details["max_frames"])
	assert.Equal(t, 3, q.Current(), "rejected frame is not counted")
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, IsQuotaError(NewQuotaError(5, 5)))
	assert.True(t, IsQuotaError(fmt.Errorf("wrapped: %w", NewQuotaError(5, 5))))
	assert.False(t, IsQuotaError(newTaskError("s", 0, fmt.Errorf("boom"))))
	assert.False(t, IsQuotaError(fmt.Errorf("plain")))
}

func TestRuntimeError_Message(t *testing.T) {
	err := newRecordError("s1", 4, fmt.Errorf("disk full"))

	assert.Equal(t, "RECORD_FAILED: record frame (session=s1, frame=4): disk full", err.Error())
	assert.EqualError(t, err.Unwrap(), "disk full")
}
