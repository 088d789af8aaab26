package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/model"
)

func TestMarshalVertices_Nil(t *testing.T) {
	assert.Nil(t, marshalVertices(nil))

	vs, err := unmarshalVertices(nil)
	require.NoError(t, err)
	assert.Nil(t, vs)
}

func TestMarshalVertices_Layout(t *testing.T) {
	data := marshalVertices([]model.Vec2{{X: 1, Y: -2}})

	// 1.0 = 0x3f800000, -2.0 = 0xc0000000, little-endian.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}, data)
}

func TestUnmarshalVertices_BadLength(t *testing.T) {
	_, err := unmarshalVertices([]byte{1, 2, 3})
	assert.Error(t, err)
}
