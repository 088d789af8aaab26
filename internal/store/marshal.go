package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/roach88/mocsync/internal/model"
)

// vertexSize is the encoded size of one model.Vec2.
const vertexSize = 8

// marshalVertices packs positions as little-endian float32 pairs.
// A nil slice encodes as NULL.
func marshalVertices(vs []model.Vec2) []byte {
	if vs == nil {
		return nil
	}
	buf := make([]byte, 0, len(vs)*vertexSize)
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.Y))
	}
	return buf
}

// unmarshalVertices reverses marshalVertices. NULL decodes as nil and an
// empty blob as an empty, non-nil slice.
func unmarshalVertices(data []byte) ([]model.Vec2, error) {
	if data == nil {
		return nil, nil
	}
	if len(data)%vertexSize != 0 {
		return nil, fmt.Errorf("unmarshal vertices: blob length %d is not a multiple of %d", len(data), vertexSize)
	}
	vs := make([]model.Vec2, len(data)/vertexSize)
	for i := range vs {
		off := i * vertexSize
		vs[i].X = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		vs[i].Y = math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))
	}
	return vs, nil
}
