package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynamicFlagsDirtyPredicate(t *testing.T) {
	data := DynamicDrawableData{}
	assert.False(t, data.AreVertexPositionsDirty())

	data.Flags = IsVisible | OpacityDidChange
	assert.False(t, data.AreVertexPositionsDirty())
	assert.True(t, data.IsVisible())

	data.Flags |= VertexPositionsDidChange
	assert.True(t, data.AreVertexPositionsDirty())
}

func TestDynamicFlagsMatchNativeBits(t *testing.T) {
	assert.Equal(t, DynamicFlags(0x01), IsVisible)
	assert.Equal(t, DynamicFlags(0x02), VisibilityDidChange)
	assert.Equal(t, DynamicFlags(0x04), OpacityDidChange)
	assert.Equal(t, DynamicFlags(0x08), DrawOrderDidChange)
	assert.Equal(t, DynamicFlags(0x10), RenderOrderDidChange)
	assert.Equal(t, DynamicFlags(0x20), VertexPositionsDidChange)
	assert.Equal(t, DynamicFlags(0x40), BlendColorDidChange)
}

func TestDynamicFlagsString(t *testing.T) {
	tests := []struct {
		flags DynamicFlags
		want  string
	}{
		{0, "none"},
		{IsVisible, "visible"},
		{IsVisible | VertexPositionsDidChange, "visible|vertex_positions_changed"},
		{DrawOrderDidChange | RenderOrderDidChange, "draw_order_changed|render_order_changed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.String())

			parsed, ok := ParseDynamicFlags(tt.want)
			assert.True(t, ok)
			assert.Equal(t, tt.flags, parsed)
		})
	}
}

func TestParseDynamicFlagsUnknown(t *testing.T) {
	_, ok := ParseDynamicFlags("visible|sparkly")
	assert.False(t, ok)
}

func TestDynamicFlagsText(t *testing.T) {
	b, err := (IsVisible | OpacityDidChange).MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "visible|opacity_changed", string(b))

	var f DynamicFlags
	assert.NoError(t, f.UnmarshalText([]byte("vertex_positions_changed")))
	assert.Equal(t, VertexPositionsDidChange, f)
	assert.Error(t, f.UnmarshalText([]byte("bogus")))
}

func TestParameterClamp(t *testing.T) {
	p := &Parameter{Value: 45, Minimum: -30, Maximum: 30}
	p.Clamp()
	assert.Equal(t, float32(30), p.Value)

	p.Value = -31
	p.Clamp()
	assert.Equal(t, float32(-30), p.Value)

	// Unknown range leaves the value alone.
	unbound := &Parameter{Value: 99}
	unbound.Clamp()
	assert.Equal(t, float32(99), unbound.Value)
}

func TestEntitiesImplementIndexed(t *testing.T) {
	var _ Indexed = (*Parameter)(nil)
	var _ Indexed = (*Part)(nil)
	var _ Indexed = (*Drawable)(nil)

	d := &Drawable{ID: "ArtMesh3"}
	d.SetNativeIndex(3)
	assert.Equal(t, 3, d.NativeIndex())
	assert.Equal(t, "ArtMesh3", d.EntityID())
}
