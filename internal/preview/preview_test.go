package preview

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/model"
)

func triangle(index int, opacity float32, flags model.DynamicFlags) *model.Drawable {
	return &model.Drawable{
		ID:    "ArtMesh",
		Index: index,
		Data: model.DynamicDrawableData{
			Flags:   flags,
			Opacity: opacity,
			VertexPositions: []model.Vec3{
				{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1},
			},
		},
	}
}

func opaque(t *testing.T, opts Options, drawables ...*model.Drawable) int {
	t.Helper()
	img := Render(drawables, opts)
	bg := opts.Background
	n := 0
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R != bg.R || c.G != bg.G || c.B != bg.B {
				n++
			}
		}
	}
	return n
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Size = 32
	opts.Supersample = 1
	return opts
}

func TestRender_Size(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 48
	opts.Supersample = 3
	img := Render([]*model.Drawable{triangle(0, 1, model.IsVisible)}, opts)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestRender_DrawsVisibleDrawables(t *testing.T) {
	assert.Positive(t, opaque(t, smallOptions(), triangle(0, 1, model.IsVisible)))
}

func TestRender_SkipsHiddenDrawables(t *testing.T) {
	opts := smallOptions()
	assert.Zero(t, opaque(t, opts, triangle(0, 1, 0)), "not visible")
	assert.Zero(t, opaque(t, opts, triangle(0, 0, model.IsVisible)), "zero opacity")
	assert.Zero(t, opaque(t, opts), "nothing to draw")
}

func TestRender_BackgroundFill(t *testing.T) {
	opts := smallOptions()
	opts.Background = color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	img := Render(nil, opts)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, img.RGBAAt(0, 0))
}

func TestRender_DegenerateBounds(t *testing.T) {
	d := &model.Drawable{
		Data: model.DynamicDrawableData{
			Flags:           model.IsVisible,
			Opacity:         1,
			VertexPositions: []model.Vec3{{X: 2, Y: 2}},
		},
	}
	assert.Positive(t, opaque(t, smallOptions(), d))
}

func TestEncode_WebP(t *testing.T) {
	img := Render([]*model.Drawable{triangle(0, 0.5, model.IsVisible)}, smallOptions())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	data := buf.Bytes()
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.webp")
	require.NoError(t, WriteFile(path, []*model.Drawable{triangle(1, 1, model.IsVisible)}, smallOptions()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "frame.webp"), nil, smallOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create preview")
}
