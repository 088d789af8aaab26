// Package preview renders pulled drawables to a WebP image.
//
// Drawables are drawn as closed wireframes with their vertices marked,
// in render order, using the pulled opacity as alpha. Rendering happens at a
// supersample factor and is downscaled with Catmull-Rom filtering.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"slices"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/roach88/mocsync/internal/model"
)

// Options controls the output image.
type Options struct {
	// Size is the edge length of the square output in pixels.
	Size int

	// Supersample is the render scale applied before downscaling.
	Supersample int

	// Margin is the fraction of the canvas left empty on each side.
	Margin float64

	Background color.NRGBA
}

// DefaultOptions returns a 256px preview rendered at 4x.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 4,
		Margin:      0.05,
		Background:  color.NRGBA{R: 24, G: 24, B: 28, A: 255},
	}
}

var palette = []color.NRGBA{
	{R: 239, G: 71, B: 111},
	{R: 255, G: 209, B: 102},
	{R: 6, G: 214, B: 160},
	{R: 17, G: 138, B: 178},
	{R: 189, G: 147, B: 249},
}

// Render draws the visible drawables. Drawables that are not visible, have
// zero opacity or have no vertices are skipped.
func Render(drawables []*model.Drawable, opts Options) *image.RGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}

	var visible []*model.Drawable
	for _, d := range drawables {
		if d.Data.IsVisible() && d.Data.Opacity > 0 && len(d.Data.VertexPositions) > 0 {
			visible = append(visible, d)
		}
	}
	slices.SortStableFunc(visible, func(a, b *model.Drawable) int {
		return int(a.Data.RenderOrder) - int(b.Data.RenderOrder)
	})

	big := opts.Size * opts.Supersample
	canvas := image.NewRGBA(image.Rect(0, 0, big, big))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)

	if len(visible) > 0 {
		project := fit(visible, float64(big), opts.Margin)
		for _, d := range visible {
			c := palette[d.Index%len(palette)]
			c.A = uint8(math.Round(float64(clamp01(d.Data.Opacity)) * 255))
			drawWireframe(canvas, d.Data.VertexPositions, project, c, opts.Supersample)
		}
	}

	if opts.Supersample == 1 {
		return canvas
	}
	dst := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// WriteFile renders drawables and writes the WebP to path.
func WriteFile(path string, drawables []*model.Drawable, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := Encode(f, Render(drawables, opts)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fit maps model space into a size x size canvas with y pointing up,
// preserving aspect ratio.
func fit(drawables []*model.Drawable, size, margin float64) func(model.Vec3) (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, d := range drawables {
		for _, v := range d.Data.VertexPositions {
			minX = math.Min(minX, float64(v.X))
			maxX = math.Max(maxX, float64(v.X))
			minY = math.Min(minY, float64(v.Y))
			maxY = math.Max(maxY, float64(v.Y))
		}
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span <= 0 {
		span = 1
	}
	usable := size * (1 - 2*margin)
	scale := usable / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return func(v model.Vec3) (float64, float64) {
		x := size/2 + (float64(v.X)-cx)*scale
		y := size/2 - (float64(v.Y)-cy)*scale
		return x, y
	}
}

func drawWireframe(img *image.RGBA, verts []model.Vec3, project func(model.Vec3) (float64, float64), c color.NRGBA, width int) {
	n := len(verts)
	for i := range verts {
		x0, y0 := project(verts[i])
		if n > 1 {
			x1, y1 := project(verts[(i+1)%n])
			line(img, x0, y0, x1, y1, c, width)
		}
		dot(img, x0, y0, c, 2*width)
	}
}

// line steps one pixel at a time along the longer axis.
func line(img *image.RGBA, x0, y0, x1, y1 float64, c color.NRGBA, width int) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		dot(img, x0, y0, c, width)
		return
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		dot(img, x0+dx*t, y0+dy*t, c, width)
	}
}

// dot blends a size x size square centered on (x, y).
func dot(img *image.RGBA, x, y float64, c color.NRGBA, size int) {
	half := size / 2
	px, py := int(math.Floor(x)), int(math.Floor(y))
	for yy := py - half; yy < py-half+size; yy++ {
		for xx := px - half; xx < px-half+size; xx++ {
			blend(img, xx, yy, c)
		}
	}
}

// blend composites c over the pixel at (x, y). img is premultiplied.
func blend(img *image.RGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	i := img.PixOffset(x, y)
	a := uint32(c.A)
	inv := 255 - a
	img.Pix[i+0] = uint8((uint32(c.R)*a + uint32(img.Pix[i+0])*inv) / 255)
	img.Pix[i+1] = uint8((uint32(c.G)*a + uint32(img.Pix[i+1])*inv) / 255)
	img.Pix[i+2] = uint8((uint32(c.B)*a + uint32(img.Pix[i+2])*inv) / 255)
	img.Pix[i+3] = uint8((255*a + uint32(img.Pix[i+3])*inv) / 255)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
