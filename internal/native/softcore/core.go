// Package softcore is a pure-Go native.Core.
//
// It owns every buffer the Cubism Core API exposes and reproduces the native
// side of the synchronization protocol: it assigns native offsets from a
// layout, deforms vertices on Update, raises dynamic flags for what changed,
// and clears them on ResetDrawableDynamicFlags. Mutation and introspection
// hooks let tests act as the native side.
//
// Storage is laid out in native order: slot i of every buffer belongs to the
// entity whose native offset is i.
package softcore

import (
	"fmt"
	"sort"

	"github.com/roach88/mocsync/internal/layout"
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native"
)

type weight struct {
	param int // native parameter index
	delta model.Vec2
}

// Core is a software core model. Not safe for concurrent use.
type Core struct {
	name string

	paramIDs      []string
	paramValues   []float32
	paramMinimums []float32
	paramMaximums []float32
	paramDefaults []float32

	partIDs       []string
	partOpacities []float32

	drawableIDs  []string
	vertexCounts []int32
	rest         [][]model.Vec2
	weights      [][]weight
	positions    [][]model.Vec2
	vertexTable  []*model.Vec2
	flags        []model.DynamicFlags
	opacities    []float32
	drawOrders   []int32
	renderOrders []int32

	// last* hold the values observed by the previous Update, so Update can
	// flag only what changed.
	lastVisible      []bool
	lastOpacities    []float32
	lastDrawOrders   []int32
	lastRenderOrders []int32

	resets  int
	updates int
	closed  bool
}

var _ native.Core = (*Core)(nil)

// New builds a core from a layout. Every drawable starts visible with all
// change flags raised, as a freshly initialized native model does.
func New(spec *layout.Spec) *Core {
	c := &Core{name: spec.Name}

	np := len(spec.Parameters)
	c.paramIDs = make([]string, np)
	c.paramValues = make([]float32, np)
	c.paramMinimums = make([]float32, np)
	c.paramMaximums = make([]float32, np)
	c.paramDefaults = make([]float32, np)
	paramIndex := make(map[string]int, np)
	for i, p := range spec.Parameters {
		j := spec.NativeIndex(i, np)
		c.paramIDs[j] = p.ID
		c.paramValues[j] = p.Default
		c.paramMinimums[j] = p.Min
		c.paramMaximums[j] = p.Max
		c.paramDefaults[j] = p.Default
		paramIndex[p.ID] = j
	}

	nq := len(spec.Parts)
	c.partIDs = make([]string, nq)
	c.partOpacities = make([]float32, nq)
	for i, p := range spec.Parts {
		j := spec.NativeIndex(i, nq)
		c.partIDs[j] = p.ID
		c.partOpacities[j] = p.Opacity
	}

	nd := len(spec.Drawables)
	c.drawableIDs = make([]string, nd)
	c.vertexCounts = make([]int32, nd)
	c.rest = make([][]model.Vec2, nd)
	c.weights = make([][]weight, nd)
	c.positions = make([][]model.Vec2, nd)
	c.flags = make([]model.DynamicFlags, nd)
	c.opacities = make([]float32, nd)
	c.drawOrders = make([]int32, nd)
	c.renderOrders = make([]int32, nd)
	c.lastVisible = make([]bool, nd)
	c.lastOpacities = make([]float32, nd)
	c.lastDrawOrders = make([]int32, nd)
	c.lastRenderOrders = make([]int32, nd)
	for i, d := range spec.Drawables {
		j := spec.NativeIndex(i, nd)
		c.drawableIDs[j] = d.ID
		c.vertexCounts[j] = int32(len(d.Vertices))
		c.rest[j] = append([]model.Vec2(nil), d.Vertices...)
		c.positions[j] = append([]model.Vec2(nil), d.Vertices...)
		for id, delta := range d.Weights {
			if pi, ok := paramIndex[id]; ok {
				c.weights[j] = append(c.weights[j], weight{param: pi, delta: delta})
			}
		}
		sort.Slice(c.weights[j], func(a, b int) bool { return c.weights[j][a].param < c.weights[j][b].param })
		c.opacities[j] = d.Opacity
		c.drawOrders[j] = d.DrawOrder
		c.renderOrders[j] = d.RenderOrder
		c.flags[j] = model.IsVisible | model.VisibilityDidChange | model.OpacityDidChange |
			model.DrawOrderDidChange | model.RenderOrderDidChange | model.VertexPositionsDidChange
		if d.Opacity <= 0 {
			c.flags[j] &^= model.IsVisible
		}
		c.lastVisible[j] = d.Opacity > 0
		c.lastOpacities[j] = d.Opacity
		c.lastDrawOrders[j] = d.DrawOrder
		c.lastRenderOrders[j] = d.RenderOrder
	}
	c.rebuildVertexTable()
	c.deform()
	return c
}

// Name returns the layout name the core was built from.
func (c *Core) Name() string { return c.name }

func (c *Core) check() {
	if c.closed {
		panic(fmt.Sprintf("softcore: use of closed core %q", c.name))
	}
}

func (c *Core) rebuildVertexTable() {
	c.vertexTable = make([]*model.Vec2, len(c.positions))
	for i, p := range c.positions {
		if len(p) > 0 {
			c.vertexTable[i] = &p[0]
		}
	}
}

func (c *Core) ParameterCount() int { c.check(); return len(c.paramIDs) }
func (c *Core) PartCount() int      { c.check(); return len(c.partIDs) }
func (c *Core) DrawableCount() int  { c.check(); return len(c.drawableIDs) }

func (c *Core) ParameterIDs() []string { c.check(); return append([]string(nil), c.paramIDs...) }
func (c *Core) PartIDs() []string      { c.check(); return append([]string(nil), c.partIDs...) }
func (c *Core) DrawableIDs() []string  { c.check(); return append([]string(nil), c.drawableIDs...) }

func (c *Core) ParameterValues() native.Address {
	c.check()
	return native.AddressOf(c.paramValues)
}

func (c *Core) ParameterMinimumValues() native.Address {
	c.check()
	return native.AddressOf(c.paramMinimums)
}

func (c *Core) ParameterMaximumValues() native.Address {
	c.check()
	return native.AddressOf(c.paramMaximums)
}

func (c *Core) ParameterDefaultValues() native.Address {
	c.check()
	return native.AddressOf(c.paramDefaults)
}

func (c *Core) PartOpacities() native.Address {
	c.check()
	return native.AddressOf(c.partOpacities)
}

func (c *Core) DrawableVertexCounts() native.Address {
	c.check()
	return native.AddressOf(c.vertexCounts)
}

func (c *Core) DrawableVertexPositions() native.Address {
	c.check()
	return native.AddressOf(c.vertexTable)
}

func (c *Core) DrawableDynamicFlags() native.Address {
	c.check()
	return native.AddressOf(c.flags)
}

func (c *Core) DrawableOpacities() native.Address {
	c.check()
	return native.AddressOf(c.opacities)
}

func (c *Core) DrawableDrawOrders() native.Address {
	c.check()
	return native.AddressOf(c.drawOrders)
}

func (c *Core) DrawableRenderOrders() native.Address {
	c.check()
	return native.AddressOf(c.renderOrders)
}

// ResetDrawableDynamicFlags clears every drawable's flags.
func (c *Core) ResetDrawableDynamicFlags() {
	c.check()
	clear(c.flags)
	c.resets++
}

// Update deforms every drawable from the current parameter values and
// raises change flags for whatever differs from the previous update.
// IsVisible is recomputed for every drawable.
func (c *Core) Update() {
	c.check()
	c.updates++
	c.deform()

	for i := range c.drawableIDs {
		visible := c.opacities[i] > 0
		if visible {
			c.flags[i] |= model.IsVisible
		} else {
			c.flags[i] &^= model.IsVisible
		}
		if visible != c.lastVisible[i] {
			c.flags[i] |= model.VisibilityDidChange
		}
		if c.opacities[i] != c.lastOpacities[i] {
			c.flags[i] |= model.OpacityDidChange
		}
		if c.drawOrders[i] != c.lastDrawOrders[i] {
			c.flags[i] |= model.DrawOrderDidChange
		}
		if c.renderOrders[i] != c.lastRenderOrders[i] {
			c.flags[i] |= model.RenderOrderDidChange
		}
		c.lastVisible[i] = visible
		c.lastOpacities[i] = c.opacities[i]
		c.lastDrawOrders[i] = c.drawOrders[i]
		c.lastRenderOrders[i] = c.renderOrders[i]
	}
}

// deform recomputes positions as rest + sum(value * delta) and flags the
// drawables whose positions moved.
func (c *Core) deform() {
	for i, rest := range c.rest {
		if len(c.weights[i]) == 0 {
			continue
		}
		var off model.Vec2
		for _, w := range c.weights[i] {
			v := c.paramValues[w.param]
			off.X += v * w.delta.X
			off.Y += v * w.delta.Y
		}
		changed := false
		pos := c.positions[i]
		for v := range rest {
			next := model.Vec2{X: rest[v].X + off.X, Y: rest[v].Y + off.Y}
			if pos[v] != next {
				pos[v] = next
				changed = true
			}
		}
		if changed {
			c.flags[i] |= model.VertexPositionsDidChange
		}
	}
}

// Close invalidates the core. Any later accessor call panics.
func (c *Core) Close() {
	c.closed = true
}
