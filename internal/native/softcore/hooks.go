package softcore

import (
	"fmt"

	"github.com/roach88/mocsync/internal/model"
)

// The methods below act on the core as the native side would. Indices are
// native offsets.

// ParameterValue returns the value in native parameter slot i.
func (c *Core) ParameterValue(i int) float32 { c.check(); return c.paramValues[i] }

// SetParameterValue writes native parameter slot i.
func (c *Core) SetParameterValue(i int, v float32) { c.check(); c.paramValues[i] = v }

// PartOpacity returns the opacity in native part slot i.
func (c *Core) PartOpacity(i int) float32 { c.check(); return c.partOpacities[i] }

// SetPartOpacity writes native part slot i.
func (c *Core) SetPartOpacity(i int, v float32) { c.check(); c.partOpacities[i] = v }

// DrawableFlags returns the current dynamic flags of drawable i.
func (c *Core) DrawableFlags(i int) model.DynamicFlags { c.check(); return c.flags[i] }

// SetDrawableFlags overwrites the dynamic flags of drawable i.
func (c *Core) SetDrawableFlags(i int, f model.DynamicFlags) { c.check(); c.flags[i] = f }

// RaiseDrawableFlags ORs f into the dynamic flags of drawable i.
func (c *Core) RaiseDrawableFlags(i int, f model.DynamicFlags) { c.check(); c.flags[i] |= f }

// AnyDrawableFlags reports whether any drawable has a non-zero flag byte.
func (c *Core) AnyDrawableFlags() bool {
	c.check()
	for _, f := range c.flags {
		if f != 0 {
			return true
		}
	}
	return false
}

// VertexPositions returns a copy of drawable i's current positions.
func (c *Core) VertexPositions(i int) []model.Vec2 {
	c.check()
	return append([]model.Vec2(nil), c.positions[i]...)
}

// SetVertexPositions overwrites drawable i's positions without raising any
// flag. pos must have exactly the drawable's vertex count.
func (c *Core) SetVertexPositions(i int, pos []model.Vec2) error {
	c.check()
	if len(pos) != len(c.positions[i]) {
		return fmt.Errorf("softcore: drawable %d has %d vertices, got %d", i, len(c.positions[i]), len(pos))
	}
	copy(c.positions[i], pos)
	return nil
}

// SetDrawableOpacity writes drawable i's opacity.
func (c *Core) SetDrawableOpacity(i int, v float32) { c.check(); c.opacities[i] = v }

// SetDrawOrder writes drawable i's draw order.
func (c *Core) SetDrawOrder(i int, v int32) { c.check(); c.drawOrders[i] = v }

// SetRenderOrder writes drawable i's render order.
func (c *Core) SetRenderOrder(i int, v int32) { c.check(); c.renderOrders[i] = v }

// ResetCount returns how many times ResetDrawableDynamicFlags was called.
func (c *Core) ResetCount() int { return c.resets }

// UpdateCount returns how many times Update was called.
func (c *Core) UpdateCount() int { return c.updates }

// ParameterIndex returns the native offset of the parameter with id.
func (c *Core) ParameterIndex(id string) (int, bool) { return indexOf(c.paramIDs, id) }

// PartIndex returns the native offset of the part with id.
func (c *Core) PartIndex(id string) (int, bool) { return indexOf(c.partIDs, id) }

// DrawableIndex returns the native offset of the drawable with id.
func (c *Core) DrawableIndex(id string) (int, bool) { return indexOf(c.drawableIDs, id) }

func indexOf(ids []string, id string) (int, bool) {
	for i, x := range ids {
		if x == id {
			return i, true
		}
	}
	return -1, false
}

// Repack moves every buffer to fresh memory, as a native model may between
// frames. Addresses handed out before Repack keep pointing at the old,
// now-detached copies.
func (c *Core) Repack() {
	c.check()
	c.paramValues = clone(c.paramValues)
	c.paramMinimums = clone(c.paramMinimums)
	c.paramMaximums = clone(c.paramMaximums)
	c.paramDefaults = clone(c.paramDefaults)
	c.partOpacities = clone(c.partOpacities)
	c.vertexCounts = clone(c.vertexCounts)
	for i := range c.positions {
		c.positions[i] = clone(c.positions[i])
	}
	c.flags = clone(c.flags)
	c.opacities = clone(c.opacities)
	c.drawOrders = clone(c.drawOrders)
	c.renderOrders = clone(c.renderOrders)
	c.rebuildVertexTable()
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
