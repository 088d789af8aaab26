package model

import (
	"fmt"
	"strings"
)

// DynamicFlags is the per-drawable bitfield written by the core each update.
type DynamicFlags uint8

// Bits match the native csmFlags constants.
const (
	IsVisible DynamicFlags = 1 << iota
	VisibilityDidChange
	OpacityDidChange
	DrawOrderDidChange
	RenderOrderDidChange
	VertexPositionsDidChange
	BlendColorDidChange
)

var flagNames = []struct {
	flag DynamicFlags
	name string
}{
	{IsVisible, "visible"},
	{VisibilityDidChange, "visibility_changed"},
	{OpacityDidChange, "opacity_changed"},
	{DrawOrderDidChange, "draw_order_changed"},
	{RenderOrderDidChange, "render_order_changed"},
	{VertexPositionsDidChange, "vertex_positions_changed"},
	{BlendColorDidChange, "blend_color_changed"},
}

// Has reports whether every bit in f is set.
func (d DynamicFlags) Has(f DynamicFlags) bool {
	return d&f == f
}

// String renders the set bits as a "|"-joined list, or "none".
func (d DynamicFlags) String() string {
	if d == 0 {
		return "none"
	}
	var names []string
	for _, fn := range flagNames {
		if d.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseDynamicFlags is the inverse of String.
func ParseDynamicFlags(s string) (DynamicFlags, bool) {
	if s == "" || s == "none" {
		return 0, true
	}
	var out DynamicFlags
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, fn := range flagNames {
			if fn.name == strings.TrimSpace(part) {
				out |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return out, true
}

// MarshalText renders flags by name, so JSON and YAML show
// "visible|vertex_positions_changed" rather than a number.
func (d DynamicFlags) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (d *DynamicFlags) UnmarshalText(b []byte) error {
	f, ok := ParseDynamicFlags(string(b))
	if !ok {
		return fmt.Errorf("unknown dynamic flags %q", b)
	}
	*d = f
	return nil
}
