package model

// Vec2 is a 2D position in model space. Layout-compatible with csmVector2.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Vec3 is the managed vertex representation. Pulls write X and Y only.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Identified is implemented by every entity that can be looked up by ID.
type Identified interface {
	EntityID() string
}

// Indexed is implemented by entities bound to a native offset.
type Indexed interface {
	Identified
	NativeIndex() int
	SetNativeIndex(i int)
}

// Parameter mirrors one native parameter slot.
type Parameter struct {
	ID    string  `json:"id"`
	Index int     `json:"index"`
	Value float32 `json:"value"`

	// Range and default are read from the core when the parameter is bound.
	Minimum float32 `json:"minimum"`
	Maximum float32 `json:"maximum"`
	Default float32 `json:"default"`
}

func (p *Parameter) EntityID() string     { return p.ID }
func (p *Parameter) NativeIndex() int     { return p.Index }
func (p *Parameter) SetNativeIndex(i int) { p.Index = i }

// Clamp limits Value to [Minimum, Maximum]. No-op until a valid range is known.
func (p *Parameter) Clamp() {
	if p.Minimum >= p.Maximum {
		return
	}
	if p.Value < p.Minimum {
		p.Value = p.Minimum
	} else if p.Value > p.Maximum {
		p.Value = p.Maximum
	}
}

// Part mirrors one native part slot.
type Part struct {
	ID      string  `json:"id"`
	Index   int     `json:"index"`
	Opacity float32 `json:"opacity"`
}

func (p *Part) EntityID() string     { return p.ID }
func (p *Part) NativeIndex() int     { return p.Index }
func (p *Part) SetNativeIndex(i int) { p.Index = i }

// Drawable mirrors one native drawable (art mesh).
type Drawable struct {
	ID    string              `json:"id"`
	Index int                 `json:"index"`
	Data  DynamicDrawableData `json:"data"`
}

func (d *Drawable) EntityID() string     { return d.ID }
func (d *Drawable) NativeIndex() int     { return d.Index }
func (d *Drawable) SetNativeIndex(i int) { d.Index = i }

// DynamicDrawableData is the per-frame volatile state of a drawable.
//
// VertexPositions has a fixed length once the drawable is bound.
type DynamicDrawableData struct {
	Flags           DynamicFlags `json:"flags"`
	Opacity         float32      `json:"opacity"`
	DrawOrder       int32        `json:"draw_order"`
	RenderOrder     int32        `json:"render_order"`
	VertexPositions []Vec3       `json:"vertex_positions"`
}

// AreVertexPositionsDirty reports whether the native side changed the
// vertex positions since the last flag reset.
func (d *DynamicDrawableData) AreVertexPositionsDirty() bool {
	return d.Flags.Has(VertexPositionsDidChange)
}

// IsVisible reports the visibility bit of the last pulled flags.
func (d *DynamicDrawableData) IsVisible() bool {
	return d.Flags.Has(IsVisible)
}
