package mirror

import (
	"fmt"

	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native"
)

// Rig owns the three bound collections of one core model.
type Rig struct {
	core       native.Core
	parameters *Bound[*model.Parameter]
	parts      *Bound[*model.Part]
	drawables  *Bound[*model.Drawable]
	snapshots  []DrawableSnapshot
}

// NewRig binds parameters, parts and drawables against core, in that order.
func NewRig(core native.Core, params []*model.Parameter, parts []*model.Part, drawables []*model.Drawable) (*Rig, error) {
	bp, err := BindParameters(params, core)
	if err != nil {
		return nil, fmt.Errorf("bind parameters: %w", err)
	}
	bq, err := BindParts(parts, core)
	if err != nil {
		return nil, fmt.Errorf("bind parts: %w", err)
	}
	bd, err := BindDrawables(drawables, core)
	if err != nil {
		return nil, fmt.Errorf("bind drawables: %w", err)
	}
	return &Rig{
		core:       core,
		parameters: bp,
		parts:      bq,
		drawables:  bd,
		snapshots:  make([]DrawableSnapshot, 0, bd.Len()),
	}, nil
}

// Core returns the core the rig is bound to.
func (r *Rig) Core() native.Core { return r.core }

func (r *Rig) Parameters() *Bound[*model.Parameter] { return r.parameters }
func (r *Rig) Parts() *Bound[*model.Part]           { return r.parts }
func (r *Rig) Drawables() *Bound[*model.Drawable]   { return r.drawables }

// Parameter returns the parameter with id, or nil.
func (r *Rig) Parameter(id string) *model.Parameter {
	return model.FindParameter(r.parameters.items, id)
}

// Part returns the part with id, or nil.
func (r *Rig) Part(id string) *model.Part {
	return model.FindPart(r.parts.items, id)
}

// Drawable returns the drawable with id, or nil.
func (r *Rig) Drawable(id string) *model.Drawable {
	return model.FindDrawable(r.drawables.items, id)
}

// Sync runs one frame: push parameters and parts, update the core, pull
// drawables. The returned snapshots are reused by the next Sync.
func (r *Rig) Sync() []DrawableSnapshot {
	PushParameters(r.parameters, r.core)
	PushParts(r.parts, r.core)
	r.core.Update()
	r.snapshots = PullDrawables(r.drawables, r.core, r.snapshots)
	return r.snapshots
}

// Pull reads drawables without pushing or updating.
func (r *Rig) Pull() []DrawableSnapshot {
	r.snapshots = PullDrawables(r.drawables, r.core, r.snapshots)
	return r.snapshots
}

// Snapshots returns what the last Sync or Pull observed. The slice is reused
// by the next call.
func (r *Rig) Snapshots() []DrawableSnapshot { return r.snapshots }
