package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/layout"
	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native/softcore"
)

// HaruLayout returns a small layout with reverse native offsets: three
// parameters, two parts and two drawables, one of them deformed by
// ParamAngleX.
func HaruLayout() *layout.Spec {
	return &layout.Spec{
		Name:       "Haru",
		IndexOrder: layout.IndexReverse,
		Parameters: []layout.ParameterSpec{
			{ID: "ParamAngleX", Min: -30, Max: 30},
			{ID: "ParamAngleY", Min: -30, Max: 30},
			{ID: "ParamEyeLOpen", Min: 0, Max: 1, Default: 1},
		},
		Parts: []layout.PartSpec{
			{ID: "PartFace", Opacity: 1},
			{ID: "PartHair", Opacity: 1},
		},
		Drawables: []layout.DrawableSpec{
			{
				ID:        "ArtMeshFace",
				Vertices:  []model.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1}},
				Weights:   map[string]model.Vec2{"ParamAngleX": {X: 0.01, Y: 0}},
				Opacity:   1,
				DrawOrder: 500,
			},
			{
				ID:          "ArtMeshHair",
				Vertices:    []model.Vec2{{X: 0, Y: 1}, {X: 0.5, Y: 1.5}},
				Opacity:     1,
				DrawOrder:   500,
				RenderOrder: 1,
			},
		},
	}
}

// NewSoftRig builds a software core for spec and a rig bound to it.
func NewSoftRig(t testing.TB, spec *layout.Spec) (*softcore.Core, *mirror.Rig) {
	t.Helper()
	core := softcore.New(spec)
	params, parts, drawables := spec.Entities()
	rig, err := mirror.NewRig(core, params, parts, drawables)
	require.NoError(t, err)
	return core, rig
}
