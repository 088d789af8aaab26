package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mocsync/internal/model"
)

const haruLayout = `
model: Haru: {
	index_order: "reverse"
	parameters: [
		{id: "ParamAngleX", min: -30, max: 30, default: 0},
		{id: "ParamAngleY", min: -30, max: 30},
		{id: "ParamEyeLOpen", max: 1, default: 1},
	]
	parts: [
		{id: "PartFace", opacity: 1},
		{id: "PartArmL", opacity: 0.5},
	]
	drawables: [{
		id:           "ArtMeshFace"
		vertices:     [[0, 0], [1, 0], [0, 1]]
		weights:      ParamAngleX: [0.01, 0]
		opacity:      1
		draw_order:   500
		render_order: 1
	}, {
		id:       "ArtMeshEye"
		vertices: [[0.5, 0.5]]
	}]
}
`

func compileHaru(t *testing.T) *Spec {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(haruLayout)
	require.NoError(t, v.Err())

	spec, err := Compile(v.LookupPath(cue.ParsePath("model.Haru")))
	require.NoError(t, err)
	return spec
}

func TestCompileBasic(t *testing.T) {
	spec := compileHaru(t)

	assert.Equal(t, "Haru", spec.Name)
	assert.Equal(t, IndexReverse, spec.IndexOrder)

	require.Len(t, spec.Parameters, 3)
	assert.Equal(t, ParameterSpec{ID: "ParamAngleX", Min: -30, Max: 30, Default: 0}, spec.Parameters[0])
	assert.Equal(t, float32(-30), spec.Parameters[1].Default, "default falls back to min")
	assert.Equal(t, float32(1), spec.Parameters[2].Default)

	require.Len(t, spec.Parts, 2)
	assert.Equal(t, float32(0.5), spec.Parts[1].Opacity)

	require.Len(t, spec.Drawables, 2)
	face := spec.Drawables[0]
	assert.Equal(t, []model.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, face.Vertices)
	assert.Equal(t, model.Vec2{X: 0.01, Y: 0}, face.Weights["ParamAngleX"])
	assert.Equal(t, int32(500), face.DrawOrder)
	assert.Equal(t, int32(1), face.RenderOrder)

	eye := spec.Drawables[1]
	assert.Equal(t, float32(1), eye.Opacity)
	assert.Equal(t, int32(500), eye.DrawOrder)
	assert.Equal(t, int32(1), eye.RenderOrder, "render order defaults to declaration position")
}

func TestCompileDefaultsToForwardOrder(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { parameters: [{id: "A"}] }`)
	spec, err := Compile(v.LookupPath(cue.ParsePath("model.M")))
	require.NoError(t, err)
	assert.Equal(t, IndexForward, spec.IndexOrder)
}

func TestCompileInvalidIndexOrder(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { index_order: "shuffled" }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "index_order", compileErr.Field)
}

func TestCompileMissingID(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { parts: [{opacity: 1}] }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parts[0].id")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileMissingVertices(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { drawables: [{id: "D"}] }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertices are required")
}

func TestCompileBadVertexArity(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { drawables: [{id: "D", vertices: [[1, 2, 3]]}] }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected [x, y]")
}

func TestCompileRangeInverted(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { parameters: [{id: "P", min: 2, max: 1}] }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max")
}

func TestCompileDefaultOutOfRange(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: M: { parameters: [{id: "P", min: 0, max: 1, default: 2}] }`)
	_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "parameters[0].default", cerr.Field)
	assert.Contains(t, cerr.Message, "outside [0, 1]")
}

func TestCompileOrderOverflow(t *testing.T) {
	tests := []struct {
		name  string
		field string
		src   string
	}{
		{"draw_order too large", "draw_order", `draw_order: 4294967296`},
		{"render_order too small", "render_order", `render_order: -2147483649`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(`model: M: { drawables: [{id: "D", vertices: [[0, 0]], ` + tt.src + `}] }`)
			_, err := Compile(v.LookupPath(cue.ParsePath("model.M")))

			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
			assert.Contains(t, cerr.Message, "does not fit in int32")
		})
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	spec := &Spec{Parameters: []ParameterSpec{{ID: "A"}, {ID: "B"}, {ID: "A"}}}

	err := Validate(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate id "A"`)
	assert.Contains(t, err.Error(), "parameters[2].id")
}

func TestValidateUnknownWeightParameter(t *testing.T) {
	spec := &Spec{
		Parameters: []ParameterSpec{{ID: "A"}},
		Drawables: []DrawableSpec{{
			ID:       "D",
			Vertices: []model.Vec2{{}},
			Weights:  map[string]model.Vec2{"B": {X: 1}},
		}},
	}

	err := Validate(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown parameter "B"`)
}

func TestNativeIndex(t *testing.T) {
	forward := &Spec{IndexOrder: IndexForward}
	reverse := &Spec{IndexOrder: IndexReverse}

	assert.Equal(t, 0, forward.NativeIndex(0, 3))
	assert.Equal(t, 2, forward.NativeIndex(2, 3))
	assert.Equal(t, 2, reverse.NativeIndex(0, 3))
	assert.Equal(t, 0, reverse.NativeIndex(2, 3))
}

func TestEntities(t *testing.T) {
	spec := compileHaru(t)
	params, parts, drawables := spec.Entities()

	require.Len(t, params, 3)
	assert.Equal(t, "ParamAngleX", params[0].ID)
	assert.Equal(t, 2, params[0].Index)
	assert.Equal(t, 0, params[2].Index)
	assert.Equal(t, float32(1), params[2].Value, "value starts at default")

	require.Len(t, parts, 2)
	assert.Equal(t, 1, parts[0].Index)
	assert.Equal(t, float32(0.5), parts[1].Opacity)

	require.Len(t, drawables, 2)
	assert.Equal(t, 1, drawables[0].Index)
	assert.Nil(t, drawables[0].Data.VertexPositions, "vertex buffers are allocated at bind time")
}

func TestLoadFileAndDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "haru.cue")
	require.NoError(t, os.WriteFile(path, []byte("package layouts\n"+haruLayout), 0644))

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "Haru", specs[0].Name)

	specs, err = LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	spec, err := Load(dir, "Haru")
	require.NoError(t, err)
	assert.Len(t, spec.Drawables, 2)

	spec, err = Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Haru", spec.Name)

	_, err = Load(path, "Mark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "Mark" not found`)
}

func TestLoadSourceMultipleModelsSorted(t *testing.T) {
	specs, err := LoadSource("two.cue", []byte(`
model: Zed: { parameters: [{id: "Z"}] }
model: Amy: { parameters: [{id: "A"}] }
`))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Amy", specs[0].Name)
	assert.Equal(t, "Zed", specs[1].Name)
}

func TestLoadSourceNoModels(t *testing.T) {
	_, err := LoadSource("empty.cue", []byte(`other: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no models found")
}

func TestLoadDirErrors(t *testing.T) {
	_, err := LoadDir("/nonexistent/layouts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout directory not found")

	_, err = LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files found")
}
