package layout

import (
	"fmt"
	"math"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/mocsync/internal/model"
)

// Compile parses a CUE value into a Spec.
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: Haru: { ... }`)
//	spec, err := Compile(v.LookupPath(cue.ParsePath("model.Haru")))
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{IndexOrder: IndexForward}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	if orderVal := v.LookupPath(cue.ParsePath("index_order")); orderVal.Exists() {
		order, err := orderVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !ValidIndexOrders[IndexOrder(order)] {
			return nil, &CompileError{
				Field:   "index_order",
				Message: fmt.Sprintf("invalid index order %q: must be forward or reverse", order),
				Pos:     orderVal.Pos(),
			}
		}
		spec.IndexOrder = IndexOrder(order)
	}

	var err error
	if spec.Parameters, err = parseParameters(v); err != nil {
		return nil, err
	}
	if spec.Parts, err = parseParts(v); err != nil {
		return nil, err
	}
	if spec.Drawables, err = parseDrawables(v); err != nil {
		return nil, err
	}

	if err := Validate(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseParameters(v cue.Value) ([]ParameterSpec, error) {
	var out []ParameterSpec
	err := eachElem(v, "parameters", func(i int, elem cue.Value) error {
		id, err := requiredID(elem, fmt.Sprintf("parameters[%d]", i))
		if err != nil {
			return err
		}
		p := ParameterSpec{ID: id}
		if p.Min, err = optionalFloat(elem, "min", 0); err != nil {
			return err
		}
		if p.Max, err = optionalFloat(elem, "max", 1); err != nil {
			return err
		}
		if p.Default, err = optionalFloat(elem, "default", p.Min); err != nil {
			return err
		}
		if p.Min > p.Max {
			return &CompileError{
				Field:   fmt.Sprintf("parameters[%d]", i),
				Message: fmt.Sprintf("min %g exceeds max %g", p.Min, p.Max),
				Pos:     elem.Pos(),
			}
		}
		if p.Default < p.Min || p.Default > p.Max {
			return &CompileError{
				Field:   fmt.Sprintf("parameters[%d].default", i),
				Message: fmt.Sprintf("default %g outside [%g, %g]", p.Default, p.Min, p.Max),
				Pos:     elem.Pos(),
			}
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func parseParts(v cue.Value) ([]PartSpec, error) {
	var out []PartSpec
	err := eachElem(v, "parts", func(i int, elem cue.Value) error {
		id, err := requiredID(elem, fmt.Sprintf("parts[%d]", i))
		if err != nil {
			return err
		}
		p := PartSpec{ID: id}
		if p.Opacity, err = optionalFloat(elem, "opacity", 1); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func parseDrawables(v cue.Value) ([]DrawableSpec, error) {
	var out []DrawableSpec
	err := eachElem(v, "drawables", func(i int, elem cue.Value) error {
		field := fmt.Sprintf("drawables[%d]", i)
		id, err := requiredID(elem, field)
		if err != nil {
			return err
		}
		d := DrawableSpec{ID: id}

		verticesVal := elem.LookupPath(cue.ParsePath("vertices"))
		if !verticesVal.Exists() {
			return &CompileError{Field: field + ".vertices", Message: "vertices are required", Pos: elem.Pos()}
		}
		iter, err := verticesVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			vec, err := parseVec2(iter.Value(), field+".vertices")
			if err != nil {
				return err
			}
			d.Vertices = append(d.Vertices, vec)
		}

		if weightsVal := elem.LookupPath(cue.ParsePath("weights")); weightsVal.Exists() {
			fields, err := weightsVal.Fields()
			if err != nil {
				return formatCUEError(err)
			}
			d.Weights = make(map[string]model.Vec2)
			for fields.Next() {
				vec, err := parseVec2(fields.Value(), field+".weights."+fields.Selector().String())
				if err != nil {
					return err
				}
				d.Weights[model.NormalizeID(fields.Selector().Unquoted())] = vec
			}
		}

		if d.Opacity, err = optionalFloat(elem, "opacity", 1); err != nil {
			return err
		}
		if d.DrawOrder, err = optionalInt(elem, "draw_order", 500); err != nil {
			return err
		}
		if d.RenderOrder, err = optionalInt(elem, "render_order", int32(i)); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

// eachElem iterates the list at path, if present.
func eachElem(v cue.Value, path string, fn func(int, cue.Value) error) error {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(i, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requiredID(v cue.Value, field string) (string, error) {
	idVal := v.LookupPath(cue.ParsePath("id"))
	if !idVal.Exists() {
		return "", &CompileError{Field: field + ".id", Message: "id is required", Pos: v.Pos()}
	}
	id, err := idVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if id == "" {
		return "", &CompileError{Field: field + ".id", Message: "id must be non-empty", Pos: idVal.Pos()}
	}
	return model.NormalizeID(id), nil
}

func optionalFloat(v cue.Value, name string, def float32) (float32, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return def, nil
	}
	x, err := f.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return float32(x), nil
}

func optionalInt(v cue.Value, name string, def int32) (int32, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return def, nil
	}
	x, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if x < math.MinInt32 || x > math.MaxInt32 {
		return 0, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("%d does not fit in int32", x),
			Pos:     f.Pos(),
		}
	}
	return int32(x), nil
}

func parseVec2(v cue.Value, field string) (model.Vec2, error) {
	iter, err := v.List()
	if err != nil {
		return model.Vec2{}, formatCUEError(err)
	}
	var xs []float32
	for iter.Next() {
		x, err := iter.Value().Float64()
		if err != nil {
			return model.Vec2{}, formatCUEError(err)
		}
		xs = append(xs, float32(x))
	}
	if len(xs) != 2 {
		return model.Vec2{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected [x, y], got %d components", len(xs)),
			Pos:     v.Pos(),
		}
	}
	return model.Vec2{X: xs[0], Y: xs[1]}, nil
}

// Validate checks cross-entity rules that CUE unification cannot express.
func Validate(s *Spec) error {
	if err := uniqueIDs("parameters", len(s.Parameters), func(i int) string { return s.Parameters[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("parts", len(s.Parts), func(i int) string { return s.Parts[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("drawables", len(s.Drawables), func(i int) string { return s.Drawables[i].ID }); err != nil {
		return err
	}

	params := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		params[p.ID] = true
	}
	for i, d := range s.Drawables {
		// Sorted for a deterministic first error.
		keys := make([]string, 0, len(d.Weights))
		for k := range d.Weights {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !params[k] {
				return &CompileError{
					Field:   fmt.Sprintf("drawables[%d].weights", i),
					Message: fmt.Sprintf("unknown parameter %q", k),
				}
			}
		}
	}
	return nil
}

func uniqueIDs(field string, n int, id func(int) string) error {
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		if first, ok := seen[id(i)]; ok {
			return &CompileError{
				Field:   fmt.Sprintf("%s[%d].id", field, i),
				Message: fmt.Sprintf("duplicate id %q (first declared at %s[%d])", id(i), field, first),
			}
		}
		seen[id(i)] = i
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
