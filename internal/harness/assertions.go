package harness

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/native/softcore"
	"github.com/roach88/mocsync/internal/store"
)

// tolerance is the absolute difference accepted between float values.
const tolerance = 1e-5

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Entity the assertion is about
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " (%s)", e.Subject)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// AssertionContext provides the final state assertions inspect.
type AssertionContext struct {
	Ctx     context.Context
	Core    *softcore.Core
	Rig     *mirror.Rig
	Store   *store.Store
	Session string

	// Last holds the snapshots of the most recent drawable pull.
	Last []mirror.DrawableSnapshot
}

// EvaluateAssertions evaluates all assertions.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertParameterValue:
			err = assertParameterValue(actx, a)
		case AssertNativeValue:
			err = assertNativeValue(actx, a)
		case AssertVertex:
			err = assertVertex(actx, a)
		case AssertDirty:
			err = assertDirty(actx, a)
		case AssertFlagsCleared:
			err = assertFlagsCleared(actx)
		case AssertResetCount:
			err = assertCount(a.Type, actx.Core.ResetCount(), *a.Count)
		case AssertRecordedFrames:
			err = assertRecordedFrames(actx, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func floatsEqual(a, b float32) bool {
	return math.Abs(float64(a)-float64(b)) <= tolerance
}

func assertFloat(typ, subject string, actual, expected float32) error {
	if floatsEqual(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Subject:  subject,
		Expected: fmt.Sprintf("%g", expected),
		Actual:   fmt.Sprintf("%g", actual),
	}
}

func notFound(typ, kind, id string) error {
	return &AssertionError{Type: typ, Subject: id, Expected: kind + " exists", Actual: "not found"}
}

// assertParameterValue checks the managed value of a parameter or the
// managed opacity of a part.
func assertParameterValue(actx *AssertionContext, a Assertion) error {
	if a.Parameter != "" {
		p := actx.Rig.Parameter(a.Parameter)
		if p == nil {
			return notFound(a.Type, "parameter", a.Parameter)
		}
		return assertFloat(a.Type, a.Parameter, p.Value, *a.Value)
	}
	p := actx.Rig.Part(a.Part)
	if p == nil {
		return notFound(a.Type, "part", a.Part)
	}
	return assertFloat(a.Type, a.Part, p.Opacity, *a.Value)
}

// assertNativeValue checks the core's buffer slot for a parameter or part.
func assertNativeValue(actx *AssertionContext, a Assertion) error {
	if a.Parameter != "" {
		i, ok := actx.Core.ParameterIndex(a.Parameter)
		if !ok {
			return notFound(a.Type, "parameter", a.Parameter)
		}
		return assertFloat(a.Type, a.Parameter, actx.Core.ParameterValue(i), *a.Value)
	}
	i, ok := actx.Core.PartIndex(a.Part)
	if !ok {
		return notFound(a.Type, "part", a.Part)
	}
	return assertFloat(a.Type, a.Part, actx.Core.PartOpacity(i), *a.Value)
}

// assertVertex checks one managed vertex position.
func assertVertex(actx *AssertionContext, a Assertion) error {
	d := actx.Rig.Drawable(a.Drawable)
	if d == nil {
		return notFound(a.Type, "drawable", a.Drawable)
	}
	v := *a.Vertex
	subject := fmt.Sprintf("%s[%d]", a.Drawable, v)
	if v < 0 || v >= len(d.Data.VertexPositions) {
		return &AssertionError{
			Type:     a.Type,
			Subject:  subject,
			Expected: fmt.Sprintf("vertex index below %d", len(d.Data.VertexPositions)),
			Actual:   fmt.Sprintf("%d", v),
		}
	}
	got := d.Data.VertexPositions[v]
	if floatsEqual(got.X, *a.X) && floatsEqual(got.Y, *a.Y) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Subject:  subject,
		Expected: fmt.Sprintf("(%g, %g)", *a.X, *a.Y),
		Actual:   fmt.Sprintf("(%g, %g)", got.X, got.Y),
	}
}

// assertDirty checks the dirty result of the last drawable pull.
func assertDirty(actx *AssertionContext, a Assertion) error {
	d := actx.Rig.Drawable(a.Drawable)
	if d == nil {
		return notFound(a.Type, "drawable", a.Drawable)
	}
	for _, s := range actx.Last {
		if s.Index != d.Index {
			continue
		}
		if s.Dirty == *a.Dirty {
			return nil
		}
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Drawable,
			Expected: fmt.Sprintf("dirty=%t", *a.Dirty),
			Actual:   fmt.Sprintf("dirty=%t (flags %s)", s.Dirty, s.Flags),
		}
	}
	return &AssertionError{Type: a.Type, Subject: a.Drawable, Expected: "a drawable pull", Actual: "no pull recorded"}
}

// assertFlagsCleared checks that no drawable has a native flag set.
func assertFlagsCleared(actx *AssertionContext) error {
	var raised []string
	ids := actx.Core.DrawableIDs()
	for i, id := range ids {
		if f := actx.Core.DrawableFlags(i); f != 0 {
			raised = append(raised, fmt.Sprintf("%s=%s", id, f))
		}
	}
	if len(raised) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFlagsCleared,
		Expected: "no native flags",
		Actual:   strings.Join(raised, ", "),
	}
}

func assertCount(typ string, actual, expected int) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d", expected),
		Actual:   fmt.Sprintf("%d", actual),
	}
}

// assertRecordedFrames checks how many sync steps were recorded.
func assertRecordedFrames(actx *AssertionContext, a Assertion) error {
	frames, err := actx.Store.ReadFrames(actx.Ctx, actx.Session)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Type, err)
	}
	return assertCount(a.Type, len(frames), *a.Count)
}
