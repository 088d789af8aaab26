package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mocsync/internal/engine"
	"github.com/roach88/mocsync/internal/layout"
	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/native/softcore"
	"github.com/roach88/mocsync/internal/store"
	"github.com/roach88/mocsync/internal/testutil"
)

// Harness executes one scenario against a software core.
type Harness struct {
	core   *softcore.Core
	rig    *mirror.Rig
	store  *store.Store
	engine *engine.Engine
	clock  *engine.Clock
	logger *slog.Logger

	// last holds the snapshots of the most recent drawable pull.
	last []mirror.DrawableSnapshot
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh core and a fresh in-memory database.
// Sync steps go through the frame driver and are recorded, so traces and
// recordings are reproducible.
//
// Execution flow:
// 1. Load the layout and build a software core
// 2. Bind managed entities to the core
// 3. Execute steps in order, tracing each
// 4. Evaluate assertions against final state
func Run(scenario *Scenario) (*Result, error) {
	spec, err := layout.Load(scenario.Layout, scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	return RunSpec(scenario, spec)
}

// RunSpec is Run with an already compiled layout.
func RunSpec(scenario *Scenario, spec *layout.Spec) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	core := softcore.New(spec)
	defer core.Close()

	params, parts, drawables := spec.Entities()
	rig, err := mirror.NewRig(core, params, parts, drawables)
	if err != nil {
		return nil, fmt.Errorf("failed to bind: %w", err)
	}

	h := &Harness{
		core:   core,
		rig:    rig,
		store:  st,
		clock:  engine.NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.engine = engine.New(st, testutil.NewSequenceGenerator("scenario"),
		engine.WithClock(engine.NewClock()),
		engine.WithWorkers(1),
	)
	h.engine.Add(spec.Name, rig)

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		ev.Seq = h.clock.Next()
		ev.Op = step.Op
		result.addTrace(ev)
		h.logger.Info("step completed", "step", i, "op", step.Op)
	}

	actx := &AssertionContext{
		Ctx:     ctx,
		Core:    h.core,
		Rig:     h.rig,
		Store:   h.store,
		Session: h.engine.Sessions()[0],
		Last:    h.last,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step and returns its trace event (without seq and op).
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	switch step.Op {
	case OpSet:
		return h.set(step)

	case OpPush:
		if step.Target == "" || step.Target == TargetParameters {
			mirror.PushParameters(h.rig.Parameters(), h.core)
		}
		if step.Target == "" || step.Target == TargetParts {
			mirror.PushParts(h.rig.Parts(), h.core)
		}
		return TraceEvent{Target: targetOrAll(step.Target)}, nil

	case OpPull:
		ev := TraceEvent{Target: targetOrAll(step.Target)}
		if step.Target == "" || step.Target == TargetParameters {
			mirror.PullParameters(h.rig.Parameters(), h.core)
		}
		if step.Target == "" || step.Target == TargetParts {
			mirror.PullParts(h.rig.Parts(), h.core)
		}
		if step.Target == "" || step.Target == TargetDrawables {
			h.last = append(h.last[:0], h.rig.Pull()...)
			ev.Snapshots = h.snapshotsCopy()
		}
		return ev, nil

	case OpNativeSet:
		return h.nativeSet(step)

	case OpNativeFlag:
		i, ok := h.core.DrawableIndex(step.Drawable)
		if !ok {
			return TraceEvent{}, fmt.Errorf("unknown drawable %q", step.Drawable)
		}
		h.core.RaiseDrawableFlags(i, step.Flags)
		return TraceEvent{Entity: step.Drawable, Flags: step.Flags.String()}, nil

	case OpUpdate:
		h.core.Update()
		return TraceEvent{}, nil

	case OpRepack:
		h.core.Repack()
		return TraceEvent{}, nil

	case OpSync:
		if err := h.engine.Run(ctx, 1); err != nil {
			return TraceEvent{}, err
		}
		// The driver synced through the rig, whose snapshot buffer holds
		// what that pull observed.
		h.last = append(h.last[:0], h.rig.Snapshots()...)
		return TraceEvent{Snapshots: h.snapshotsCopy()}, nil
	}
	return TraceEvent{}, fmt.Errorf("unknown op %q", step.Op)
}

func (h *Harness) set(step Step) (TraceEvent, error) {
	v := *step.Value
	switch {
	case step.Parameter != "":
		p := h.rig.Parameter(step.Parameter)
		if p == nil {
			return TraceEvent{}, fmt.Errorf("unknown parameter %q", step.Parameter)
		}
		p.Value = v
		return TraceEvent{Entity: step.Parameter, Value: &v}, nil
	default:
		p := h.rig.Part(step.Part)
		if p == nil {
			return TraceEvent{}, fmt.Errorf("unknown part %q", step.Part)
		}
		p.Opacity = v
		return TraceEvent{Entity: step.Part, Value: &v}, nil
	}
}

func (h *Harness) nativeSet(step Step) (TraceEvent, error) {
	switch {
	case step.Parameter != "":
		i, ok := h.core.ParameterIndex(step.Parameter)
		if !ok {
			return TraceEvent{}, fmt.Errorf("unknown parameter %q", step.Parameter)
		}
		v := *step.Value
		h.core.SetParameterValue(i, v)
		return TraceEvent{Entity: step.Parameter, Value: &v}, nil

	case step.Part != "":
		i, ok := h.core.PartIndex(step.Part)
		if !ok {
			return TraceEvent{}, fmt.Errorf("unknown part %q", step.Part)
		}
		v := *step.Value
		h.core.SetPartOpacity(i, v)
		return TraceEvent{Entity: step.Part, Value: &v}, nil

	default:
		i, ok := h.core.DrawableIndex(step.Drawable)
		if !ok {
			return TraceEvent{}, fmt.Errorf("unknown drawable %q", step.Drawable)
		}
		pos := make([]model.Vec2, len(step.Vertices))
		for j, v := range step.Vertices {
			pos[j] = model.Vec2{X: v[0], Y: v[1]}
		}
		if err := h.core.SetVertexPositions(i, pos); err != nil {
			return TraceEvent{}, err
		}
		return TraceEvent{Entity: step.Drawable, Vertices: len(pos)}, nil
	}
}

func (h *Harness) snapshotsCopy() []mirror.DrawableSnapshot {
	return append([]mirror.DrawableSnapshot(nil), h.last...)
}

func targetOrAll(target string) string {
	if target == "" {
		return "all"
	}
	return target
}
