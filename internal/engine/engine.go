package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/store"
)

// DefaultMaxFrames is the default frame quota per run.
const DefaultMaxFrames = 100_000

// DefaultWorkers is the default pool size.
const DefaultWorkers = 4

// Animator sets managed state on one rig before its frame syncs.
//
// It runs on a pool worker and must only touch the rig it is given.
type Animator func(frame, instance int, rig *mirror.Rig)

// Stats counts what a driver has synchronized so far.
type Stats struct {
	Frames         int `json:"frames"`
	DirtyDrawables int `json:"dirty_drawables"`
	CleanDrawables int `json:"clean_drawables"`
}

type instance struct {
	model    string
	rig      *mirror.Rig
	session  string
	first    int // driver frame at which the instance joined
	recorded bool
}

// Engine drives a set of rigs in lockstep.
//
// Add and Run must not be called concurrently.
type Engine struct {
	store     *store.Store // nil disables recording
	clock     *Clock
	ids       IDGenerator
	animator  Animator
	workers   int
	maxFrames int

	instances []*instance
	started   bool
	frame     int
	stats     Stats
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxFrames sets the frame quota per run.
func WithMaxFrames(n int) EngineOption {
	return func(e *Engine) { e.maxFrames = n }
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) { e.workers = n }
}

// WithAnimator sets the per-frame animator.
func WithAnimator(a Animator) EngineOption {
	return func(e *Engine) { e.animator = a }
}

// WithClock sets the seq clock. Without it the clock continues after the
// store's last recorded seq.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine. s may be nil to drive without recording.
func New(s *store.Store, ids IDGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     s,
		ids:       ids,
		workers:   DefaultWorkers,
		maxFrames: DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Add registers a rig under a model name and returns its session ID.
// A rig added between runs joins at its own frame 0 on the next Run.
func (e *Engine) Add(modelName string, rig *mirror.Rig) string {
	inst := &instance{model: modelName, rig: rig, session: e.ids.Generate(), first: e.frame}
	e.instances = append(e.instances, inst)
	return inst.session
}

// Sessions returns the session IDs in instance order.
func (e *Engine) Sessions() []string {
	ids := make([]string, len(e.instances))
	for i, inst := range e.instances {
		ids[i] = inst.session
	}
	return ids
}

// Stats returns the counters accumulated over every run.
func (e *Engine) Stats() Stats { return e.stats }

// Run drives frames until frames have been synchronized or ctx is done.
// frames <= 0 means run until cancelled, bounded by the frame quota.
//
// Returns ctx.Err() on cancellation, a quota RuntimeError when the quota is
// exhausted, and a task or record RuntimeError when a frame fails.
func (e *Engine) Run(ctx context.Context, frames int) error {
	if frames > e.maxFrames {
		return NewQuotaError(frames, e.maxFrames)
	}
	if err := e.start(ctx); err != nil {
		return err
	}

	pool, err := ants.NewPool(e.workers, ants.WithPreAlloc(true))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	slog.Info("engine starting",
		"instances", len(e.instances),
		"frames", frames,
		"workers", e.workers,
	)

	quota := NewFrameQuota(e.maxFrames)
	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled", "frame", e.frame)
			return ctx.Err()
		default:
		}

		if err := quota.Check(); err != nil {
			slog.Error("frame quota exceeded",
				"frame", e.frame,
				"limit", e.maxFrames,
				"event", "quota_exceeded",
			)
			return err
		}

		if err := e.step(ctx, pool); err != nil {
			return err
		}
	}

	slog.Info("engine stopped", "frames", e.stats.Frames)
	return nil
}

// start assigns the clock on the first run and records a session for every
// instance that does not have one yet.
func (e *Engine) start(ctx context.Context) error {
	if !e.started {
		if e.clock == nil {
			var last int64
			if e.store != nil {
				var err error
				if last, err = e.store.LastSeq(ctx); err != nil {
					return fmt.Errorf("resume clock: %w", err)
				}
			}
			e.clock = NewClockAt(last)
		}
		e.started = true
	}
	for i, inst := range e.instances {
		if inst.recorded {
			continue
		}
		if e.store != nil {
			sess := store.Session{
				ID:         inst.session,
				Model:      inst.model,
				Instance:   i,
				StartedSeq: e.clock.Current(),
			}
			if err := e.store.WriteSession(ctx, sess); err != nil {
				return newRecordError(inst.session, 0, err)
			}
		}
		inst.recorded = true
	}
	return nil
}

// step drives one frame on every rig and records the results.
func (e *Engine) step(ctx context.Context, pool *ants.Pool) error {
	n := len(e.instances)
	results := make([]store.Frame, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, inst := range e.instances {
		wg.Add(1)
		frame := e.frame - inst.first
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			if e.animator != nil {
				e.animator(frame, i, inst.rig)
			}
			results[i] = sample(inst.rig, inst.rig.Sync())
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			inst := e.instances[i]
			slog.Error("rig task failed", "session", inst.session, "frame", e.frame-inst.first, "error", err)
			return newTaskError(inst.session, e.frame-inst.first, err)
		}
	}

	for i, inst := range e.instances {
		f := results[i]
		f.SessionID = inst.session
		f.Frame = e.frame - inst.first
		f.Seq = e.clock.Next()
		for _, d := range f.Drawables {
			if d.Dirty {
				e.stats.DirtyDrawables++
			} else {
				e.stats.CleanDrawables++
			}
		}
		if e.store != nil {
			if err := e.store.WriteFrame(ctx, f); err != nil {
				return newRecordError(inst.session, f.Frame, err)
			}
		}
	}

	slog.Debug("frame synchronized", "frame", e.frame, "instances", n)
	e.frame++
	e.stats.Frames++
	return nil
}

// sample captures what one Sync pushed and pulled. Vertex positions are
// copied only for drawables the pull found dirty.
func sample(rig *mirror.Rig, snaps []mirror.DrawableSnapshot) store.Frame {
	params := rig.Parameters().Items()
	f := store.Frame{
		Parameters: make([]store.ParameterSample, len(params)),
		Drawables:  make([]store.DrawableSample, len(snaps)),
	}
	for i, p := range params {
		f.Parameters[i] = store.ParameterSample{Index: p.Index, ID: p.ID, Value: p.Value}
	}
	for i, s := range snaps {
		d := rig.Drawables().At(s.Index)
		ds := store.DrawableSample{
			Index:       s.Index,
			ID:          d.ID,
			Flags:       s.Flags,
			Dirty:       s.Dirty,
			Opacity:     d.Data.Opacity,
			DrawOrder:   d.Data.DrawOrder,
			RenderOrder: d.Data.RenderOrder,
		}
		if s.Dirty {
			ds.Vertices = make([]model.Vec2, len(d.Data.VertexPositions))
			for v, p := range d.Data.VertexPositions {
				ds.Vertices[v] = model.Vec2{X: p.X, Y: p.Y}
			}
		}
		f.Drawables[i] = ds
	}
	return f
}
