package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/engine"
	"github.com/roach88/mocsync/internal/layout"
	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/native/softcore"
	"github.com/roach88/mocsync/internal/preview"
	"github.com/roach88/mocsync/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	Model      string
	Frames     int
	Instances  int
	Workers    int
	Period     int
	MaxFrames  int
	Profile    string // "", "cpu" or "mem"
	ProfileDir string
	Preview    string

	// IDGenerator overrides session ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// RunResult summarizes a run.
type RunResult struct {
	Model     string       `json:"model"`
	Instances int          `json:"instances"`
	Sessions  []string     `json:"sessions"`
	Stats     engine.Stats `json:"stats"`
	Database  string       `json:"database,omitempty"`
	Preview   string       `json:"preview,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <layout>",
		Short: "Drive model instances and record their frames",
		Long: `Drive one or more instances of a model through the software core.

Every frame, each instance's parameters are animated, pushed, the core is
updated and drawables are pulled. Instances run on a worker pool and frames
are recorded to SQLite in instance order.

Examples:
  mocsync run ./layouts --frames 120 --db ./frames.db
  mocsync run ./layouts/haru.cue --instances 8 --workers 4 --frames 600
  mocsync run ./layouts --frames 60 --preview last.webp --profile cpu`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (empty disables recording)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model name when the layout declares several")
	cmd.Flags().IntVar(&opts.Frames, "frames", 60, "frames to drive (0 runs until interrupted)")
	cmd.Flags().IntVar(&opts.Instances, "instances", 1, "model instances to drive")
	cmd.Flags().IntVar(&opts.Workers, "workers", engine.DefaultWorkers, "worker pool size")
	cmd.Flags().IntVar(&opts.Period, "period", 60, "animation period in frames")
	cmd.Flags().IntVar(&opts.MaxFrames, "max-frames", engine.DefaultMaxFrames, "frame quota per run")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "write a cpu or mem profile")
	cmd.Flags().StringVar(&opts.ProfileDir, "profile-dir", ".", "directory for profile output")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "write a WebP preview of the first instance's last frame")

	return cmd
}

func runEngine(opts *RunOptions, layoutPath string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions, cmd.ErrOrStderr())

	if opts.Instances < 1 {
		return NewExitError(ExitCommandError, "--instances must be at least 1")
	}

	switch opts.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.ProfileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(opts.ProfileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid profile %q: must be cpu or mem", opts.Profile))
	}

	spec, err := loadModel(layoutPath, opts.Model)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}
	slog.Info("layout loaded", "model", spec.Name, "parameters", len(spec.Parameters), "drawables", len(spec.Drawables))

	var st *store.Store
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ids := opts.IDGenerator
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	eng := engine.New(st, ids,
		engine.WithWorkers(opts.Workers),
		engine.WithMaxFrames(opts.MaxFrames),
		engine.WithAnimator(engine.Oscillate(opts.Period)),
	)

	rigs := make([]*mirror.Rig, opts.Instances)
	for i := range rigs {
		core, rig, err := newRig(spec)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to bind model", err)
		}
		defer core.Close()
		rigs[i] = rig
		eng.Add(spec.Name, rig)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	err = eng.Run(ctx, opts.Frames)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	case engine.IsQuotaError(err):
		return WrapExitError(ExitFailure, "frame quota exceeded", err)
	default:
		return WrapExitError(ExitFailure, "engine error", err)
	}

	result := RunResult{
		Model:     spec.Name,
		Instances: opts.Instances,
		Sessions:  eng.Sessions(),
		Stats:     eng.Stats(),
		Database:  opts.Database,
	}

	if opts.Preview != "" {
		if err := preview.WriteFile(opts.Preview, rigs[0].Drawables().Items(), preview.DefaultOptions()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write preview", err)
		}
		result.Preview = opts.Preview
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	formatter.Printf("✓ %s: %d frame(s) x %d instance(s)\n", result.Model, result.Stats.Frames, result.Instances)
	formatter.Printf("  drawables pulled: %d dirty, %d clean\n", result.Stats.DirtyDrawables, result.Stats.CleanDrawables)
	for _, s := range result.Sessions {
		formatter.Printf("  session %s\n", s)
	}
	if result.Preview != "" {
		formatter.Printf("  preview %s\n", result.Preview)
	}
	return nil
}

// newRig builds a software core for spec and binds fresh managed entities.
func newRig(spec *layout.Spec) (*softcore.Core, *mirror.Rig, error) {
	core := softcore.New(spec)
	params, parts, drawables := spec.Entities()
	rig, err := mirror.NewRig(core, params, parts, drawables)
	if err != nil {
		core.Close()
		return nil, nil, err
	}
	return core, rig, nil
}
