package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/layout"
	"github.com/roach88/mocsync/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Layout   string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string   `json:"session"`
	Model         string   `json:"model"`
	Frames        int      `json:"frames"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// maxDifferences bounds the differences reported per session.
const maxDifferences = 10

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-drive recorded sessions and verify determinism",
		Long: `Re-drive recorded sessions against a fresh software core.

Each recorded frame's parameter values are set on a freshly bound rig, which
then syncs. The pulled flags, dirty results and vertex positions must match
the recording exactly.

Exit codes:
  0 - Every session replayed identically
  1 - Differences detected
  2 - Command error (database or layout not found, etc.)

Examples:
  mocsync replay --db ./frames.db --layout ./layouts
  mocsync replay --db ./frames.db --layout ./layouts --session 0190f0c2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Layout, "layout", "", "layout the sessions were recorded from (required)")
	_ = cmd.MarkFlagRequired("layout")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := openExisting(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	specs, err := LoadLayouts(opts.Layout)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}
	byName := make(map[string]*layout.Spec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	var sessions []store.Session
	if opts.Session != "" {
		sess, err := st.ReadSession(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session), err)
		}
		sessions = []store.Session{sess}
	} else {
		if sessions, err = st.ListSessions(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, sess := range sessions {
		spec, ok := byName[sess.Model]
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("session %s: model %q not in layout", sess.ID, sess.Model))
		}
		frames, err := st.ReadFrames(ctx, sess.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read frames", err)
		}
		r, err := replaySession(sess, spec, frames)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay session", err)
		}
		if !r.Deterministic {
			result.AllDeterministic = false
		}
		result.Sessions = append(result.Sessions, r)
	}

	if opts.Format == "json" {
		if err := formatter.JSON(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay differs from recording")
	}
	return nil
}

// replaySession re-drives one session on a fresh core and compares every
// pulled drawable with the recording.
func replaySession(sess store.Session, spec *layout.Spec, frames []store.Frame) (ReplaySessionResult, error) {
	r := ReplaySessionResult{Session: sess.ID, Model: sess.Model, Frames: len(frames), Deterministic: true}

	core, rig, err := newRig(spec)
	if err != nil {
		return r, err
	}
	defer core.Close()

	diff := func(format string, args ...any) {
		r.Deterministic = false
		if len(r.Differences) < maxDifferences {
			r.Differences = append(r.Differences, fmt.Sprintf(format, args...))
		}
	}

	for _, f := range frames {
		for _, p := range f.Parameters {
			param := rig.Parameter(p.ID)
			if param == nil {
				return r, fmt.Errorf("frame %d: unknown parameter %q", f.Frame, p.ID)
			}
			param.Value = p.Value
		}

		snapshots := rig.Sync()
		if len(snapshots) != len(f.Drawables) {
			diff("frame %d: %d drawables pulled, %d recorded", f.Frame, len(snapshots), len(f.Drawables))
			continue
		}
		for i, s := range snapshots {
			want := f.Drawables[i]
			d := rig.Drawables().At(s.Index)
			if d.ID != want.ID {
				diff("frame %d offset %d: drawable %s, recorded %s", f.Frame, s.Index, d.ID, want.ID)
				continue
			}
			if s.Flags != want.Flags || s.Dirty != want.Dirty {
				diff("frame %d %s: flags %s dirty=%t, recorded %s dirty=%t",
					f.Frame, d.ID, s.Flags, s.Dirty, want.Flags, want.Dirty)
				continue
			}
			if !s.Dirty {
				continue
			}
			for v, pos := range d.Data.VertexPositions {
				if v >= len(want.Vertices) || pos.X != want.Vertices[v].X || pos.Y != want.Vertices[v].Y {
					diff("frame %d %s: vertex %d differs", f.Frame, d.ID, v)
					break
				}
			}
		}
	}
	return r, nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	if result.TotalSessions == 0 {
		formatter.Printf("No sessions recorded.\n")
		return
	}
	for _, s := range result.Sessions {
		mark := "✓"
		if !s.Deterministic {
			mark = "✗"
		}
		formatter.Printf("%s %s (%s): %d frame(s)\n", mark, s.Session, s.Model, s.Frames)
		for _, d := range s.Differences {
			formatter.Printf("    %s\n", d)
		}
	}
	if result.AllDeterministic {
		formatter.Printf("\n✓ All %d session(s) replayed identically\n", result.TotalSessions)
	} else {
		formatter.Printf("\n✗ Replay differs from recording\n")
	}
}
