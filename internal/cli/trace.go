package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - without it, sessions are listed
}

// SessionSummary is one line of the session listing.
type SessionSummary struct {
	store.Session
	Frames       int   `json:"frames"`
	LastSeq      int64 `json:"last_seq"`
	DirtySamples int   `json:"dirty_samples"`
	CleanSamples int   `json:"clean_samples"`
}

// TimelineEntry is one recorded frame of a session.
type TimelineEntry struct {
	Seq        int64                   `json:"seq"`
	Frame      int                     `json:"frame"`
	Parameters []store.ParameterSample `json:"parameters"`
	Dirty      []string                `json:"dirty"`
}

// TraceResult holds the trace of one session.
type TraceResult struct {
	Session  SessionSummary  `json:"session"`
	Timeline []TimelineEntry `json:"timeline"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded sessions",
		Long: `Inspect a frame recording.

Without --session, lists every recorded session with frame and sample counts.
With --session, prints the session's timeline: each frame's seq, the
parameter values pushed and the drawables whose vertices were pulled.

Examples:
  mocsync trace --db ./frames.db
  mocsync trace --db ./frames.db --session 0190f0c2-...
  mocsync trace --db ./frames.db --session 0190f0c2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := openExisting(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}

	summary, err := summarizeSession(ctx, st, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(ErrCodeSessionNotFound, fmt.Sprintf("session not found: %s", opts.Session), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	frames, err := st.ReadFrames(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read frames", err)
	}

	result := TraceResult{Session: summary, Timeline: make([]TimelineEntry, len(frames))}
	for i, f := range frames {
		entry := TimelineEntry{Seq: f.Seq, Frame: f.Frame, Parameters: f.Parameters, Dirty: []string{}}
		for _, d := range f.Drawables {
			if d.Dirty {
				entry.Dirty = append(entry.Dirty, d.ID)
			}
		}
		result.Timeline[i] = entry
	}

	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	return outputTraceText(formatter, result)
}

// openExisting opens a database that must already exist.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}

func summarizeSession(ctx context.Context, st *store.Store, id string) (SessionSummary, error) {
	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		return SessionSummary{}, err
	}
	return SessionSummary{
		Session:      state.Session,
		Frames:       state.FrameCount,
		LastSeq:      state.LastSeq,
		DirtySamples: state.DirtySamples,
		CleanSamples: state.CleanSamples,
	}, nil
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		if summaries[i], err = summarizeSession(ctx, st, s.ID); err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.JSON(summaries)
	}
	if len(summaries) == 0 {
		formatter.Printf("No sessions recorded.\n")
		return nil
	}
	for _, s := range summaries {
		formatter.Printf("%s  %s#%d  %d frame(s)  %d dirty / %d clean\n",
			s.ID, s.Model, s.Instance, s.Frames, s.DirtySamples, s.CleanSamples)
	}
	return nil
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	s := result.Session
	formatter.Printf("Session %s (%s#%d)\n", s.ID, s.Model, s.Instance)
	formatter.Printf("  %d frame(s), %d dirty / %d clean drawable samples\n\n", s.Frames, s.DirtySamples, s.CleanSamples)

	for _, e := range result.Timeline {
		params := make([]string, len(e.Parameters))
		for i, p := range e.Parameters {
			params[i] = fmt.Sprintf("%s=%g", p.ID, p.Value)
		}
		dirty := "-"
		if len(e.Dirty) > 0 {
			dirty = strings.Join(e.Dirty, ",")
		}
		formatter.Printf("[seq=%d] frame %d  %s  dirty: %s\n", e.Seq, e.Frame, strings.Join(params, " "), dirty)
	}
	return nil
}
