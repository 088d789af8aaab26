package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/mirror"
	"github.com/roach88/mocsync/internal/model"
	"github.com/roach88/mocsync/internal/preview"
)

// PoseOptions holds flags for the pose command.
type PoseOptions struct {
	*RootOptions
	Model     string
	Set       []string // ID=value for parameters
	Opacities []string // ID=value for parts
	Preview   string
}

// PosedDrawable is one drawable after a sync.
type PosedDrawable struct {
	ID          string       `json:"id"`
	Offset      int          `json:"offset"`
	Flags       string       `json:"flags"`
	Dirty       bool         `json:"dirty"`
	Opacity     float32      `json:"opacity"`
	DrawOrder   int32        `json:"draw_order"`
	RenderOrder int32        `json:"render_order"`
	Vertices    []model.Vec3 `json:"vertices"`
}

// PoseResult is the output of the pose command.
type PoseResult struct {
	Model     string          `json:"model"`
	Drawables []PosedDrawable `json:"drawables"`
}

// NewPoseCommand creates the pose command.
func NewPoseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PoseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pose <layout>",
		Short: "Set parameters, sync once and print the drawables",
		Long: `Set managed parameter values and part opacities, run one sync
(push, update, pull) and print what the drawables pulled.

Values outside a parameter's range are clamped.

Example:
  mocsync pose ./layouts --set ParamAngleX=15 --set ParamEyeLOpen=0.2
  mocsync pose ./layouts --opacity PartHair=0 --preview pose.webp`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPose(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "model name when the layout declares several")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "parameter value as ID=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Opacities, "opacity", nil, "part opacity as ID=value (repeatable)")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "write a WebP preview")

	return cmd
}

func runPose(opts *PoseOptions, layoutPath string, cmd *cobra.Command) error {
	spec, err := loadModel(layoutPath, opts.Model)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}

	core, rig, err := newRig(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to bind model", err)
	}
	defer core.Close()

	for _, kv := range opts.Set {
		id, v, err := parseAssignment(kv)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --set", err)
		}
		p := rig.Parameter(id)
		if p == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown parameter %q", id))
		}
		p.Value = v
		p.Clamp()
	}
	for _, kv := range opts.Opacities {
		id, v, err := parseAssignment(kv)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --opacity", err)
		}
		p := rig.Part(id)
		if p == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown part %q", id))
		}
		p.Opacity = v
	}

	snapshots := rig.Sync()
	result := PoseResult{Model: spec.Name, Drawables: posed(rig, snapshots)}

	if opts.Preview != "" {
		if err := preview.WriteFile(opts.Preview, rig.Drawables().Items(), preview.DefaultOptions()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write preview", err)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	formatter.Printf("%s\n", result.Model)
	for _, d := range result.Drawables {
		formatter.Printf("  [%d] %s opacity=%g flags=%s dirty=%t\n", d.Offset, d.ID, d.Opacity, d.Flags, d.Dirty)
		for i, v := range d.Vertices {
			formatter.Printf("      %d: (%g, %g)\n", i, v.X, v.Y)
		}
	}
	return nil
}

// parseAssignment splits "ID=value".
func parseAssignment(kv string) (string, float32, error) {
	id, raw, ok := strings.Cut(kv, "=")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("expected ID=value, got %q", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
	if err != nil {
		return "", 0, fmt.Errorf("bad value in %q: %w", kv, err)
	}
	return model.NormalizeID(strings.TrimSpace(id)), float32(v), nil
}

func posed(rig *mirror.Rig, snapshots []mirror.DrawableSnapshot) []PosedDrawable {
	out := make([]PosedDrawable, len(snapshots))
	for i, s := range snapshots {
		d := rig.Drawables().At(s.Index)
		out[i] = PosedDrawable{
			ID:          d.ID,
			Offset:      d.Index,
			Flags:       s.Flags.String(),
			Dirty:       s.Dirty,
			Opacity:     d.Data.Opacity,
			DrawOrder:   d.Data.DrawOrder,
			RenderOrder: d.Data.RenderOrder,
			Vertices:    append([]model.Vec3(nil), d.Data.VertexPositions...),
		}
	}
	return out
}
