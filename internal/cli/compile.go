package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/layout"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NativeEntry places one declared entity at its native offset.
type NativeEntry struct {
	Offset      int    `json:"offset"`
	ID          string `json:"id"`
	Declared    int    `json:"declared"`
	VertexCount int    `json:"vertex_count,omitempty"`
}

// CompiledModel is a model layout with its native tables.
type CompiledModel struct {
	Spec       *layout.Spec  `json:"spec"`
	Parameters []NativeEntry `json:"native_parameters"`
	Parts      []NativeEntry `json:"native_parts"`
	Drawables  []NativeEntry `json:"native_drawables"`
}

// CompilationResult holds every compiled model.
type CompilationResult struct {
	Models []CompiledModel `json:"models"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <layout>",
		Short: "Compile CUE layouts to JSON with native tables",
		Long: `Compile CUE model layouts and emit JSON.

Each model carries its declared layout plus the native tables the core
builds from it: for every offset, which declared entity owns the slot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	specs, err := LoadLayouts(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		}
		return WrapExitError(ExitCommandError, "failed to compile layouts", err)
	}

	result := CompilationResult{Models: make([]CompiledModel, len(specs))}
	for i, s := range specs {
		formatter.VerboseLog("Compiled model: %s", s.Name)
		result.Models[i] = compileModel(s)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal layouts", err)
	}
	data = append(data, '\n')

	if opts.Output == "" {
		_, err := formatter.Writer.Write(data)
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"output": opts.Output, "models": len(specs)})
	}
	formatter.Printf("✓ Compiled %d model(s) to %s\n", len(specs), opts.Output)
	return nil
}

// compileModel builds the native tables for one layout.
func compileModel(s *layout.Spec) CompiledModel {
	m := CompiledModel{
		Spec:       s,
		Parameters: make([]NativeEntry, len(s.Parameters)),
		Parts:      make([]NativeEntry, len(s.Parts)),
		Drawables:  make([]NativeEntry, len(s.Drawables)),
	}
	for i, p := range s.Parameters {
		j := s.NativeIndex(i, len(s.Parameters))
		m.Parameters[j] = NativeEntry{Offset: j, ID: p.ID, Declared: i}
	}
	for i, p := range s.Parts {
		j := s.NativeIndex(i, len(s.Parts))
		m.Parts[j] = NativeEntry{Offset: j, ID: p.ID, Declared: i}
	}
	for i, d := range s.Drawables {
		j := s.NativeIndex(i, len(s.Drawables))
		m.Drawables[j] = NativeEntry{Offset: j, ID: d.ID, Declared: i, VertexCount: len(d.Vertices)}
	}
	return m
}
