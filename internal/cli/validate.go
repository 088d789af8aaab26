package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mocsync/internal/layout"
)

// ModelSummary describes one validated model.
type ModelSummary struct {
	Name       string `json:"name"`
	IndexOrder string `json:"index_order"`
	Parameters int    `json:"parameters"`
	Parts      int    `json:"parts"`
	Drawables  int    `json:"drawables"`
	Vertices   int    `json:"vertices"`
}

// ValidationError is one problem found in a layout.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Models []ModelSummary    `json:"models,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <layout>",
		Short: "Validate CUE model layouts",
		Long: `Validate CUE model layouts without running anything.

<layout> is a directory holding a CUE package or a single .cue file.
Checks ids, vertices, parameter ranges, index order and weight references.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	specs, err := LoadLayouts(path)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			loadErr = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		// Path problems are command errors; layout problems are validation failures.
		switch loadErr.Code {
		case ErrCodeNotFound, ErrCodeScanError, ErrCodeNoFiles:
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		return outputValidationErrors(formatter, []ValidationError{{
			Code:    loadErr.Code,
			Message: loadErr.Message,
			Line:    loadErr.Line(),
		}})
	}

	summaries := make([]ModelSummary, len(specs))
	for i, s := range specs {
		formatter.VerboseLog("Validated model: %s", s.Name)
		summaries[i] = summarize(s)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Models: summaries})
	}
	for _, m := range summaries {
		formatter.Printf("  %s (%s): %d parameters, %d parts, %d drawables, %d vertices\n",
			m.Name, m.IndexOrder, m.Parameters, m.Parts, m.Drawables, m.Vertices)
	}
	formatter.Printf("✓ All layouts valid\n")
	return nil
}

func summarize(s *layout.Spec) ModelSummary {
	m := ModelSummary{
		Name:       s.Name,
		IndexOrder: string(s.IndexOrder),
		Parameters: len(s.Parameters),
		Parts:      len(s.Parts),
		Drawables:  len(s.Drawables),
	}
	for _, d := range s.Drawables {
		m.Vertices += len(d.Vertices)
	}
	return m
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
