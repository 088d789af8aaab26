package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/mocsync/internal/layout"
)

// LoadError represents an error that occurred while loading layouts.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the CUE line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadLayouts compiles every model found at path, which may be a directory
// holding a CUE package or a single .cue file. Errors are *LoadError.
func LoadLayouts(path string) ([]*layout.Spec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("layout path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing layout path: %v", err)}
	}

	var specs []*layout.Spec
	if info.IsDir() {
		files, err := layout.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
		specs, err = layout.LoadDir(path)
		if err != nil {
			return nil, convertCompileError(err)
		}
	} else {
		specs, err = layout.LoadFile(path)
		if err != nil {
			return nil, convertCompileError(err)
		}
	}
	return specs, nil
}

// loadModel loads path and selects one model by name, or the only model
// when name is empty.
func loadModel(path, name string) (*layout.Spec, error) {
	specs, err := LoadLayouts(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		if len(specs) != 1 {
			return nil, &LoadError{
				Code:    ErrCodeAmbiguous,
				Message: fmt.Sprintf("%s declares %d models; choose one with --model", path, len(specs)),
			}
		}
		return specs[0], nil
	}
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model %q not found in %s", name, path)}
}

// convertCompileError converts a layout error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *layout.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: err.Error(),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // Layout load failed
	ErrCodeNotFound    = "E005" // Path or model not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeAmbiguous   = "E008" // Several models and none selected

	// Layout validation errors
	ErrCodeInvalidID         = "E201" // Missing, empty or duplicate id
	ErrCodeUnknownWeight     = "E202" // Weight names an unknown parameter
	ErrCodeInvalidIndexOrder = "E203" // index_order is not forward or reverse
	ErrCodeInvalidVertices   = "E204" // Missing or malformed vertices
	ErrCodeInvalidRange      = "E205" // Parameter min exceeds max

	// Store errors
	ErrCodeStore           = "E301" // Database open or query failed
	ErrCodeSessionNotFound = "E302" // Session not recorded
)

// MapFieldToErrorCode maps a layout error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "index_order":
		return ErrCodeInvalidIndexOrder
	case strings.HasSuffix(field, ".id"):
		return ErrCodeInvalidID
	case strings.HasSuffix(field, ".weights") || strings.Contains(field, ".weights."):
		return ErrCodeUnknownWeight
	case strings.Contains(field, ".vertices"):
		return ErrCodeInvalidVertices
	case strings.HasPrefix(field, "parameters["):
		return ErrCodeInvalidRange
	default:
		return ErrCodeGeneric
	}
}
