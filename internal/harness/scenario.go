package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mocsync/internal/model"
)

// Scenario drives one software core through a sequence of synchronization
// steps and checks the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layout is the CUE file or directory describing the model.
	// Relative paths resolve against the scenario file's directory.
	Layout string `yaml:"layout"`

	// Model selects one model when the layout declares several.
	Model string `yaml:"model,omitempty"`

	// Steps run in order against a freshly bound rig.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final managed and native state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation on the rig or on the core's native side.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Target narrows push and pull: parameters, parts, drawables.
	// Empty means every kind the operation supports.
	Target string `yaml:"target,omitempty"`

	// Exactly one entity is named by set, native_set and native_flag.
	Parameter string `yaml:"parameter,omitempty"`
	Part      string `yaml:"part,omitempty"`
	Drawable  string `yaml:"drawable,omitempty"`

	// Value is the scalar written by set and native_set.
	Value *float32 `yaml:"value,omitempty"`

	// Vertices replaces a drawable's native positions (native_set).
	Vertices [][]float32 `yaml:"vertices,omitempty"`

	// Flags are ORed into a drawable's native flags (native_flag).
	Flags model.DynamicFlags `yaml:"flags,omitempty"`
}

// Step operations.
const (
	OpSet        = "set"
	OpPush       = "push"
	OpPull       = "pull"
	OpNativeSet  = "native_set"
	OpNativeFlag = "native_flag"
	OpUpdate     = "update"
	OpRepack     = "repack"
	OpSync       = "sync"
)

// Step targets.
const (
	TargetParameters = "parameters"
	TargetParts      = "parts"
	TargetDrawables  = "drawables"
)

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Parameter string `yaml:"parameter,omitempty"`
	Part      string `yaml:"part,omitempty"`
	Drawable  string `yaml:"drawable,omitempty"`

	// Value is the expected scalar (parameter_value, native_value).
	Value *float32 `yaml:"value,omitempty"`

	// Vertex, X and Y check one managed vertex position (vertex).
	Vertex *int     `yaml:"vertex,omitempty"`
	X      *float32 `yaml:"x,omitempty"`
	Y      *float32 `yaml:"y,omitempty"`

	// Dirty is the expected dirty result of the last drawable pull (dirty).
	Dirty *bool `yaml:"dirty,omitempty"`

	// Count is the expected count (reset_count, recorded_frames).
	Count *int `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertParameterValue = "parameter_value"
	AssertNativeValue    = "native_value"
	AssertVertex         = "vertex"
	AssertDirty          = "dirty"
	AssertFlagsCleared   = "flags_cleared"
	AssertResetCount     = "reset_count"
	AssertRecordedFrames = "recorded_frames"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the layout path relative to the scenario BEFORE validation
	if scenario.Layout != "" && !filepath.IsAbs(scenario.Layout) {
		scenario.Layout = filepath.Join(filepath.Dir(path), scenario.Layout)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Layout == "" {
		return fmt.Errorf("layout is required")
	}
	if _, err := os.Stat(s.Layout); os.IsNotExist(err) {
		return fmt.Errorf("layout not found: %s", s.Layout)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func entityCount(parameter, part, drawable string) int {
	n := 0
	for _, id := range []string{parameter, part, drawable} {
		if id != "" {
			n++
		}
	}
	return n
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpSet:
		if s.Drawable != "" || entityCount(s.Parameter, s.Part, "") != 1 {
			return fmt.Errorf("steps[%d]: set needs exactly one of parameter or part", index)
		}
		if s.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for set", index)
		}
	case OpPush:
		if s.Target != "" && s.Target != TargetParameters && s.Target != TargetParts {
			return fmt.Errorf("steps[%d]: push target must be parameters or parts, got %q", index, s.Target)
		}
	case OpPull:
		switch s.Target {
		case "", TargetParameters, TargetParts, TargetDrawables:
		default:
			return fmt.Errorf("steps[%d]: unknown pull target %q", index, s.Target)
		}
	case OpNativeSet:
		if entityCount(s.Parameter, s.Part, s.Drawable) != 1 {
			return fmt.Errorf("steps[%d]: native_set needs exactly one of parameter, part or drawable", index)
		}
		if s.Drawable != "" {
			if len(s.Vertices) == 0 {
				return fmt.Errorf("steps[%d]: vertices are required for a drawable native_set", index)
			}
			for j, v := range s.Vertices {
				if len(v) != 2 {
					return fmt.Errorf("steps[%d]: vertices[%d] must be [x, y]", index, j)
				}
			}
		} else if s.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for native_set", index)
		}
	case OpNativeFlag:
		if s.Drawable == "" {
			return fmt.Errorf("steps[%d]: drawable is required for native_flag", index)
		}
		if s.Flags == 0 {
			return fmt.Errorf("steps[%d]: flags are required for native_flag", index)
		}
	case OpUpdate, OpRepack, OpSync:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertParameterValue, AssertNativeValue:
		if a.Drawable != "" || entityCount(a.Parameter, a.Part, "") != 1 {
			return fmt.Errorf("assertions[%d]: %s needs exactly one of parameter or part", index, a.Type)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertVertex:
		if a.Drawable == "" || a.Vertex == nil || a.X == nil || a.Y == nil {
			return fmt.Errorf("assertions[%d]: vertex needs drawable, vertex, x and y", index)
		}
	case AssertDirty:
		if a.Drawable == "" || a.Dirty == nil {
			return fmt.Errorf("assertions[%d]: dirty needs drawable and dirty", index)
		}
	case AssertFlagsCleared:
	case AssertResetCount, AssertRecordedFrames:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
