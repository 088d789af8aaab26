package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "compile", "pose", "run", "replay", "test", "trace"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "validate", haruLayout, "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"cue":                       ErrCodeBuildFailed,
		"index_order":               ErrCodeInvalidIndexOrder,
		"parameters[1].id":          ErrCodeInvalidID,
		"drawables[0].weights":      ErrCodeUnknownWeight,
		"drawables[0].weights.ParX": ErrCodeUnknownWeight,
		"drawables[2].vertices":     ErrCodeInvalidVertices,
		"parameters[0]":             ErrCodeInvalidRange,
		"something":                 ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
