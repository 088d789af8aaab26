package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	haruLayout   = filepath.Join("..", "harness", "testdata", "layouts", "haru.cue")
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir    = filepath.Join("..", "harness", "testdata", "golden")
)

// executeCommand runs the root command with args and returns stdout and the error.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeLayout writes CUE source into a temp dir and returns the file path.
func writeLayout(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

// decodeData decodes the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, out string, v any) string {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.NoError(t, json.Unmarshal(resp.Data, v), out)
	return resp.Status
}
