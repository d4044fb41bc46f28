package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var systemDoc = filepath.Join("testdata", "system.yaml")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGoldenOutputs(t *testing.T) {
	cases := []struct {
		golden string
		args   []string
	}{
		{"render_text", []string{"render", systemDoc}},
		{"render_latex", []string{"render", systemDoc, "--format", "latex"}},
		{"names_text", []string{"names", systemDoc}},
		{"names_latex", []string{"names", systemDoc, "--format", "latex"}},
		{"validate_text", []string{"validate", systemDoc}},
		{"validate_json", []string{"validate", systemDoc, "--format", "json"}},
	}
	for _, c := range cases {
		t.Run(c.golden, func(t *testing.T) {
			out, err := execute(t, c.args...)
			require.NoError(t, err)
			newGoldie(t).Assert(t, c.golden, []byte(out))
		})
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, "render", systemDoc, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Equations []map[string]interface{} `json:"equations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Equations, 5)

	first := resp.Data.Equations[0]
	assert.Equal(t, "eq", first["type"])
	assert.Equal(t, map[string]interface{}{"type": "sym", "name": "B_x"}, first["lhs"])

	last := resp.Data.Equations[4]
	assert.Equal(t, map[string]interface{}{"type": "dummy", "name": "B_1"}, last["lhs"])
}

func TestNamesJSON(t *testing.T) {
	out, err := execute(t, "names", systemDoc, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]interface{})
	vars := data["variables"].([]interface{})
	require.Len(t, vars, 5)
	assert.Equal(t, map[string]interface{}{"key": float64(0), "name": "0", "dummy": true}, vars[3])
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "render", systemDoc, "--format", "yaml")
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestMissingFile(t *testing.T) {
	_, err := execute(t, "render", filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "equations:\n  - {range: {stop: 3}, values: [{type: num, value: 1}]}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ invalid")
	assert.Contains(t, out, "ARITY_MISMATCH")

	out, err = execute(t, "validate", path, "--format", "json")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestVerboseLogsToStderr(t *testing.T) {
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"names", systemDoc, "-v"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "variable minted")
}
