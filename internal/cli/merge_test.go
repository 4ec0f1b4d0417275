package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_Text(t *testing.T) {
	out, _, err := execute(t, "", "merge",
		"--base", `{"common": {"book": "A", "notional": 1}, "legs": {"pay": 1}, "status": "draft"}`,
		"--patch", `{"common": {"notional": 2}, "legs": null, "status": null}`)
	require.NoError(t, err)
	assert.Equal(t, `{"common":{"book":"A","notional":2},"status":null}`+"\n", out)
}

func TestMerge_JSON(t *testing.T) {
	out, _, err := execute(t, "", "merge", "--format", "json",
		"--base", `{"a": [1, 2]}`, "--patch", `{"a": [3], "b": true}`)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, map[string]any{"a": []any{float64(3)}, "b": true}, resp.Data)
}

func TestMerge_InvalidJSON(t *testing.T) {
	_, _, err := execute(t, "", "merge", "--base", `{"a": 1}`, "--patch", `[1]`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--patch")
}

func TestMerge_RequiredFlags(t *testing.T) {
	_, _, err := execute(t, "", "merge", "--base", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patch")
}
