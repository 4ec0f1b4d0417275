package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_TextIsTradeArray(t *testing.T) {
	out, _, err := execute(t, "", "seed", "--count", "3", "--seed", "7", "--base", "2026-03-02")
	require.NoError(t, err)

	var trades []inputRecord
	require.NoError(t, json.Unmarshal([]byte(out), &trades))
	require.Len(t, trades, 3)
	assert.Regexp(t, `^IR_SWAP_[0-9A-F]{16}$`, trades[0].ID)
}

func TestSeed_Deterministic(t *testing.T) {
	a, _, err := execute(t, "", "seed", "--count", "4", "--seed", "9", "--base", "2026-03-02")
	require.NoError(t, err)
	b, _, err := execute(t, "", "seed", "--count", "4", "--seed", "9", "--base", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeed_JSONEnvelope(t *testing.T) {
	out, _, err := execute(t, "", "seed", "--count", "1", "--base", "2026-03-02", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []inputRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, 1)
}

func TestSeed_CountOutOfRange(t *testing.T) {
	for _, n := range []string{"0", "101"} {
		_, _, err := execute(t, "", "seed", "--count", n)
		require.Error(t, err, "count %s", n)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}

func TestSeed_BadBaseDate(t *testing.T) {
	_, _, err := execute(t, "", "seed", "--base", "03/02/2026")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSeed_DirectCommandUsesDefaults(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--base", "2026-03-02"})

	require.NoError(t, cmd.Execute())
	var trades []inputRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &trades))
	assert.Len(t, trades, 30)
}
