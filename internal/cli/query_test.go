package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradesJSON = `[
  {"id": "T1", "data": {"common": {"book": "RATES-1", "notional": 1000000}}},
  {"id": "T2", "data": {"common": {"book": "RATES-2", "notional": 5000000}}},
  {"id": "T3", "data": {"common": {"book": "RATES-1", "notional": 2500000}}}
]`

func writeTrades(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func queryIDs(t *testing.T, out string) []string {
	t.Helper()
	var recs []inputRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}

func TestQuery_Load(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path,
		"--where", `{"data.common.book": {"eq": "RATES-1"}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T3"}, queryIDs(t, out))
}

func TestQuery_Paging(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--limit", "1", "--offset", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, queryIDs(t, out))
}

func TestQuery_IDs(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--ids", "T3,T2,T9")
	require.NoError(t, err)
	assert.Equal(t, []string{"T2", "T3"}, queryIDs(t, out))
}

func TestQuery_Count(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--mode", "count", "--limit", "1",
		"--where", `{"data.common.notional": {"gte": 2500000}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 2}`, out)
}

func TestQuery_List(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--mode", "list",
		"--fields", "data.common.book,data.general.label", "--ids", "T1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "T1", "summary": {"data.common.book": "RATES-1"}}]`, out)
}

func TestQuery_Stdin(t *testing.T) {
	out, _, err := execute(t, tradesJSON, "query", "--input", "-", "--mode", "count")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 3}`, out)
}

func TestQuery_InvalidFilter(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--format", "json",
		"--where", `{"data.common.book": {"like": "RATES"}}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "INVALID_FILTER", resp.Error.Code)
}

func TestQuery_WhereNotJSON(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--format", "json", "--where", `{"data.x":`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeInput, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "--where")
}

func TestQuery_NegativeLimit(t *testing.T) {
	path := writeTrades(t, tradesJSON)
	out, _, err := execute(t, "", "query", "--input", path, "--format", "json", "--limit", "-1")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "INVALID_FILTER", resp.Error.Code)
}

func TestQuery_DuplicateInputID(t *testing.T) {
	path := writeTrades(t, `[{"id": "T1", "data": {}}, {"id": "T1", "data": {}}]`)
	out, _, err := execute(t, "", "query", "--input", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestQuery_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"not an array", `{"id": "T1"}`},
		{"blank id", `[{"id": " ", "data": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", "query", "--input", writeTrades(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestQuery_InvalidMode(t *testing.T) {
	_, _, err := execute(t, "", "query", "--input", writeTrades(t, tradesJSON), "--mode", "sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestQuery_SeedPipeline(t *testing.T) {
	trades, _, err := execute(t, "", "seed", "--count", "12", "--base", "2026-03-02")
	require.NoError(t, err)

	out, _, err := execute(t, trades, "query", "--input", "-", "--mode", "count",
		"--where", `{"data.swapLegs.1.ratesetRef": {"eq": "SOFR"}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 12}`, out)
}
