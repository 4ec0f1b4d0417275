package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() Context {
	return Context{User: "alice", Agent: "desk-ui", Action: "book", Intent: "new deal"}
}

func TestContextValidate_OK(t *testing.T) {
	require.NoError(t, validContext().Validate())
}

func TestContextValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Context)
		missing string
	}{
		{"user empty", func(c *Context) { c.User = "" }, "user"},
		{"agent blank", func(c *Context) { c.Agent = "   " }, "agent"},
		{"action tab", func(c *Context) { c.Action = "\t" }, "action"},
		{"intent empty", func(c *Context) { c.Intent = "" }, "intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := validContext()
			tt.mutate(&ctx)

			err := ctx.Validate()
			require.ErrorIs(t, err, ErrInvalidContext)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestContextValidate_AllMissing(t *testing.T) {
	err := Context{}.Validate()
	require.ErrorIs(t, err, ErrInvalidContext)
	assert.Equal(t, "invalid context: missing user, agent, action, intent", err.Error())
}

func TestContextNormalize(t *testing.T) {
	ctx := Context{User: " bob ", Agent: "cli\n", Action: " seed", Intent: "demo "}
	assert.Equal(t, Context{User: "bob", Agent: "cli", Action: "seed", Intent: "demo"}, ctx.Normalize())
}

func TestContextJSONShape(t *testing.T) {
	data, err := json.Marshal(validContext())
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"alice","agent":"desk-ui","action":"book","intent":"new deal"}`, string(data))
}

func TestNewEntry_NormalizesContext(t *testing.T) {
	e := NewEntry(Context{User: " u ", Agent: "a", Action: "x", Intent: "i"}, OpDelete, "T1")
	assert.Equal(t, "u", e.Context.User)
	assert.Equal(t, OpDelete, e.Operation)
	assert.Equal(t, []string{"T1"}, e.IDs)
	assert.Zero(t, e.Seq)
}

func TestEntryClone_Independent(t *testing.T) {
	e := Entry{Seq: 1, IDs: []string{"A", "B"}, Missing: []string{"C"}}
	cp := e.Clone()
	cp.IDs[0] = "Z"
	cp.Missing[0] = "Z"

	assert.Equal(t, "A", e.IDs[0])
	assert.Equal(t, "C", e.Missing[0])
}

func TestEntryJSON_OmitsEmptyMissing(t *testing.T) {
	e := Entry{
		Seq:       3,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Context:   validContext(),
		Operation: OpSaveNew,
		IDs:       []string{"T1"},
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "missing")
	assert.Contains(t, string(data), `"timestamp":"2026-01-02T03:04:05Z"`)
}

func TestOperationValid(t *testing.T) {
	for _, op := range []Operation{OpSaveNew, OpSaveUpdate, OpSavePartial, OpDelete, OpDeleteGroup, OpPurge} {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operation("rename").Valid())
}
