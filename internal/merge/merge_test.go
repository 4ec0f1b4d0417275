package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcstore/internal/value"
)

func obj(t *testing.T, s string) value.Object {
	t.Helper()
	o, err := value.UnmarshalObject([]byte(s))
	require.NoError(t, err)
	return o
}

func assertJSON(t *testing.T, want string, got value.Value) {
	t.Helper()
	data, err := value.MarshalCanonical(got)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(data))
}

func TestObjects(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		patch    string
		want     string
	}{
		{
			name:     "preserves untouched keys",
			existing: `{"a":1,"b":{"c":2,"d":3}}`,
			patch:    `{"b":{"c":5}}`,
			want:     `{"a":1,"b":{"c":5,"d":3}}`,
		},
		{
			name:     "null removes object",
			existing: `{"leg1":{"n":1},"leg2":{"n":2}}`,
			patch:    `{"leg2":null}`,
			want:     `{"leg1":{"n":1}}`,
		},
		{
			name:     "null sets scalar",
			existing: `{"broker":"X"}`,
			patch:    `{"broker":null}`,
			want:     `{"broker":null}`,
		},
		{
			name:     "null on absent key is kept",
			existing: `{"a":1}`,
			patch:    `{"b":null}`,
			want:     `{"a":1,"b":null}`,
		},
		{
			name:     "null over array sets null",
			existing: `{"tags":["a"]}`,
			patch:    `{"tags":null}`,
			want:     `{"tags":null}`,
		},
		{
			name:     "null over null stays null",
			existing: `{"a":null}`,
			patch:    `{"a":null}`,
			want:     `{"a":null}`,
		},
		{
			name:     "array replaced not merged",
			existing: `{"tags":["a","b"]}`,
			patch:    `{"tags":["c"]}`,
			want:     `{"tags":["c"]}`,
		},
		{
			name:     "array of objects replaced",
			existing: `{"flows":[{"n":1},{"n":2}]}`,
			patch:    `{"flows":[{"m":3}]}`,
			want:     `{"flows":[{"m":3}]}`,
		},
		{
			name:     "object replaces scalar",
			existing: `{"a":1}`,
			patch:    `{"a":{"x":1}}`,
			want:     `{"a":{"x":1}}`,
		},
		{
			name:     "scalar replaces object",
			existing: `{"a":{"x":1}}`,
			patch:    `{"a":7}`,
			want:     `{"a":7}`,
		},
		{
			name:     "new nested key added",
			existing: `{"a":{"x":1}}`,
			patch:    `{"a":{"y":{"z":true}}}`,
			want:     `{"a":{"x":1,"y":{"z":true}}}`,
		},
		{
			name:     "deep null removal",
			existing: `{"a":{"b":{"c":{"d":1},"e":2}}}`,
			patch:    `{"a":{"b":{"c":null}}}`,
			want:     `{"a":{"b":{"e":2}}}`,
		},
		{
			name:     "empty patch is identity",
			existing: `{"a":{"b":[1,2]},"c":null}`,
			patch:    `{}`,
			want:     `{"a":{"b":[1,2]},"c":null}`,
		},
		{
			name:     "empty object patch over object keeps it",
			existing: `{"a":{"b":1}}`,
			patch:    `{"a":{}}`,
			want:     `{"a":{"b":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Objects(obj(t, tt.existing), obj(t, tt.patch))
			assertJSON(t, tt.want, got)
		})
	}
}

func TestObjects_DoesNotMutateInputs(t *testing.T) {
	existing := obj(t, `{"a":{"b":1,"c":{"d":2}},"tags":["x"],"gone":{"k":1}}`)
	patch := obj(t, `{"a":{"b":9,"c":{"e":3}},"tags":["y"],"gone":null}`)

	existingBefore := existing.Clone()
	patchBefore := patch.Clone()

	result := Objects(existing, patch)

	assert.True(t, value.Equal(existingBefore, existing), "existing mutated")
	assert.True(t, value.Equal(patchBefore, patch), "patch mutated")
	assertJSON(t, `{"a":{"b":9,"c":{"d":2,"e":3}},"tags":["y"]}`, result)
}

func TestObjects_ResultSharesNoContainers(t *testing.T) {
	existing := obj(t, `{"keep":{"k":1}}`)
	patch := obj(t, `{"add":{"n":1},"list":[{"m":1}]}`)

	result := Objects(existing, patch)
	result["keep"].(value.Object)["k"] = value.NewInt(100)
	result["add"].(value.Object)["n"] = value.NewInt(100)
	result["list"].(value.Array)[0].(value.Object)["m"] = value.NewInt(100)

	assertJSON(t, `{"keep":{"k":1}}`, existing)
	assertJSON(t, `{"add":{"n":1},"list":[{"m":1}]}`, patch)
}

func TestMerge_NonObjectRoot(t *testing.T) {
	assertJSON(t, `[1]`, Merge(obj(t, `{"a":1}`), value.Array{value.NewInt(1)}))
	assertJSON(t, `{"a":1}`, Merge(value.String("old"), obj(t, `{"a":1}`)))
	assertJSON(t, `{"a":2}`, Merge(obj(t, `{"a":1}`), obj(t, `{"a":2}`)))
}

func TestObjects_Deterministic(t *testing.T) {
	existing := obj(t, `{"a":1,"b":{"c":2},"d":[1],"e":"x"}`)
	patch := obj(t, `{"b":{"c":null,"f":1},"d":null,"g":true}`)

	first, err := value.MarshalCanonical(Objects(existing, patch))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := value.MarshalCanonical(Objects(existing, patch))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
	assert.Equal(t, `{"a":1,"b":{"c":null,"f":1},"d":null,"e":"x","g":true}`, string(first))
}
