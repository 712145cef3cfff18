package stringlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    List
		wantErr string
	}{
		{name: "null", input: `null`, want: nil},
		{name: "single string", input: `"Blue"`, want: List{"Blue"}},
		{name: "empty string", input: `""`, want: List{""}},
		{name: "array", input: `["Blue","Black"]`, want: List{"Blue", "Black"}},
		{name: "empty array", input: `[]`, want: List{}},
		{name: "array skips non strings", input: `["Blue", 3, null, {"a":1}, ["x"], true, "Red"]`, want: List{"Blue", "Red"}},
		{name: "number", input: `42`, wantErr: "unexpected JSON number"},
		{name: "object", input: `{"color":"Blue"}`, wantErr: "unexpected JSON object"},
		{name: "boolean", input: `false`, wantErr: "unexpected JSON boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got List
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var shapeErr *ShapeError
				assert.ErrorAs(t, err, &shapeErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		list List
		want string
	}{
		{name: "nil", list: nil, want: `null`},
		{name: "empty", list: List{}, want: `null`},
		{name: "single", list: List{"Blue"}, want: `"Blue"`},
		{name: "multiple", list: List{"Blue", "Black"}, want: `["Blue","Black"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.list)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestList_RoundTrip(t *testing.T) {
	t.Run("single string stays a string", func(t *testing.T) {
		var l List
		require.NoError(t, json.Unmarshal([]byte(`"Island"`), &l))
		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.Equal(t, `"Island"`, string(out))
	})

	t.Run("two element array stays an array", func(t *testing.T) {
		var l List
		require.NoError(t, json.Unmarshal([]byte(`["W","U"]`), &l))
		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.Equal(t, `["W","U"]`, string(out))
	})

	t.Run("one element array collapses to a string", func(t *testing.T) {
		var l List
		require.NoError(t, json.Unmarshal([]byte(`["U"]`), &l))
		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.Equal(t, `"U"`, string(out))
	})

	t.Run("null stays null", func(t *testing.T) {
		var l List
		require.NoError(t, json.Unmarshal([]byte(`null`), &l))
		assert.True(t, l.IsEmpty())
		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.Equal(t, `null`, string(out))
	})
}

func TestList_InStruct(t *testing.T) {
	type query struct {
		Colors List `json:"colors,omitempty"`
		Name   string `json:"name"`
	}

	var q query
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Counterspell","colors":"Blue"}`), &q))
	assert.Equal(t, List{"Blue"}, q.Colors)

	var missing query
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Wastes"}`), &missing))
	assert.Nil(t, missing.Colors)

	out, err := json.Marshal(missing)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Wastes"}`, string(out))

	err = json.Unmarshal([]byte(`{"colors":7}`), &q)
	require.Error(t, err)
}

func TestOf(t *testing.T) {
	assert.Nil(t, Of())
	assert.Equal(t, List{"a", "b"}, Of("a", "b"))
}

func TestList_Compact(t *testing.T) {
	tests := []struct {
		name string
		in   List
		want List
	}{
		{"nil", nil, nil},
		{"single blank", List{""}, nil},
		{"whitespace only", List{"  ", "\t"}, nil},
		{"keeps order", List{"Blue", "", " Black "}, List{"Blue", "Black"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Compact())
		})
	}
}
