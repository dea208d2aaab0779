package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsNumbers(t *testing.T) {
	v, err := Decode([]byte(`{"revenue": 12.50, "count": 3}`))
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, json.Number("12.50"), m["revenue"])
	assert.Equal(t, json.Number("3"), m["count"])
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"a":1}   `))
	require.NoError(t, err)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"whitespace string", "   ", false},
		{"string", "x", true},
		{"false", false, false},
		{"true", true, true},
		{"zero number", json.Number("0"), false},
		{"zero decimal", json.Number("0.0"), false},
		{"number", json.Number("4.2"), true},
		{"empty list", []any{}, false},
		{"list", []any{""}, true},
		{"empty object", map[string]any{}, false},
		{"object", map[string]any{"a": nil}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.input))
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("[COMPANY NAME]"))
	assert.True(t, IsPlaceholder("Founded in [YEAR]"))
	assert.False(t, IsPlaceholder("Acme Corp"))
	assert.False(t, IsPlaceholder([]any{"a"}), "only strings can be placeholders")
	assert.False(t, IsPlaceholder(nil))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNull, KindOf(nil))
	assert.Equal(t, KindString, KindOf("x"))
	assert.Equal(t, KindNumber, KindOf(json.Number("1")))
	assert.Equal(t, KindBool, KindOf(true))
	assert.Equal(t, KindList, KindOf([]any{}))
	assert.Equal(t, KindObject, KindOf(map[string]any{}))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "abc", Text("abc"))
	assert.Equal(t, "12.50", Text(json.Number("12.50")))
	assert.Equal(t, "1.5", Text(1.5))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, `["a",1]`, Text([]any{"a", json.Number("1")}))
}

func TestCloneIsDeep(t *testing.T) {
	orig := map[string]any{
		"rows": []any{map[string]any{"name": "a"}},
	}
	cp := CloneMap(orig)
	cp["rows"].([]any)[0].(map[string]any)["name"] = "b"

	assert.Equal(t, "a", orig["rows"].([]any)[0].(map[string]any)["name"])
	assert.Nil(t, CloneMap(nil))
}

func TestLookup(t *testing.T) {
	doc := map[string]any{
		"entities": map[string]any{"company": map[string]any{"name": "Acme"}},
	}

	v, ok := Lookup(doc, "entities.company.name")
	require.True(t, ok)
	assert.Equal(t, "Acme", v)

	_, ok = Lookup(doc, "entities.company.ticker")
	assert.False(t, ok)

	_, ok = Lookup(doc, "entities.company.name.first")
	assert.False(t, ok, "cannot descend into a string")
}
