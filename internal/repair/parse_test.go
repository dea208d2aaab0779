package repair

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject(t *testing.T) {
	obj, err := ParseObject("```json\n{\"revenue\": 12.5, \"items\": [1, 2,],}\n```")
	require.NoError(t, err)
	assert.Equal(t, json.Number("12.5"), obj["revenue"])
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, obj["items"])
}

func TestParseObjectEmptyObject(t *testing.T) {
	obj, err := ParseObject("{}")
	require.NoError(t, err)
	assert.Empty(t, obj)
}

func TestParseObjectNoObject(t *testing.T) {
	_, err := ParseObject("Sorry, I cannot help with that.")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "locate", pe.Stage)
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestParseObjectDecodeError(t *testing.T) {
	_, err := ParseObject(`{"a": 1 "b": 2}`)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "decode", pe.Stage)
	assert.Greater(t, pe.Offset, int64(0))
	assert.Contains(t, pe.Error(), "offset")
}

func TestParseObjectMultiLineTrailingComma(t *testing.T) {
	// Known limitation: the comma and the brace are on different lines.
	_, err := ParseObject("{\n  \"a\": 1,\n}")
	require.Error(t, err)
}
