package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowOf(t *testing.T) {
	r, ok := RowOf([]any{"Acme", "Scale"})
	require.True(t, ok)
	pos, isPos := r.(PositionalRow)
	require.True(t, isPos)
	assert.Equal(t, "Scale", pos.Cell(1))
	assert.Nil(t, pos.Cell(5))
	assert.Nil(t, pos.Cell(-1))

	r, ok = RowOf(map[string]any{"buyer_name": "Acme"})
	require.True(t, ok)
	_, isNamed := r.(NamedRow)
	assert.True(t, isNamed)

	_, ok = RowOf("Acme")
	assert.False(t, ok)
}

func TestNamedRowFirst(t *testing.T) {
	row := NamedRow{"buyer_name": "", "name": "Acme", "alias": "A"}
	assert.Equal(t, "Acme", row.First("buyer_name", "name", "alias"))
	assert.Nil(t, row.First("missing"))
}
