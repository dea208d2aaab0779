package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deckcheck/internal/catalog"
)

func checkOne(t *testing.T, slotJSON, valueJSON string) Findings {
	t.Helper()
	var slot catalog.Slot
	require.NoError(t, slot.UnmarshalJSON([]byte(slotJSON)))
	data := decodeSlide(t, `{"data": {"field": `+valueJSON+`}}`).Data.(map[string]any)

	var f Findings
	checkSlots(&f, data, catalog.Slots{{Name: "field", Slot: slot}}, true)
	return f
}

// ============================================================================
// Value checks
// ============================================================================

func TestCheckValue(t *testing.T) {
	tests := []struct {
		name  string
		slot  string
		value string
		want  Findings
	}{
		{
			name:  "populated string",
			slot:  `{"type": "string", "label": "Title"}`,
			value: `"Company"`,
			want:  Findings{},
		},
		{
			name:  "number accepted as text",
			slot:  `"string"`,
			value: `42`,
			want:  Findings{},
		},
		{
			name:  "placeholder",
			slot:  `{"type": "string", "label": "Title"}`,
			value: `"[COMPANY NAME]"`,
			want:  Findings{EmptyFields: []string{"Placeholder Title (field)"}},
		},
		{
			name:  "whitespace string",
			slot:  `{"type": "string", "label": "Title"}`,
			value: `"   "`,
			want:  Findings{EmptyFields: []string{"Empty Title (field)"}},
		},
		{
			name:  "empty list",
			slot:  `{"type": "list", "label": "Highlights"}`,
			value: `[]`,
			want:  Findings{EmptyFields: []string{"Empty Highlights (field)"}},
		},
		{
			name:  "null",
			slot:  `"any"`,
			value: `null`,
			want:  Findings{EmptyFields: []string{"Empty field (field)"}},
		},
		{
			name:  "string where list expected",
			slot:  `{"type": "list", "label": "Highlights"}`,
			value: `"one, two"`,
			want:  Findings{Issues: []string{"Highlights (field) should be a list, got string"}},
		},
		{
			name:  "list where object expected",
			slot:  `{"type": "object", "label": "Metrics"}`,
			value: `[1]`,
			want:  Findings{Issues: []string{"Metrics (field) should be an object, got list"}},
		},
		{
			name:  "number slot",
			slot:  `{"type": "number", "label": "Revenue"}`,
			value: `12.5`,
			want:  Findings{},
		},
		{
			name:  "text where number expected",
			slot:  `{"type": "number", "label": "Revenue"}`,
			value: `"$12.5M"`,
			want:  Findings{Issues: []string{"Revenue (field) should be a number, got string"}},
		},
		{
			name:  "bool slot",
			slot:  `"bool"`,
			value: `true`,
			want:  Findings{},
		},
		{
			name:  "text where bool expected",
			slot:  `{"type": "bool", "label": "Public"}`,
			value: `"yes"`,
			want:  Findings{Issues: []string{"Public (field) should be true or false, got string"}},
		},
		{
			name:  "too long",
			slot:  `{"type": "string", "label": "Title", "max_length": 5}`,
			value: `"Révolution"`,
			want:  Findings{Warnings: []string{"Title (field) is 10 characters, keep it under 5"}},
		},
		{
			name:  "too few items",
			slot:  `{"type": "list", "label": "Items", "min_items": 3}`,
			value: `["a"]`,
			want:  Findings{Warnings: []string{"Items (field) has 1 items, at least 3 recommended"}},
		},
		{
			name:  "too many items",
			slot:  `{"type": "list", "label": "Items", "max_items": 1}`,
			value: `["a", "b"]`,
			want:  Findings{Warnings: []string{"Items (field) has 2 items, at most 1 recommended"}},
		},
		{
			name:  "item placeholder",
			slot:  `{"type": "list", "label": "Items", "items": {"type": "string"}}`,
			value: `["a", "[TBD]"]`,
			want:  Findings{EmptyFields: []string{"Placeholder Items #2 (field[1])"}},
		},
		{
			name:  "item property missing",
			slot:  `{"type": "list", "label": "Competitors", "items": {"properties": {"name": "any", "revenue": "any"}}}`,
			value: `[{"name": "A", "revenue": 10}, {"name": "B"}]`,
			want:  Findings{EmptyFields: []string{"Missing revenue (field[1].revenue)"}},
		},
		{
			name:  "string item with properties skips property checks",
			slot:  `{"type": "list", "label": "Advantages", "items": {"max_length": 5, "properties": {"title": "string"}}}`,
			value: `["short", "much too long"]`,
			want:  Findings{Warnings: []string{"Advantages #2 (field[1]) is 13 characters, keep it under 5"}},
		},
		{
			name:  "nested object property empty",
			slot:  `{"type": "object", "label": "Growth", "properties": {"strategies": {"type": "list", "label": "strategies"}}}`,
			value: `{"strategies": []}`,
			want:  Findings{EmptyFields: []string{"Empty strategies (field.strategies)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkOne(t, tt.slot, tt.value))
		})
	}
}

func TestAbsentSlotSeverity(t *testing.T) {
	tests := []struct {
		slot string
		want Findings
	}{
		{`{"type": "string", "label": "Title"}`, Findings{MissingFields: []string{"Missing Title (field)"}}},
		{`{"type": "table", "label": "Coverage", "severity": "issue"}`, Findings{Issues: []string{"Missing Coverage (field)"}}},
		{`{"type": "object", "label": "Metrics", "severity": "warning"}`, Findings{Warnings: []string{"Missing Metrics (field)"}}},
	}
	for _, tt := range tests {
		var slot catalog.Slot
		require.NoError(t, slot.UnmarshalJSON([]byte(tt.slot)))

		var f Findings
		checkSlots(&f, map[string]any{}, catalog.Slots{{Name: "field", Slot: slot}}, true)
		assert.Equal(t, tt.want, f, tt.slot)
	}
}

func TestAbsentOptionalSlotIsSkipped(t *testing.T) {
	var f Findings
	checkSlots(&f, map[string]any{}, catalog.Slots{{Name: "subtitle", Slot: catalog.Slot{Type: catalog.TypeString}}}, false)
	assert.Equal(t, Findings{}, f)
}

// ============================================================================
// Tables
// ============================================================================

const assessmentSlot = `{"type": "table", "label": "Assessment", "min_columns": 2, "ideal_columns": [3, 5],
	"header_terms": ["company", "market"]}`

func TestCheckTable(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Findings
	}{
		{
			name:  "well formed",
			value: `[["Company", "Tech", "Scale"], ["A", "x", "y"]]`,
			want:  Findings{},
		},
		{
			name:  "rows not arrays",
			value: `[{"company": "A"}]`,
			want:  Findings{Issues: []string{"Assessment (field) should be a table (array of arrays), got rows of object"}},
		},
		{
			name:  "later row not an array",
			value: `[["Company", "Tech", "Scale"], "A", "B"]`,
			want:  Findings{Issues: []string{"Assessment (field) row #2 should be an array, got string"}},
		},
		{
			name:  "too few columns",
			value: `[["Company"], ["A"]]`,
			want:  Findings{Issues: []string{"Assessment (field) has only 1 columns, at least 2 required"}},
		},
		{
			name:  "outside ideal range",
			value: `[["Company", "Tech"], ["A", "x"]]`,
			want:  Findings{Warnings: []string{"Assessment (field) has 2 columns, 3-5 recommended for readability"}},
		},
		{
			name:  "no header term",
			value: `[["Name", "Tech", "Scale"], ["A", "x", "y"]]`,
			want:  Findings{Warnings: []string{"Assessment (field) headers should mention one of: company, market"}},
		},
		{
			name:  "header only",
			value: `[["Company", "Market", "Scale"]]`,
			want:  Findings{Warnings: []string{"Assessment (field) has a header row but no data rows"}},
		},
		{
			name:  "header term is case-insensitive",
			value: `[["Rank", "MARKET Share", "Scale"], ["1", "x", "y"]]`,
			want:  Findings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkOne(t, assessmentSlot, tt.value))
		})
	}
}
