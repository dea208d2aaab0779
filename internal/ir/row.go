package ir

// Row is a sealed sum type for table rows authored by the LLM.
// Only PositionalRow and NamedRow implement it.
type Row interface {
	row() // Sealed
}

// PositionalRow is a row given as an array of cell values.
type PositionalRow []any

func (PositionalRow) row() {}

// Cell returns the cell at index i, or nil when the row is too short.
func (r PositionalRow) Cell(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// NamedRow is a row given as an object of column name to value.
type NamedRow map[string]any

func (NamedRow) row() {}

// First returns the first populated value among keys, in order.
func (r NamedRow) First(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && Truthy(v) {
			return v
		}
	}
	return nil
}

// RowOf classifies a decoded table row. Values that are neither arrays nor
// objects are not rows.
func RowOf(v any) (Row, bool) {
	switch val := v.(type) {
	case []any:
		return PositionalRow(val), true
	case map[string]any:
		return NamedRow(val), true
	default:
		return nil, false
	}
}

