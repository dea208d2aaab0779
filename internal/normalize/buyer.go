package normalize

import (
	"github.com/roach88/deckcheck/internal/ir"
)

// DefaultBuyerHeaders are used when a buyer_profiles slide has no headers.
var DefaultBuyerHeaders = []string{"Buyer Profile", "Strategic Rationale", "Key Synergies", "Fit"}

// MaxBuyerColumns caps the number of buyer table headers.
const MaxBuyerColumns = 5

// CanonicalBuyerKeys are the keys every normalized buyer row carries, in
// positional order.
var CanonicalBuyerKeys = []string{"buyer_name", "strategic_rationale", "key_synergies", "fit", "fit_score"}

// buyerAliases lists, per canonical key, the legacy keys it is back-filled
// from when empty.
var buyerAliases = map[string][]string{
	"buyer_name":          {"name"},
	"strategic_rationale": {"rationale"},
	"key_synergies":       {"synergies"},
	"fit":                 {"fit_score", "concerns"},
	"fit_score":           nil,
}

// CanonicalBuyerRow converts a row of either shape into a canonical buyer
// object. Positional cells map to CanonicalBuyerKeys in order; object rows
// keep all their keys and gain any missing canonical key from its aliases.
// Missing values become "".
func CanonicalBuyerRow(r ir.Row) ir.NamedRow {
	switch row := r.(type) {
	case ir.PositionalRow:
		out := make(ir.NamedRow, len(CanonicalBuyerKeys))
		for i, key := range CanonicalBuyerKeys {
			v := row.Cell(i)
			if v == nil {
				v = ""
			}
			out[key] = ir.Clone(v)
		}
		return out
	case ir.NamedRow:
		out := ir.NamedRow(ir.CloneMap(row))
		if out == nil {
			out = ir.NamedRow{}
		}
		for _, key := range CanonicalBuyerKeys {
			if ir.Truthy(out[key]) {
				continue
			}
			if v := row.First(buyerAliases[key]...); v != nil {
				out[key] = ir.Clone(v)
				continue
			}
			if _, ok := out[key]; !ok {
				out[key] = ""
			}
		}
		return out
	default:
		return ir.NamedRow{"buyer_name": "", "strategic_rationale": "", "key_synergies": "", "fit": "", "fit_score": ""}
	}
}

// NormalizeBuyerProfiles defaults the table headers of a buyer_profiles
// slide and rewrites its inline table_rows into canonical buyer objects.
// Slides of other templates, or whose data is absent or not an object, are
// returned as-is. A table_rows value that is not a list is left for the validator to
// report. The input slide is not modified.
func NormalizeBuyerProfiles(s ir.Slide) ir.Slide {
	if s.Template != TemplateBuyerProfiles {
		return s
	}
	if _, ok := s.DataMap(); !ok {
		return s
	}

	out := s.Clone()
	data, _ := out.DataMap()

	data["table_headers"] = buyerHeaders(data["table_headers"])

	list, ok := data["table_rows"].([]any)
	if !ok {
		return out
	}
	rows := make([]any, 0, len(list))
	for _, entry := range list {
		row, ok := ir.RowOf(entry)
		if !ok {
			// A bare scalar is read as a one-cell positional row.
			row = ir.PositionalRow{entry}
		}
		rows = append(rows, map[string]any(CanonicalBuyerRow(row)))
	}
	data["table_rows"] = rows
	return out
}

func buyerHeaders(v any) []any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		out := make([]any, len(DefaultBuyerHeaders))
		for i, h := range DefaultBuyerHeaders {
			out[i] = h
		}
		return out
	}
	if len(list) > MaxBuyerColumns {
		list = list[:MaxBuyerColumns]
	}
	return list
}
