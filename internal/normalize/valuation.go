package normalize

import (
	"strings"

	"github.com/roach88/deckcheck/internal/ir"
)

// Hide-column flags written into valuation_overview data.
const (
	HideMetricCol = "__hide_metric_col"
	Hide22ACol    = "__hide_22a_col"
	Hide23ECol    = "__hide_23e_col"
)

// Methodology types inferred from methodology text.
const (
	MethodologyPrecedent = "precedent_transactions"
	MethodologyTrading   = "trading_comps"
	MethodologyDCF       = "dcf"
)

// MissingMultiple marks a multiple that could not be found.
const MissingMultiple = "-"

var multipleAliases = map[string][]string{
	"22a_multiple": {"22A_multiple", "FY22_multiple"},
	"23e_multiple": {"23E_multiple", "FY23E_multiple"},
}

// NormalizeValuation back-fills each valuation_overview row and computes the
// hide-column flags. A flag is true when no row populates that column; "-"
// counts as unpopulated. Non-object rows are skipped. The input slide is not
// modified.
func NormalizeValuation(s ir.Slide) ir.Slide {
	if s.Template != TemplateValuation {
		return s
	}
	if _, ok := s.DataMap(); !ok {
		return s
	}

	out := s.Clone()
	data, _ := out.DataMap()

	anyMetric, any22a, any23e := false, false, false
	rows, _ := data["valuation_data"].([]any)
	for _, entry := range rows {
		row, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		normalizeValuationRow(row)

		anyMetric = anyMetric || hasValue(row["metric"])
		any22a = any22a || hasValue(row["22a_multiple"])
		any23e = any23e || hasValue(row["23e_multiple"])
	}

	data[HideMetricCol] = !anyMetric
	data[Hide22ACol] = !any22a
	data[Hide23ECol] = !any23e
	return out
}

func normalizeValuationRow(row map[string]any) {
	meth := strings.ToLower(ir.Text(row["methodology"]))

	if !ir.Truthy(row["metric"]) {
		switch {
		case strings.Contains(meth, "precedent"), strings.Contains(meth, "trading"):
			row["metric"] = "EV/Revenue"
		case strings.Contains(meth, "dcf"), strings.Contains(meth, "discounted"):
			row["metric"] = "DCF"
		}
	}

	for _, key := range []string{"22a_multiple", "23e_multiple"} {
		if _, ok := row[key]; ok {
			continue
		}
		row[key] = MissingMultiple
		if v := ir.NamedRow(row).First(multipleAliases[key]...); v != nil {
			row[key] = ir.Clone(v)
		}
	}

	if !ir.Truthy(row["methodology_type"]) {
		switch {
		case strings.Contains(meth, "precedent"):
			row["methodology_type"] = MethodologyPrecedent
		case strings.Contains(meth, "trading"):
			row["methodology_type"] = MethodologyTrading
		case strings.Contains(meth, "dcf"), strings.Contains(meth, "discounted"):
			row["methodology_type"] = MethodologyDCF
		}
	}
}

func hasValue(v any) bool {
	if !populated(v) {
		return false
	}
	s, ok := v.(string)
	return !ok || strings.TrimSpace(s) != MissingMultiple
}
