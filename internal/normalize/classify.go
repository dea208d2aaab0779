package normalize

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/deckcheck/internal/ir"
)

// FinanceTerms is the keyword set that marks a buyer table as a list of
// financial institutions or comparables. The order is the order fragments
// appear in generated descriptions.
var FinanceTerms = []string{
	"revenue",
	"ebitda",
	"market_cap",
	"net_income",
	"margin",
	"enterprise_value",
	"ev",
	"valuation",
	"assets",
	"liabilities",
	"ownership",
	"ticker",
}

// DescriptionSeparator joins description fragments.
const DescriptionSeparator = " • "

// EmptyDescription is used when a record has nothing to describe.
const EmptyDescription = "—"

var countrySuffixRegex = regexp.MustCompile(`\(([^)]+)\)\s*$`)

var titleCaser = cases.Title(language.English)

// IsFinanceKey reports whether an object-row key is a finance term. Keys
// are compared whole and case-insensitively, so "evaluation" or
// "revenue_notes" do not count.
func IsFinanceKey(key string) bool {
	return slices.Contains(FinanceTerms, strings.ToLower(strings.TrimSpace(key)))
}

// HeaderFinanceTerm returns the first finance term found in a header.
// Headers are split into lowercase alphanumeric tokens and a term matches a
// contiguous run of tokens: "EV/EBITDA" matches "ev", "Market Cap ($bn)"
// matches "market_cap", "Relevance" matches nothing.
func HeaderFinanceTerm(header string) (string, bool) {
	tokens := headerTokens(header)
	for _, term := range FinanceTerms {
		if containsRun(tokens, strings.Split(term, "_")) {
			return term, true
		}
	}
	return "", false
}

// HasFinanceHeaders reports whether any header names a finance term.
func HasFinanceHeaders(headers []string) bool {
	for _, h := range headers {
		if _, ok := HeaderFinanceTerm(h); ok {
			return true
		}
	}
	return false
}

// ClassifyFinance converts a buyer_profiles slide whose inline rows carry
// financial figures into a sea_conglomerates slide. A table counts as
// financial when any object row has a finance key, or when it has
// positional rows and a header names a finance term. Rationale and synergy
// prose is never scanned.
//
// The second result is false, and the slide returned unchanged, when the
// slide is not a financial buyer table. Slides without inline rows are
// never converted.
func ClassifyFinance(s ir.Slide) (ir.Slide, bool) {
	if s.Template != TemplateBuyerProfiles {
		return s, false
	}
	data, ok := s.DataMap()
	if !ok {
		return s, false
	}
	rawRows, ok := data["table_rows"].([]any)
	if !ok || len(rawRows) == 0 {
		return s, false
	}
	headers := stringList(data["table_headers"])

	var rows []ir.Row
	financial := false
	hasPositional := false
	for _, raw := range rawRows {
		row, ok := ir.RowOf(raw)
		if !ok {
			continue
		}
		rows = append(rows, row)
		switch r := row.(type) {
		case ir.NamedRow:
			for k := range r {
				if IsFinanceKey(k) {
					financial = true
				}
			}
		case ir.PositionalRow:
			hasPositional = true
		}
	}
	if hasPositional && HasFinanceHeaders(headers) {
		financial = true
	}
	if !financial {
		return s, false
	}

	layout := newHeaderLayout(headers)
	records := make([]any, 0, len(rows))
	for _, row := range rows {
		var rec conglomerate
		switch r := row.(type) {
		case ir.NamedRow:
			rec = namedRecord(r)
		case ir.PositionalRow:
			rec = layout.record(r)
		}
		records = append(records, rec.toMap())
	}

	return ir.Slide{Template: TemplateSeaConglomerates, Data: records}, true
}

type conglomerate struct {
	name    string
	country string
	parts   []string
}

func (c conglomerate) toMap() map[string]any {
	desc := EmptyDescription
	if len(c.parts) > 0 {
		desc = strings.Join(c.parts, DescriptionSeparator)
	}
	return map[string]any{
		"name":        c.name,
		"country":     c.country,
		"description": desc,
	}
}

func namedRecord(r ir.NamedRow) conglomerate {
	lower := make(map[string]any, len(r))
	for k, v := range r {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, dup := lower[lk]; !dup || populated(v) {
			lower[lk] = v
		}
	}

	name := ir.Text(ir.NamedRow(lower).First("buyer_name", "name"))
	rec := conglomerate{name: name, country: ir.Text(lower["country"])}
	if rec.country == "" {
		rec.country = CountryFromName(name)
	}

	for _, term := range FinanceTerms {
		if v, ok := lower[term]; ok && populated(v) {
			rec.parts = append(rec.parts, termLabel(term)+": "+ir.Text(v))
		}
	}
	if v := ir.NamedRow(lower).First("strategic_rationale", "rationale"); v != nil {
		rec.parts = append(rec.parts, "Rationale: "+ir.Text(v))
	}
	if v := ir.NamedRow(lower).First("key_synergies", "synergies"); v != nil {
		rec.parts = append(rec.parts, "Synergies: "+ir.Text(v))
	}
	return rec
}

// headerLayout maps header columns to the fields a positional row carries.
type headerLayout struct {
	name      int
	finance   []financeColumn
	rationale int
	synergies int
}

type financeColumn struct {
	index int
	label string
}

func newHeaderLayout(headers []string) headerLayout {
	l := headerLayout{name: 0, rationale: -1, synergies: -1}
	claimed := make(map[int]bool)

	for i, h := range headers {
		if isNameHeader(h) {
			l.name = i
			break
		}
	}
	for i, h := range headers {
		switch strings.Join(headerTokens(h), "_") {
		case "strategic_rationale", "rationale":
			if l.rationale < 0 {
				l.rationale = i
				claimed[i] = true
			}
		case "key_synergies", "synergies":
			if l.synergies < 0 {
				l.synergies = i
				claimed[i] = true
			}
		}
	}
	for _, term := range FinanceTerms {
		want := strings.Split(term, "_")
		for i, h := range headers {
			if claimed[i] || i == l.name {
				continue
			}
			if containsRun(headerTokens(h), want) {
				label := strings.TrimSpace(h)
				if label == "" {
					label = termLabel(term)
				}
				l.finance = append(l.finance, financeColumn{index: i, label: label})
				claimed[i] = true
				break
			}
		}
	}
	slices.SortFunc(l.finance, func(a, b financeColumn) int { return a.index - b.index })
	return l
}

func isNameHeader(h string) bool {
	switch strings.Join(headerTokens(h), "_") {
	case "buyer_name", "buyer", "buyer_profile", "name", "company":
		return true
	}
	return false
}

func (l headerLayout) record(r ir.PositionalRow) conglomerate {
	name := ir.Text(r.Cell(l.name))
	rec := conglomerate{name: name, country: CountryFromName(name)}
	for _, col := range l.finance {
		if v := r.Cell(col.index); populated(v) {
			rec.parts = append(rec.parts, col.label+": "+ir.Text(v))
		}
	}
	if l.rationale >= 0 {
		if v := r.Cell(l.rationale); populated(v) {
			rec.parts = append(rec.parts, "Rationale: "+ir.Text(v))
		}
	}
	if l.synergies >= 0 {
		if v := r.Cell(l.synergies); populated(v) {
			rec.parts = append(rec.parts, "Synergies: "+ir.Text(v))
		}
	}
	return rec
}

// CountryFromName extracts a trailing "(Country)" suffix:
// "Yamazaki Baking Co. (Japan)" yields "Japan".
func CountryFromName(name string) string {
	m := countrySuffixRegex.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func termLabel(term string) string {
	if term == "ev" {
		return "EV"
	}
	return titleCaser.String(strings.ReplaceAll(term, "_", " "))
}

// populated treats nil and blank strings as absent. Zero numbers count.
func populated(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func headerTokens(h string) []string {
	return strings.FieldsFunc(strings.ToLower(h), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsRun(tokens, want []string) bool {
	if len(want) == 0 || len(want) > len(tokens) {
		return false
	}
	for i := 0; i+len(want) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, elem := range list {
		out[i] = ir.Text(elem)
	}
	return out
}
