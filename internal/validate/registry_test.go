package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/ir"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(catalog.Default(), opts...)
	require.NoError(t, err)
	return r
}

func decodeSlide(t *testing.T, raw string) ir.Slide {
	t.Helper()
	v, err := ir.Decode([]byte(raw))
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	return ir.SlideFromMap(m)
}

func decodeContentIR(t *testing.T, raw string) ir.ContentIR {
	t.Helper()
	v, err := ir.Decode([]byte(raw))
	require.NoError(t, err)
	doc, ok := ir.NewContentIR(v)
	require.True(t, ok)
	return doc
}

func decodePlan(t *testing.T, raw string) ir.RenderPlan {
	t.Helper()
	v, err := ir.Decode([]byte(raw))
	require.NoError(t, err)
	plan, ok := ir.NewRenderPlan(v)
	require.True(t, ok)
	return plan
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

const completeBusinessOverview = `{"template": "business_overview", "data": {
	"title": "Biz", "description": "desc", "highlights": ["a", "b", "c"],
	"services": ["s1", "s2", "s3", "s4", "s5", "s6"], "positioning_desc": "pos"}}`

// ============================================================================
// Registry construction
// ============================================================================

func TestNewRegistryRequiresCatalog(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.ErrorIs(t, err, ErrNilCatalog)
}

func TestNewRegistryDropsRulesForUnknownTemplates(t *testing.T) {
	called := false
	r := newTestRegistry(t, WithRule("not_in_catalog", func(RuleInput, *Findings) { called = true }))

	assert.False(t, r.HasRules("not_in_catalog"))
	res := r.ValidateSlide(1, decodeSlide(t, `{"template": "not_in_catalog", "data": {"x": 1}}`), nil)
	assert.False(t, called)
	assert.Equal(t, []string{"Unknown template type: not_in_catalog"}, res.Warnings)
	assert.True(t, res.Valid)
}

func TestBuiltinRulesCrossCheckedAgainstCatalog(t *testing.T) {
	cat, err := catalog.Parse([]byte(`[{"id": "appendix"}]`))
	require.NoError(t, err)
	r, err := NewRegistry(cat)
	require.NoError(t, err)

	assert.False(t, r.HasRules(TemplateBuyerProfiles))
	assert.False(t, r.HasRules(TemplateManagementTeam))
}

func TestWithRuleRunsAfterSlots(t *testing.T) {
	r := newTestRegistry(t, WithRule("appendix", func(in RuleInput, f *Findings) {
		if in.Data["items"] == nil {
			f.Warn("appendix has no items")
		}
	}))

	res := r.ValidateSlide(1, decodeSlide(t, `{"template": "appendix", "data": {"title": "Appendix"}}`), nil)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"appendix has no items"}, res.Warnings)
}

func TestWithoutBuiltinRules(t *testing.T) {
	r := newTestRegistry(t, WithoutBuiltinRules(TemplateBuyerProfiles))
	assert.False(t, r.HasRules(TemplateBuyerProfiles))
	assert.True(t, r.HasRules(TemplateManagementTeam))
}

// ============================================================================
// Aggregation
// ============================================================================

func TestValidateScenarioA(t *testing.T) {
	r := newTestRegistry(t)
	doc := decodeContentIR(t, `{"entities": {"company": {"name": "Acme"}}}`)
	plan := decodePlan(t, `{"slides": [`+completeBusinessOverview+`]}`)

	report := r.Validate(doc, plan)
	require.Len(t, report.Slides, 1)
	assert.True(t, report.OverallValid, "%+v", report.Slides[0])
	assert.Equal(t, 1, report.ValidSlides)
	assert.Empty(t, report.Slides[0].Warnings)
}

func TestValidateScenarioB(t *testing.T) {
	r := newTestRegistry(t)
	plan := decodePlan(t, `{"slides": [{"template": "business_overview", "data": {
		"title": "Biz", "description": "desc", "highlights": [],
		"services": ["s1", "s2", "s3", "s4", "s5", "s6"], "positioning_desc": "pos"}}]}`)

	report := r.Validate(nil, plan)
	assert.False(t, report.OverallValid)

	res := report.Slides[0]
	assert.True(t,
		containsSubstring(res.MissingFields, "highlights") || containsSubstring(res.EmptyFields, "highlights"),
		"%+v", res)
}

func TestValidateScenarioC(t *testing.T) {
	r := newTestRegistry(t)
	doc := decodeContentIR(t, `{"entities": {"company": {"name": "Acme"}}}`)
	plan := decodePlan(t, `{"slides": [{"template": "buyer_profiles", "content_ir_key": "strategic_buyers",
		"data": {"title": "Buyers", "table_headers": ["Buyer", "Rationale"]}}]}`)

	report := r.Validate(doc, plan)
	assert.False(t, report.OverallValid)
	assert.Equal(t, []string{
		"content_ir_key 'strategic_buyers' not found in Content IR (unresolved reference: strategic_buyers)",
	}, report.Slides[0].Issues)
}

func TestValidateAggregatorSoundness(t *testing.T) {
	r := newTestRegistry(t)
	plan := decodePlan(t, `{"slides": [
		`+completeBusinessOverview+`,
		{"template": "appendix", "data": {"title": "Appendix"}},
		{"template": "mystery_slide", "data": {"x": 1}},
		{"template": "appendix"},
		{"template": "appendix", "data": {"title": "[TITLE]"}},
		"not an object",
		{"template": "business_overview", "data": {"title": "x", "description": "y", "highlights": ["a"],
			"services": ["1","2","3","4","5","6","7","8","9"], "positioning_desc": "z"}}
	]}`)

	report := r.Validate(nil, plan)

	require.Equal(t, len(plan.Slides), report.TotalSlides)
	require.Len(t, report.Slides, report.TotalSlides)
	assert.Equal(t, report.TotalSlides, report.ValidSlides+report.InvalidSlides)

	allValid := true
	withWarnings := 0
	for i, res := range report.Slides {
		assert.Equal(t, i+1, res.SlideNumber)
		blocking := len(res.Issues)+len(res.MissingFields)+len(res.EmptyFields) > 0
		assert.Equal(t, !blocking, res.Valid, "slide %d", res.SlideNumber)
		allValid = allValid && res.Valid
		if len(res.Warnings) > 0 {
			withWarnings++
		}
	}
	assert.Equal(t, allValid, report.OverallValid)
	assert.Equal(t, withWarnings, report.SlidesWithWarnings)

	assert.Equal(t, []bool{true, true, true, false, false, false, true}, validity(report))
}

func validity(r *Report) []bool {
	out := make([]bool, len(r.Slides))
	for i, res := range r.Slides {
		out[i] = res.Valid
	}
	return out
}

func TestValidateEmptyPlan(t *testing.T) {
	report := newTestRegistry(t).Validate(nil, ir.RenderPlan{})
	assert.True(t, report.OverallValid)
	assert.Zero(t, report.TotalSlides)
	assert.NotNil(t, report.Slides)
}

func TestResultJSONAlwaysHasFourArrays(t *testing.T) {
	res := newTestRegistry(t).ValidateSlide(1, decodeSlide(t, `{"template": "appendix", "data": {"title": "A"}}`), nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slide_number": 1, "template": "appendix", "valid": true,
		"issues": [], "missing_fields": [], "empty_fields": [], "warnings": []}`, string(data))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "invalid: 1/3 slides valid, 2 invalid, 1 with warnings",
		Summary(&Report{TotalSlides: 3, ValidSlides: 1, InvalidSlides: 2, SlidesWithWarnings: 1}))
	assert.Equal(t, "valid: 0/0 slides valid, 0 invalid, 0 with warnings",
		Summary(&Report{OverallValid: true}))
	assert.Equal(t, "no report", Summary(nil))
}

// ============================================================================
// Slide-level baseline
// ============================================================================

func TestMissingDataIsAnIssue(t *testing.T) {
	r := newTestRegistry(t)
	for _, raw := range []string{
		`{"template": "appendix"}`,
		`{"template": "appendix", "data": {}}`,
		`{"template": "appendix", "data": null}`,
		`{"template": "sea_conglomerates", "data": []}`,
	} {
		res := r.ValidateSlide(1, decodeSlide(t, raw), nil)
		assert.Contains(t, res.Issues, MsgMissingData, raw)
		assert.False(t, res.Valid, raw)
	}
}

func TestUnknownTemplateOnlyWarns(t *testing.T) {
	res := newTestRegistry(t).ValidateSlide(4, decodeSlide(t, `{"template": "swot_analysis", "data": {"strengths": []}}`), nil)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"Unknown template type: swot_analysis"}, res.Warnings)
	assert.Equal(t, 4, res.SlideNumber)
}

func TestCatalogOnlyTemplateUsesBaselineRules(t *testing.T) {
	r := newTestRegistry(t)
	assert.False(t, r.HasRules("investor_process_overview"))

	res := r.ValidateSlide(1, decodeSlide(t, `{"template": "investor_process_overview", "data": {"timeline": ["Q1"]}}`), nil)
	assert.Equal(t, []string{"Missing Slide title (title)"}, res.MissingFields)
	assert.Empty(t, res.Warnings)
}

func TestDataShapeMismatch(t *testing.T) {
	r := newTestRegistry(t)

	res := r.ValidateSlide(1, decodeSlide(t, `{"template": "appendix", "data": ["Appendix"]}`), nil)
	assert.Equal(t, []string{"data must be an object, got list"}, res.Issues)

	res = r.ValidateSlide(1, decodeSlide(t, `{"template": "sea_conglomerates", "data": {"name": "x"}}`), nil)
	assert.Equal(t, []string{"data must be a list, got object"}, res.Issues)
}

func TestNeverPanicsOnOddShapes(t *testing.T) {
	r := newTestRegistry(t)
	odd := []string{`null`, `7`, `"text"`, `true`, `[]`, `[[]]`, `[null]`, `{"a": {"b": []}}`, `[{"x": [1, {"y": null}]}]`}
	for _, id := range r.Catalog().IDs() {
		for _, v := range odd {
			raw := `{"template": "` + id + `", "content_ir_key": "x", "data": ` + v + `}`
			assert.NotPanics(t, func() {
				r.ValidateSlide(1, decodeSlide(t, raw), ir.ContentIR{"x": []any{nil, "y"}, "management_team": "z"})
			}, raw)
			for _, field := range []string{"title", "highlights", "services", "competitors", "assessment", "coverage_table",
				"table_rows", "valuation_data", "chart", "key_metrics", "growth_strategy", "slide_data", "cost_management"} {
				raw := `{"template": "` + id + `", "data": {"` + field + `": ` + v + `}}`
				assert.NotPanics(t, func() { r.ValidateSlide(1, decodeSlide(t, raw), nil) }, raw)
			}
		}
	}
}

func FuzzValidateSlide(f *testing.F) {
	f.Add("business_overview", `{"title": "x", "highlights": [1, [2], {"a": null}]}`)
	f.Add("sea_conglomerates", `[{"name": "[X]"}, 3]`)
	f.Add("competitive_positioning", `{"assessment": [["a"], "b"]}`)
	f.Add("buyer_profiles", `{"table_rows": [[], {}, 1]}`)

	r, err := NewRegistry(catalog.Default())
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, template, data string) {
		v, err := ir.Decode([]byte(data))
		if err != nil {
			return
		}
		res := r.ValidateSlide(1, ir.Slide{Template: template, Data: v}, nil)
		if res.Valid != (len(res.Issues)+len(res.MissingFields)+len(res.EmptyFields) == 0) {
			t.Fatalf("valid flag disagrees with findings: %+v", res)
		}
	})
}
