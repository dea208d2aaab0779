package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderPlan(t *testing.T) {
	v, err := Decode([]byte(`{
		"deck_title": "Project Falcon",
		"slides": [
			{"template": "business_overview", "data": {"title": "Biz"}, "notes": "keep"},
			{"template": "buyer_profiles", "content_ir_key": "strategic_buyers", "data": {"title": "Buyers"}},
			"not a slide"
		]
	}`))
	require.NoError(t, err)

	plan, ok := NewRenderPlan(v)
	require.True(t, ok)
	require.Len(t, plan.Slides, 3)

	assert.Equal(t, "business_overview", plan.Slides[0].Template)
	assert.Equal(t, "keep", plan.Slides[0].Extra["notes"])
	assert.False(t, plan.Slides[0].HasContentIRKey())

	assert.Equal(t, "strategic_buyers", plan.Slides[1].ContentIRKey)
	assert.True(t, plan.Slides[1].HasContentIRKey())

	assert.Equal(t, "", plan.Slides[2].Template, "non-object entries keep their position")
	assert.Nil(t, plan.Slides[2].Data)

	assert.Equal(t, "Project Falcon", plan.Extra["deck_title"])
	assert.Equal(t, []string{"business_overview", "buyer_profiles", ""}, plan.Templates())
}

func TestNewRenderPlanRequiresSlidesArray(t *testing.T) {
	for _, input := range []any{
		nil,
		"slides",
		map[string]any{},
		map[string]any{"slides": map[string]any{}},
	} {
		_, ok := NewRenderPlan(input)
		assert.False(t, ok, "%v", input)
	}
}

func TestRenderPlanJSONRoundTrip(t *testing.T) {
	input := `{"slides":[{"content_ir_key":"strategic_buyers","data":{"table_headers":["A","B"]},"template":"buyer_profiles"}],"version":2}`

	var plan RenderPlan
	require.NoError(t, json.Unmarshal([]byte(input), &plan))

	out, err := MarshalCanonical(plan)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestRenderPlanUnmarshalRejectsNonPlan(t *testing.T) {
	var plan RenderPlan
	err := json.Unmarshal([]byte(`{"pages": []}`), &plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slides array")
}

func TestRenderPlanCloneIsIndependent(t *testing.T) {
	plan := RenderPlan{Slides: []Slide{{
		Template: "business_overview",
		Data:     map[string]any{"highlights": []any{"a"}},
	}}}

	cp := plan.Clone()
	data, _ := cp.Slides[0].DataMap()
	data["highlights"] = []any{}

	orig, _ := plan.Slides[0].DataMap()
	assert.Equal(t, []any{"a"}, orig["highlights"])
}

func TestContentIRUsable(t *testing.T) {
	var doc ContentIR
	require.NoError(t, json.Unmarshal([]byte(`{"entities":{"company":{"name":"Acme"}}}`), &doc))
	assert.True(t, doc.Usable())
	assert.Equal(t, "Acme", doc.CompanyName())

	assert.False(t, ContentIR{"entities": map[string]any{"company": map[string]any{"name": "  "}}}.Usable())
	assert.False(t, ContentIR{"facts": []any{}}.Usable())
	assert.False(t, ContentIR(nil).Usable())
}

func TestLooksLikeContentIR(t *testing.T) {
	assert.True(t, LooksLikeContentIR(map[string]any{"entities": nil}))
	assert.True(t, LooksLikeContentIR(map[string]any{"strategic_buyers": []any{}}))
	assert.True(t, LooksLikeContentIR(map[string]any{"historical_financials": map[string]any{}}))
	assert.False(t, LooksLikeContentIR(map[string]any{"slides": []any{}}))
}

func TestSlideFromMapStringifiesKeys(t *testing.T) {
	s := SlideFromMap(map[string]any{"template": json.Number("7"), "content_ir_key": "x"})
	assert.Equal(t, "7", s.Template)
	assert.Equal(t, "x", s.ContentIRKey)
}
