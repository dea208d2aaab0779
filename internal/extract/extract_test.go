package extract

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentBlock = "```json\n{\"entities\": {\"company\": {\"name\": \"Acme\"}}}\n```"
	planBlock    = "```json\n{\"slides\": [{\"template\": \"business_overview\", \"data\": {\"title\": \"Biz\"}}]}\n```"
)

// ============================================================================
// Null safety
// ============================================================================

func TestExtractEmpty(t *testing.T) {
	res := Extract("")
	assert.Nil(t, res.ContentIR)
	assert.Nil(t, res.Plan)
	assert.True(t, res.Empty())
}

func TestExtractGarbage(t *testing.T) {
	inputs := []string{
		"I'm sorry, I need more information about the company first.",
		"{{{{ ]]]] ``` ```json",
		"```json\nnot json at all\n```",
		"Content IR:\n{ \"entities\": \n",
		"Render Plan:\n}}}\n",
	}

	for _, input := range inputs {
		res := Extract(input)
		assert.True(t, res.Empty(), "input %q", input)
	}
}

// ============================================================================
// Fenced pass
// ============================================================================

func TestExtractFencedEitherOrder(t *testing.T) {
	for _, text := range []string{
		contentBlock + "\n\n" + planBlock,
		"Here is the plan:\n" + planBlock + "\nAnd the content:\n" + contentBlock,
	} {
		res := Extract(text)
		require.True(t, res.Complete())
		assert.Equal(t, "Acme", res.ContentIR.CompanyName())
		require.Len(t, res.Plan.Slides, 1)
		assert.Equal(t, "business_overview", res.Plan.Slides[0].Template)
		assert.Equal(t, SourceFenced, res.ContentIRSource)
		assert.Equal(t, SourceFenced, res.PlanSource)
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	second := "```json\n{\"entities\": {\"company\": {\"name\": \"Other\"}}}\n```"
	res := Extract(contentBlock + "\n" + second + "\n" + planBlock)

	require.True(t, res.Complete())
	assert.Equal(t, "Acme", res.ContentIR.CompanyName())
}

func TestExtractClassifiesBySignatureKeys(t *testing.T) {
	for _, key := range []string{"entities", "management_team", "historical_financials", "strategic_buyers"} {
		text := "```json\n{\"" + key + "\": {}}\n```"
		res := Extract(text)
		assert.NotNil(t, res.ContentIR, key)
		assert.Nil(t, res.Plan, key)
	}
}

func TestExtractSlidesMustBeArray(t *testing.T) {
	res := Extract("```json\n{\"slides\": {\"template\": \"appendix\"}}\n```")
	assert.Nil(t, res.Plan)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SourceFenced, res.Skipped[0].Source)
}

func TestExtractGenericFenceFallback(t *testing.T) {
	text := "```\n{\"entities\": {\"company\": {\"name\": \"Acme\"}}}\n```\n" +
		"```python\nprint('hi')\n```\n" +
		"```js\n{\"slides\": []}\n```"

	res := Extract(text)
	require.True(t, res.Complete())
	assert.Empty(t, res.Plan.Slides)
}

func TestExtractRepairsFencedBlocks(t *testing.T) {
	text := "```json\n{\"entities\": {\"company\": {\"name\": \"Acme\"},},}\n```"
	res := Extract(text)
	require.NotNil(t, res.ContentIR)
	assert.Equal(t, "Acme", res.ContentIR.CompanyName())
}

func TestExtractSkipsBadBlockAndContinues(t *testing.T) {
	bad := "```json\n{\"entities\": {\"company\": \"Acme\" \"x\"}}\n```"
	res := Extract(bad + "\n" + contentBlock)

	require.NotNil(t, res.ContentIR)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Block)
	assert.Contains(t, res.Skipped[0].Reason, "decode")
}

// ============================================================================
// Marker pass
// ============================================================================

func TestExtractMarkers(t *testing.T) {
	text := strings.Join([]string{
		"## CONTENT IR JSON:",
		"{",
		`  "entities": {"company": {"name": "Acme"}},`,
		`  "facts": {"note": "uses {braces} in a string"}`,
		"}",
		"",
		"**Render Plan:**",
		"{",
		`  "slides": [`,
		`    {"template": "appendix", "data": {"title": "Appendix"}}`,
		"  ]",
		"}",
	}, "\n")

	res := Extract(text)
	require.True(t, res.Complete())
	assert.Equal(t, SourceMarker, res.ContentIRSource)
	assert.Equal(t, SourceMarker, res.PlanSource)
	assert.Equal(t, "Acme", res.ContentIR.CompanyName())
	require.Len(t, res.Plan.Slides, 1)
	assert.Equal(t, "appendix", res.Plan.Slides[0].Template)
}

func TestExtractMarkersOnlyFillGaps(t *testing.T) {
	text := contentBlock + "\n" + strings.Join([]string{
		"Content IR:",
		"{",
		`  "entities": {"company": {"name": "Ignored"}}`,
		"}",
		"render plan json:",
		"{",
		`  "slides": []`,
		"}",
	}, "\n")

	res := Extract(text)
	require.True(t, res.Complete())
	assert.Equal(t, "Acme", res.ContentIR.CompanyName())
	assert.Equal(t, SourceFenced, res.ContentIRSource)
	assert.Equal(t, SourceMarker, res.PlanSource)
}

func TestExtractMarkerSingleLineNeedsMoreLines(t *testing.T) {
	// The collected buffer must span more than one line before it is parsed.
	res := Extract("Render Plan: {\"slides\": []}")
	assert.Nil(t, res.Plan)

	res = Extract("Render Plan:\n{\"slides\": []}\n")
	require.NotNil(t, res.Plan)
}

func TestExtractMarkerOneLineDocumentBeforeNextMarker(t *testing.T) {
	text := strings.Join([]string{
		`CONTENT IR JSON: {"entities": {"company": {"name": "Acme"}}}`,
		"RENDER PLAN JSON:",
		"{",
		`  "slides": [{"template": "appendix", "data": {"title": "Appendix"}}]`,
		"}",
		"",
	}, "\n")

	res := Extract(text)
	require.True(t, res.Complete())
	assert.Empty(t, res.Skipped)
	assert.Equal(t, SourceMarker, res.ContentIRSource)
	assert.Equal(t, SourceMarker, res.PlanSource)
	assert.Equal(t, "Acme", res.ContentIR.CompanyName())
	require.Len(t, res.Plan.Slides, 1)
	assert.Equal(t, "appendix", res.Plan.Slides[0].Template)
}

func TestExtractMarkerPlanWithoutSlides(t *testing.T) {
	res := Extract("Render Plan:\n{\n\"pages\": []\n}")
	assert.Nil(t, res.Plan)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SourceMarker, res.Skipped[0].Source)
}

func TestBraceCounterIgnoresStrings(t *testing.T) {
	var b braceCounter
	b.feed(`{"a": "}}} \" {"`)
	assert.Equal(t, 1, b.depth)
	b.feed(`}`)
	assert.Equal(t, 0, b.depth)
	assert.True(t, b.opened)
}

func TestExtractLogsToInjectedLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res := Extract(contentBlock+"\n"+planBlock, WithLogger(logger))
	require.True(t, res.Complete())
	assert.Contains(t, logs.String(), `msg="extraction finished"`)
	assert.Contains(t, logs.String(), "render_plan_source=fenced")

	logs.Reset()
	Extract("nothing here", WithLogger(nil))
	assert.Empty(t, logs.String())
}
