// Package feedback turns a validation report into the correction text
// handed back to the LLM for a regeneration attempt.
//
// The text is plain templating over the report: a failure header, one
// section per invalid slide with its issues, missing fields and empty
// fields, targeted fix hints for the failures LLMs make most often, and a
// closing instruction. A valid report with no document problems yields "".
package feedback

import (
	"strconv"
	"strings"

	"github.com/roach88/deckcheck/internal/validate"
)

// Fixed text blocks.
const (
	Header       = "❌ VALIDATION FAILED - Your JSONs have empty boxes and missing content that must be fixed before generating the deck."
	PolicyHeader = "\n🎯 ZERO EMPTY BOXES POLICY VIOLATIONS:"
	Closing      = "\n✅ TO FIX: Please regenerate the JSONs with complete content for all the issues listed above. Follow the professional examples exactly. Every field must have real data, not placeholders or empty values."
)

// Generate renders feedback for r. It returns "" when r is nil or valid.
func Generate(r *validate.Report) string {
	return GenerateWithProblems(r, nil)
}

// GenerateWithProblems renders feedback for r plus document-level problems
// (no Content IR, unusable Content IR, no render plan). Problems alone are
// enough to produce feedback.
func GenerateWithProblems(r *validate.Report, problems []string) string {
	invalid := r.Invalid()
	if len(invalid) == 0 && len(problems) == 0 {
		return ""
	}

	var w writer
	w.line(Header)
	w.line(PolicyHeader)

	if len(problems) > 0 {
		w.line("\n🗃️ STRUCTURAL ISSUES (compared to professional examples):")
		for _, p := range problems {
			w.line("    - " + p)
		}
		w.lines(structureRequirements)
	}

	if needsFacts(invalid) {
		w.lines(factsBlock)
	}

	for _, res := range invalid {
		w.slide(res)
	}

	if hasTemplate(invalid, validate.TemplateBuyerProfiles) {
		w.lines(buyerProfilesBlock)
	}

	w.line(Closing)
	return w.String()
}

type writer struct {
	strings.Builder
	started bool
}

func (w *writer) line(s string) {
	if w.started {
		w.WriteByte('\n')
	}
	w.started = true
	w.WriteString(s)
}

func (w *writer) lines(block []string) {
	for _, s := range block {
		w.line(s)
	}
}

func (w *writer) slide(res validate.Result) {
	w.line("\nSlide " + strconv.Itoa(res.SlideNumber) + " (" + res.Template + "):")
	w.section("  🚨 Critical Issues:", res.Template, res.Issues)
	w.section("  📝 Missing Required Fields:", res.Template, res.MissingFields)
	w.section("  📦 Empty/Placeholder Content (will create empty boxes):", res.Template, res.EmptyFields)
}

func (w *writer) section(title, template string, items []string) {
	if len(items) == 0 {
		return
	}
	w.line(title)
	for _, item := range items {
		w.line("    - " + item)
		if h, ok := hintFor(template, item); ok {
			w.lines(h.lines)
		}
	}
}

func hasTemplate(results []validate.Result, template string) bool {
	for _, res := range results {
		if res.Template == template {
			return true
		}
	}
	return false
}

func needsFacts(results []validate.Result) bool {
	return hasTemplate(results, "historical_financial_performance") ||
		hasTemplate(results, "financial_summary")
}
