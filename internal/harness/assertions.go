package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/deckcheck/internal/pipeline"
	"github.com/roach88/deckcheck/internal/validate"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Slides   []validate.Result // Slide results for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Slides) > 0 {
		fmt.Fprintf(&buf, "\nSlides:\n")
		for _, res := range e.Slides {
			status := "valid"
			if !res.Valid {
				status = "invalid"
			}
			fmt.Fprintf(&buf, "  [%d] %s %s\n", res.SlideNumber, res.Template, status)
		}
	}

	return buf.String()
}

func slideResults(out *pipeline.Outcome) []validate.Result {
	if out == nil || out.Report == nil {
		return nil
	}
	return out.Report.Slides
}

// slideResult returns the 1-based slide result, or an error naming how many
// slides the report has.
func slideResult(out *pipeline.Outcome, assertion Assertion) (validate.Result, error) {
	slides := slideResults(out)
	if assertion.Slide < 1 || assertion.Slide > len(slides) {
		return validate.Result{}, &AssertionError{
			Type:     assertion.Type,
			Expected: fmt.Sprintf("slide %d", assertion.Slide),
			Actual:   fmt.Sprintf("report has %d slide(s)", len(slides)),
			Slides:   slides,
		}
	}
	return slides[assertion.Slide-1], nil
}

func assertSlideValid(out *pipeline.Outcome, assertion Assertion) error {
	res, err := slideResult(out, assertion)
	if err != nil {
		return err
	}
	if res.Valid == *assertion.Valid {
		return nil
	}
	return &AssertionError{
		Type:     AssertSlideValid,
		Expected: fmt.Sprintf("slide %d valid=%t", assertion.Slide, *assertion.Valid),
		Actual:   fmt.Sprintf("valid=%t", res.Valid),
		Slides:   slideResults(out),
	}
}

// findingList returns the named finding list. "any" concatenates all four.
func findingList(res validate.Result, field string) []string {
	switch field {
	case FieldIssues:
		return res.Issues
	case FieldMissingFields:
		return res.MissingFields
	case FieldEmptyFields:
		return res.EmptyFields
	case FieldWarnings:
		return res.Warnings
	default:
		return slices.Concat(res.Issues, res.MissingFields, res.EmptyFields, res.Warnings)
	}
}

func assertFindingContains(out *pipeline.Outcome, assertion Assertion) error {
	res, err := slideResult(out, assertion)
	if err != nil {
		return err
	}
	list := findingList(res, assertion.Field)
	for _, msg := range list {
		if strings.Contains(msg, assertion.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertFindingContains,
		Expected: fmt.Sprintf("slide %d %s containing %q", assertion.Slide, assertion.Field, assertion.Text),
		Actual:   fmt.Sprintf("%q", list),
		Slides:   slideResults(out),
	}
}

func assertFeedbackContains(out *pipeline.Outcome, assertion Assertion) error {
	if strings.Contains(out.Feedback, assertion.Text) {
		return nil
	}
	actual := "no feedback"
	if out.Feedback != "" {
		actual = fmt.Sprintf("feedback of %d bytes without it", len(out.Feedback))
	}
	return &AssertionError{
		Type:     AssertFeedbackContains,
		Expected: fmt.Sprintf("feedback containing %q", assertion.Text),
		Actual:   actual,
		Slides:   slideResults(out),
	}
}

func assertProblem(out *pipeline.Outcome, assertion Assertion) error {
	if slices.Contains(out.Problems, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertProblem,
		Expected: fmt.Sprintf("problem %q", assertion.Text),
		Actual:   fmt.Sprintf("%q", out.Problems),
	}
}

func assertSlideTemplate(out *pipeline.Outcome, assertion Assertion) error {
	slides := out.Normalized.Slides
	if assertion.Slide < 1 || assertion.Slide > len(slides) {
		return &AssertionError{
			Type:     AssertSlideTemplate,
			Expected: fmt.Sprintf("slide %d", assertion.Slide),
			Actual:   fmt.Sprintf("normalized plan has %d slide(s)", len(slides)),
		}
	}
	got := slides[assertion.Slide-1].Template
	if got == assertion.Template {
		return nil
	}
	return &AssertionError{
		Type:     AssertSlideTemplate,
		Expected: fmt.Sprintf("slide %d template %q", assertion.Slide, assertion.Template),
		Actual:   fmt.Sprintf("%q", got),
		Slides:   slideResults(out),
	}
}

// checkExpect compares the top-level outcome against the expect clause.
func checkExpect(out *pipeline.Outcome, expect Expect) []string {
	var errors []string
	check := func(name string, want *bool, got bool) {
		if want != nil && *want != got {
			errors = append(errors, fmt.Sprintf("expect.%s: expected %t, got %t", name, *want, got))
		}
	}

	var foundIR, foundPlan bool
	if out.Extraction != nil {
		foundIR = out.Extraction.ContentIR != nil
		foundPlan = out.Extraction.Plan != nil
	}
	check("content_ir", expect.ContentIR, foundIR)
	check("render_plan", expect.RenderPlan, foundPlan)
	check("overall_valid", expect.OverallValid, out.Report != nil && out.Report.OverallValid)
	check("ready", expect.Ready, out.Ready())

	if expect.Templates != nil {
		got := out.Normalized.Templates()
		if !slices.Equal(expect.Templates, got) {
			errors = append(errors, fmt.Sprintf("expect.templates: expected %q, got %q", expect.Templates, got))
		}
	}
	return errors
}

// EvaluateAssertions evaluates all assertions against a pipeline outcome.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(out *pipeline.Outcome, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSlideValid:
			err = assertSlideValid(out, assertion)
		case AssertFindingContains:
			err = assertFindingContains(out, assertion)
		case AssertFeedbackContains:
			err = assertFeedbackContains(out, assertion)
		case AssertProblem:
			err = assertProblem(out, assertion)
		case AssertSlideTemplate:
			err = assertSlideTemplate(out, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
