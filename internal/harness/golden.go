package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/pipeline"
)

// Snapshot renders the stable part of a scenario outcome as canonical JSON:
// extraction sources, document problems, per-slide validity and the
// normalized template sequence. Finding messages and feedback text are
// left to assertions so that rewording a message does not churn every
// golden file.
func Snapshot(name string, out *pipeline.Outcome) ([]byte, error) {
	if out == nil {
		return nil, fmt.Errorf("snapshot %q: no outcome", name)
	}

	snapshot := map[string]any{
		"scenario_name": name,
		"problems":      append([]string{}, out.Problems...),
		"ready":         out.Ready(),
		"templates":     append([]string{}, out.Normalized.Templates()...),
		"has_feedback":  out.Feedback != "",
	}

	if out.Extraction != nil {
		snapshot["content_ir_source"] = string(out.Extraction.ContentIRSource)
		snapshot["render_plan_source"] = string(out.Extraction.PlanSource)
	}

	slides := []any{}
	if out.Report != nil {
		snapshot["overall_valid"] = out.Report.OverallValid
		for _, res := range out.Report.Slides {
			slides = append(slides, map[string]any{
				"slide_number": res.SlideNumber,
				"template":     res.Template,
				"valid":        res.Valid,
			})
		}
	}
	snapshot["slides"] = slides

	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass and Errors.
func RunWithGolden(t *testing.T, h *Harness, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := h.Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.Outcome)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
