// Package harness provides scenario testing for the deck pipeline.
//
// A scenario is a recorded LLM response plus the outcome the pipeline is
// expected to reach for it. Scenarios make regressions in repair,
// extraction, normalization or validation visible without a live model.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	response_file: responses/acme.txt   # or an inline `response: |` block
//	gap_fill: false
//	expect:
//	  content_ir: true
//	  render_plan: true
//	  overall_valid: false
//	  ready: false
//	  templates: [business_overview]
//	assertions:
//	  - type: slide_valid
//	    slide: 1
//	    valid: false
//	  - type: finding_contains
//	    slide: 1
//	    field: empty_fields
//	    text: highlights
//	  - type: feedback_contains
//	    text: "Slide 1 (business_overview):"
//
// # Assertion Types
//
//   - slide_valid: Verifies the validity of one slide (1-based)
//   - finding_contains: Verifies a slide finding list holds a message containing text
//   - feedback_contains: Verifies the feedback text contains text
//   - problem: Verifies a document-level problem was reported
//   - slide_template: Verifies the template of a normalized slide
//
// # Golden Snapshots
//
// Snapshot renders the outcome as RFC 8785 canonical JSON, so identical
// outcomes produce identical bytes. RunWithGolden compares the snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/acme.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(ctx, scenario, p)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
