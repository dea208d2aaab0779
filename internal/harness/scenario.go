package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a pipeline test scenario: one recorded LLM response
// and the outcome the pipeline should reach for it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Response is the raw LLM response text.
	Response string `yaml:"response,omitempty"`

	// ResponseFile points at a file holding the response. Relative paths
	// resolve against the scenario file's directory. Exactly one of
	// Response and ResponseFile must be set.
	ResponseFile string `yaml:"response_file,omitempty"`

	// GapFill runs the scenario with the built-in example documents
	// substituted for missing ones.
	GapFill bool `yaml:"gap_fill,omitempty"`

	// Expect holds the top-level outcome checks.
	Expect Expect `yaml:"expect"`

	// Assertions validate individual slides, findings and feedback.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected pipeline outcome. Nil fields are not
// checked.
type Expect struct {
	// ContentIR and RenderPlan state whether extraction found each document.
	ContentIR  *bool `yaml:"content_ir,omitempty"`
	RenderPlan *bool `yaml:"render_plan,omitempty"`

	OverallValid *bool `yaml:"overall_valid,omitempty"`
	Ready        *bool `yaml:"ready,omitempty"`

	// Templates is the exact template sequence of the normalized plan.
	Templates []string `yaml:"templates,omitempty"`
}

func (e Expect) empty() bool {
	return e.ContentIR == nil && e.RenderPlan == nil && e.OverallValid == nil &&
		e.Ready == nil && e.Templates == nil
}

// Assertion validates one aspect of the outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "slide_valid": Check a slide's validity
	// - "finding_contains": Check a slide finding list
	// - "feedback_contains": Check the feedback text
	// - "problem": Check a document-level problem was reported
	// - "slide_template": Check a normalized slide's template
	Type string `yaml:"type"`

	// Slide is the 1-based slide number (slide_valid, finding_contains,
	// slide_template).
	Slide int `yaml:"slide,omitempty"`

	// Valid is the expected validity (slide_valid).
	Valid *bool `yaml:"valid,omitempty"`

	// Field names the finding list (finding_contains): issues,
	// missing_fields, empty_fields, warnings, or any.
	Field string `yaml:"field,omitempty"`

	// Text is the expected substring (finding_contains, feedback_contains)
	// or exact problem message (problem).
	Text string `yaml:"text,omitempty"`

	// Template is the expected template id (slide_template).
	Template string `yaml:"template,omitempty"`
}

// Assertion type constants.
const (
	AssertSlideValid       = "slide_valid"
	AssertFindingContains  = "finding_contains"
	AssertFeedbackContains = "feedback_contains"
	AssertProblem          = "problem"
	AssertSlideTemplate    = "slide_template"
)

// Finding list names accepted by finding_contains.
const (
	FieldIssues        = "issues"
	FieldMissingFields = "missing_fields"
	FieldEmptyFields   = "empty_fields"
	FieldWarnings      = "warnings"
	FieldAny           = "any"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A response_file is read relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.ResponseFile != "" {
		responsePath := scenario.ResponseFile
		if !filepath.IsAbs(responsePath) {
			responsePath = filepath.Join(filepath.Dir(path), responsePath)
		}
		text, err := os.ReadFile(responsePath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: response file: %w", err)
		}
		scenario.Response = string(text)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted by path.
// A non-empty filter is a glob matched against file names without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Response == "" && s.ResponseFile == "":
		return fmt.Errorf("one of response or response_file is required")
	case s.Response != "" && s.ResponseFile != "":
		return fmt.Errorf("response and response_file are mutually exclusive")
	}

	if s.Expect.empty() && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needSlide := func() error {
		if a.Slide < 1 {
			return fmt.Errorf("assertions[%d]: slide must be >= 1 for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertSlideValid:
		if err := needSlide(); err != nil {
			return err
		}
		if a.Valid == nil {
			return fmt.Errorf("assertions[%d]: valid is required for slide_valid", index)
		}
	case AssertFindingContains:
		if err := needSlide(); err != nil {
			return err
		}
		switch a.Field {
		case FieldIssues, FieldMissingFields, FieldEmptyFields, FieldWarnings, FieldAny:
		default:
			return fmt.Errorf("assertions[%d]: unknown finding field %q", index, a.Field)
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for finding_contains", index)
		}
	case AssertFeedbackContains, AssertProblem:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertSlideTemplate:
		if err := needSlide(); err != nil {
			return err
		}
		if a.Template == "" {
			return fmt.Errorf("assertions[%d]: template is required for slide_template", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
