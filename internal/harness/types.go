package harness

import "github.com/roach88/deckcheck/internal/pipeline"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Outcome is the pipeline outcome the scenario was checked against.
	Outcome *pipeline.Outcome `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(out *pipeline.Outcome) *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Outcome: out,
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
