package validate

import (
	"fmt"
)

// Findings are the four diagnostic lists every check produces. Issues,
// missing fields and empty fields invalidate a slide; warnings never do.
type Findings struct {
	Issues        []string `json:"issues"`
	MissingFields []string `json:"missing_fields"`
	EmptyFields   []string `json:"empty_fields"`
	Warnings      []string `json:"warnings"`
}

// Issue records a hard problem: wrong shape, unresolved reference.
func (f *Findings) Issue(format string, args ...any) {
	f.Issues = append(f.Issues, fmt.Sprintf(format, args...))
}

// Missing records an absent required field.
func (f *Findings) Missing(format string, args ...any) {
	f.MissingFields = append(f.MissingFields, fmt.Sprintf(format, args...))
}

// Empty records a present but empty or placeholder field.
func (f *Findings) Empty(format string, args ...any) {
	f.EmptyFields = append(f.EmptyFields, fmt.Sprintf(format, args...))
}

// Warn records a soft problem.
func (f *Findings) Warn(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

// Blocking reports whether any invalidating finding was recorded.
func (f Findings) Blocking() bool {
	return len(f.Issues) > 0 || len(f.MissingFields) > 0 || len(f.EmptyFields) > 0
}

// Merge appends other's findings.
func (f *Findings) Merge(other Findings) {
	f.Issues = append(f.Issues, other.Issues...)
	f.MissingFields = append(f.MissingFields, other.MissingFields...)
	f.EmptyFields = append(f.EmptyFields, other.EmptyFields...)
	f.Warnings = append(f.Warnings, other.Warnings...)
}

// normalize replaces nil lists with empty ones so JSON output always
// carries all four arrays.
func (f *Findings) normalize() {
	if f.Issues == nil {
		f.Issues = []string{}
	}
	if f.MissingFields == nil {
		f.MissingFields = []string{}
	}
	if f.EmptyFields == nil {
		f.EmptyFields = []string{}
	}
	if f.Warnings == nil {
		f.Warnings = []string{}
	}
}

// Result is the validation outcome for one slide.
type Result struct {
	SlideNumber int    `json:"slide_number"`
	Template    string `json:"template"`
	Valid       bool   `json:"valid"`
	Findings
}

// Report aggregates the results of every slide in a plan.
type Report struct {
	Slides             []Result `json:"slides"`
	TotalSlides        int      `json:"total_slides"`
	ValidSlides        int      `json:"valid_slides"`
	InvalidSlides      int      `json:"invalid_slides"`
	SlidesWithWarnings int      `json:"slides_with_warnings"`
	OverallValid       bool     `json:"overall_valid"`
}

// Invalid returns the results of invalid slides in order.
func (r *Report) Invalid() []Result {
	if r == nil {
		return nil
	}
	var out []Result
	for _, res := range r.Slides {
		if !res.Valid {
			out = append(out, res)
		}
	}
	return out
}

// Summary renders the report counts on one line.
func Summary(r *Report) string {
	if r == nil {
		return "no report"
	}
	status := "valid"
	if !r.OverallValid {
		status = "invalid"
	}
	return fmt.Sprintf("%s: %d/%d slides valid, %d invalid, %d with warnings",
		status, r.ValidSlides, r.TotalSlides, r.InvalidSlides, r.SlidesWithWarnings)
}
