// Package extract separates the Content IR and Render Plan documents out of
// a single LLM response.
//
// Two strategies run in order. The fenced pass parses every ```json block
// (or, when there are none, every ``` block that looks like JSON) and
// classifies each by its keys. The marker pass only runs when a document is
// still missing: it looks for header lines such as "CONTENT IR JSON:" and
// collects the following lines until their braces balance.
//
// Extraction never fails. A response with no usable JSON yields a Result
// with both documents nil; candidates that could not be parsed are listed
// in Result.Skipped for diagnostics.
package extract

import (
	"log/slog"

	"github.com/roach88/deckcheck/internal/ir"
)

// Source names the strategy that resolved a document.
type Source string

const (
	SourceNone   Source = ""
	SourceFenced Source = "fenced"
	SourceMarker Source = "marker"
)

// Skip records a candidate block that could not be used.
type Skip struct {
	Source Source `json:"source"`
	Block  int    `json:"block"` // 1-based candidate number within the strategy
	Reason string `json:"reason"`
}

// Result is the outcome of Extract. Either document may be nil.
type Result struct {
	ContentIR       ir.ContentIR   `json:"content_ir"`
	Plan            *ir.RenderPlan `json:"render_plan"`
	ContentIRSource Source         `json:"content_ir_source,omitempty"`
	PlanSource      Source         `json:"render_plan_source,omitempty"`
	Skipped         []Skip         `json:"skipped,omitempty"`
}

// Complete reports whether both documents were found.
func (r *Result) Complete() bool {
	return r.ContentIR != nil && r.Plan != nil
}

// Empty reports whether neither document was found.
func (r *Result) Empty() bool {
	return r.ContentIR == nil && r.Plan == nil
}

// Option configures Extract.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Extract finds the Content IR and Render Plan in responseText.
func Extract(responseText string, opts ...Option) *Result {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	res := &Result{}

	scanFenced(responseText, res)
	if !res.Complete() {
		scanMarkers(responseText, res)
	}

	o.logger.Debug("extraction finished",
		"content_ir", res.ContentIR != nil,
		"content_ir_source", string(res.ContentIRSource),
		"render_plan", res.Plan != nil,
		"render_plan_source", string(res.PlanSource),
		"skipped", len(res.Skipped),
	)
	return res
}

// offer assigns obj to whichever unresolved slots it classifies as.
// First match of each kind wins.
func (r *Result) offer(obj map[string]any, src Source) bool {
	used := false
	if r.ContentIR == nil && ir.LooksLikeContentIR(obj) {
		doc, _ := ir.NewContentIR(obj)
		r.ContentIR = doc
		r.ContentIRSource = src
		used = true
	}
	if r.Plan == nil {
		if plan, ok := ir.NewRenderPlan(obj); ok {
			r.Plan = &plan
			r.PlanSource = src
			used = true
		}
	}
	return used
}
