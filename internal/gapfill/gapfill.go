// Package gapfill supplies canned example documents when an LLM response
// yields nothing usable, so that a downstream renderer always has a
// complete deck to work with.
package gapfill

import (
	_ "embed"
	"fmt"

	"github.com/roach88/deckcheck/internal/ir"
)

//go:embed examples/content_ir.json
var defaultContentIR []byte

//go:embed examples/render_plan.json
var defaultRenderPlan []byte

// Provider holds one example Content IR and Render Plan pair. Accessors
// return deep copies; a Provider is safe for concurrent use.
type Provider struct {
	contentIR ir.ContentIR
	plan      ir.RenderPlan
}

// Filled records which documents Fill replaced.
type Filled struct {
	ContentIR  bool `json:"content_ir"`
	RenderPlan bool `json:"render_plan"`
}

// Any reports whether anything was replaced.
func (f Filled) Any() bool {
	return f.ContentIR || f.RenderPlan
}

// New builds a provider from JSON example documents. The Content IR must
// name its company and the plan must have at least one slide.
func New(contentIR, plan []byte) (*Provider, error) {
	v, err := ir.Decode(contentIR)
	if err != nil {
		return nil, fmt.Errorf("decode example content ir: %w", err)
	}
	doc, ok := ir.NewContentIR(v)
	if !ok || !doc.Usable() {
		return nil, fmt.Errorf("example content ir must be an object naming entities.company.name")
	}

	v, err = ir.Decode(plan)
	if err != nil {
		return nil, fmt.Errorf("decode example render plan: %w", err)
	}
	rp, ok := ir.NewRenderPlan(v)
	if !ok || len(rp.Slides) == 0 {
		return nil, fmt.Errorf("example render plan must have a non-empty slides array")
	}

	return &Provider{contentIR: doc, plan: rp}, nil
}

// Default returns the provider over the embedded examples.
func Default() *Provider {
	p, err := New(defaultContentIR, defaultRenderPlan)
	if err != nil {
		panic(fmt.Sprintf("gapfill: embedded examples: %v", err))
	}
	return p
}

// ContentIR returns a copy of the example Content IR.
func (p *Provider) ContentIR() ir.ContentIR {
	return ir.ContentIR(ir.CloneMap(p.contentIR))
}

// RenderPlan returns a copy of the example Render Plan.
func (p *Provider) RenderPlan() ir.RenderPlan {
	return p.plan.Clone()
}

// CompanyName is the company the examples describe.
func (p *Provider) CompanyName() string {
	return p.contentIR.CompanyName()
}

// Fill replaces whatever the response did not usably provide. A Content IR
// is replaced when absent or when it does not name the company; a plan is
// replaced when absent or without slides. A plan the response did provide
// is kept even when the Content IR is replaced; its references are then
// checked against the example sections.
func (p *Provider) Fill(doc ir.ContentIR, plan *ir.RenderPlan) (ir.ContentIR, ir.RenderPlan, Filled) {
	var filled Filled

	if !doc.Usable() {
		doc = p.ContentIR()
		filled.ContentIR = true
	}

	if plan == nil || len(plan.Slides) == 0 {
		filled.RenderPlan = true
		return doc, p.RenderPlan(), filled
	}
	return doc, *plan, filled
}
