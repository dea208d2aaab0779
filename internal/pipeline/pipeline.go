// Package pipeline runs an LLM response through the whole check:
// extraction, optional gap-fill, normalization, validation and feedback.
//
// Problems with the LLM output never become Go errors. They surface as
// Outcome.Problems and in the validation report; Run only fails when its
// context is done.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/extract"
	"github.com/roach88/deckcheck/internal/feedback"
	"github.com/roach88/deckcheck/internal/gapfill"
	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/normalize"
	"github.com/roach88/deckcheck/internal/validate"
)

// Document-level problems.
const (
	ProblemNoContentIR       = "No Content IR found in response"
	ProblemNoRenderPlan      = "No Render Plan found in response"
	ProblemUnusableContentIR = "Content IR does not name the company (entities.company.name)"
	ProblemEmptyRenderPlan   = "Render Plan has no slides"
)

// DefaultConcurrency bounds Batch when the caller passes no limit.
const DefaultConcurrency = 4

// Outcome is everything one run produced.
type Outcome struct {
	Name string `json:"name,omitempty"`

	// ContentIR and Plan are the documents as extracted, or as replaced by
	// gap-fill. Plan is nil when no plan was found.
	ContentIR ir.ContentIR   `json:"content_ir"`
	Plan      *ir.RenderPlan `json:"render_plan"`

	Normalized ir.RenderPlan    `json:"normalized_plan"`
	Report     *validate.Report `json:"report"`
	Feedback   string           `json:"feedback"`

	// Extraction is nil for ValidateDocuments runs.
	Extraction *extract.Result `json:"extraction,omitempty"`
	GapFilled  gapfill.Filled  `json:"gap_filled"`
	Problems   []string        `json:"problems"`
}

// Ready reports whether the documents can go to the renderer: every slide
// valid, a usable Content IR and at least one slide.
func (o *Outcome) Ready() bool {
	return o != nil &&
		o.Report != nil && o.Report.OverallValid &&
		o.ContentIR.Usable() &&
		len(o.Normalized.Slides) > 0
}

// Pipeline holds the immutable pieces shared by every run. It is safe for
// concurrent use.
type Pipeline struct {
	catalog  *catalog.Catalog
	registry *validate.Registry
	gapFill  *gapfill.Provider
	normOpts []normalize.Option
	ruleOpts []validate.Option
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGapFill substitutes p's example documents for whatever a response
// does not usably provide. nil disables gap-fill.
func WithGapFill(p *gapfill.Provider) Option {
	return func(pl *Pipeline) {
		pl.gapFill = p
	}
}

// WithNormalizeOptions passes options to every normalization.
func WithNormalizeOptions(opts ...normalize.Option) Option {
	return func(pl *Pipeline) {
		pl.normOpts = append(pl.normOpts, opts...)
	}
}

// WithValidateOptions passes options to the validator registry.
func WithValidateOptions(opts ...validate.Option) Option {
	return func(pl *Pipeline) {
		pl.ruleOpts = append(pl.ruleOpts, opts...)
	}
}

// WithLogger sets the logger used by the pipeline and its stages.
func WithLogger(l *slog.Logger) Option {
	return func(pl *Pipeline) {
		pl.logger = l
	}
}

// New builds a pipeline over cat.
func New(cat *catalog.Catalog, opts ...Option) (*Pipeline, error) {
	pl := &Pipeline{catalog: cat, logger: slog.Default()}
	for _, opt := range opts {
		opt(pl)
	}

	ruleOpts := append([]validate.Option{validate.WithLogger(pl.logger)}, pl.ruleOpts...)
	reg, err := validate.NewRegistry(cat, ruleOpts...)
	if err != nil {
		return nil, err
	}
	pl.registry = reg
	pl.normOpts = append([]normalize.Option{normalize.WithLogger(pl.logger)}, pl.normOpts...)
	return pl, nil
}

// Catalog returns the catalog the pipeline validates against.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Registry returns the validator registry.
func (p *Pipeline) Registry() *validate.Registry {
	return p.registry
}

// Run checks one raw LLM response.
func (p *Pipeline) Run(ctx context.Context, text string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := extract.Extract(text, extract.WithLogger(p.logger))
	out, err := p.ValidateDocuments(ctx, ext.ContentIR, ext.Plan)
	if err != nil {
		return nil, err
	}
	out.Extraction = ext
	return out, nil
}

// ValidateDocuments checks documents that were already extracted. Either
// may be nil.
func (p *Pipeline) ValidateDocuments(ctx context.Context, doc ir.ContentIR, plan *ir.RenderPlan) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{ContentIR: doc, Plan: plan}

	if p.gapFill != nil && (!doc.Usable() || plan == nil || len(plan.Slides) == 0) {
		filledDoc, filledPlan, filled := p.gapFill.Fill(doc, plan)
		out.ContentIR = filledDoc
		out.Plan = &filledPlan
		out.GapFilled = filled
		p.logger.Info("gap-filled documents",
			"content_ir", filled.ContentIR,
			"render_plan", filled.RenderPlan)
	}

	out.Problems = documentProblems(out.ContentIR, out.Plan)

	if out.Plan != nil {
		out.Normalized = normalize.Normalize(*out.Plan, p.normOpts...)
	}
	out.Report = p.registry.Validate(out.ContentIR, out.Normalized)
	out.Feedback = feedback.GenerateWithProblems(out.Report, out.Problems)

	p.logger.Info("validated response",
		"summary", validate.Summary(out.Report),
		"problems", len(out.Problems),
		"ready", out.Ready())
	return out, nil
}

func documentProblems(doc ir.ContentIR, plan *ir.RenderPlan) []string {
	problems := []string{}
	switch {
	case doc == nil:
		problems = append(problems, ProblemNoContentIR)
	case !doc.Usable():
		problems = append(problems, ProblemUnusableContentIR)
	}
	switch {
	case plan == nil:
		problems = append(problems, ProblemNoRenderPlan)
	case len(plan.Slides) == 0:
		problems = append(problems, ProblemEmptyRenderPlan)
	}
	return problems
}

// Input is one named response for Batch.
type Input struct {
	Name string
	Text string
}

// Batch runs independent responses concurrently, at most concurrency at a
// time (DefaultConcurrency when concurrency < 1). Outcomes are in input
// order. It fails only when ctx is done.
func (p *Pipeline) Batch(ctx context.Context, inputs []Input, concurrency int) ([]*Outcome, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]*Outcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			out, err := p.Run(gctx, in.Text)
			if err != nil {
				return err
			}
			out.Name = in.Name
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
