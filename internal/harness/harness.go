// Package harness runs recorded LLM responses through the deck pipeline
// and checks the outcome against scenario expectations.
//
// Every scenario builds its own pipeline, so scenarios never share state
// and can run in any order. The pipeline itself is deterministic: the same
// response always yields the same report and feedback text, which is what
// makes golden snapshots stable.
package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/gapfill"
	"github.com/roach88/deckcheck/internal/logging"
	"github.com/roach88/deckcheck/internal/pipeline"
)

// Harness is the scenario execution engine.
type Harness struct {
	catalog  *catalog.Catalog
	logger   *slog.Logger
	pipeOpts []pipeline.Option
}

// Option configures a Harness.
type Option func(*Harness)

// WithCatalog runs scenarios against cat instead of the built-in catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(h *Harness) {
		h.catalog = cat
	}
}

// WithLogger sets the logger handed to each scenario's pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithPipelineOptions appends options to every scenario's pipeline.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(h *Harness) {
		h.pipeOpts = append(h.pipeOpts, opts...)
	}
}

// New creates a harness. Logs are suppressed unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		catalog: catalog.Default(),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a test scenario with a default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Build a fresh pipeline (with gap-fill when the scenario asks for it)
// 2. Run the scenario's response through it
// 3. Check the expect clause
// 4. Evaluate assertions
//
// The error return is reserved for scenarios that could not be executed;
// failed expectations are reported through Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	opts := []pipeline.Option{pipeline.WithLogger(h.logger)}
	if scenario.GapFill {
		opts = append(opts, pipeline.WithGapFill(gapfill.Default()))
	}
	opts = append(opts, h.pipeOpts...)

	p, err := pipeline.New(h.catalog, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	out, err := p.Run(ctx, scenario.Response)
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %q: %w", scenario.Name, err)
	}
	out.Name = scenario.Name

	result := NewResult(out)
	for _, errMsg := range checkExpect(out, scenario.Expect) {
		result.AddError(errMsg)
	}
	for _, errMsg := range EvaluateAssertions(out, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}
