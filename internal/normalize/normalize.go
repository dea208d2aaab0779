// Package normalize rewrites an LLM-authored RenderPlan into the canonical
// shapes the validator and renderer expect.
//
// Normalization is structural, never semantic. It runs three steps per
// slide, in order:
//
//  1. ClassifyFinance: buyer_profiles tables that really list financial
//     figures become sea_conglomerates slides.
//  2. NormalizeBuyerProfiles: headers defaulted, every row turned into a
//     canonical buyer object.
//  3. NormalizeValuation: valuation rows back-filled and hide-column flags
//     computed.
//
// Every step is total and idempotent, and Normalize never mutates its input.
// Plans may pass through normalization once per retry cycle.
package normalize

import (
	"log/slog"

	"github.com/roach88/deckcheck/internal/ir"
)

// Template ids the normalizer rewrites.
const (
	TemplateBuyerProfiles    = "buyer_profiles"
	TemplateValuation        = "valuation_overview"
	TemplateSeaConglomerates = "sea_conglomerates"
)

type options struct {
	reclassifyFinance bool
	logger            *slog.Logger
}

// Option configures Normalize.
type Option func(*options)

// WithFinanceReclassification switches the finance-aware conversion on or
// off. It is on by default.
func WithFinanceReclassification(enabled bool) Option {
	return func(o *options) {
		o.reclassifyFinance = enabled
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Normalize returns a normalized deep copy of plan. Slide order and count
// are preserved.
func Normalize(plan ir.RenderPlan, opts ...Option) ir.RenderPlan {
	o := options{reclassifyFinance: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	out := plan.Clone()
	for i, slide := range out.Slides {
		out.Slides[i] = normalizeSlide(slide, o, i+1)
	}
	return out
}

func normalizeSlide(s ir.Slide, o options, number int) ir.Slide {
	if o.reclassifyFinance {
		if converted, ok := ClassifyFinance(s); ok {
			o.logger.Debug("reclassified buyer_profiles as sea_conglomerates",
				"slide", number,
				"records", len(converted.Data.([]any)))
			s = converted
		}
	}
	s = NormalizeBuyerProfiles(s)
	s = NormalizeValuation(s)
	return s
}
