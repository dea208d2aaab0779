package validate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/ir"
)

// Template ids with rules in code.
const (
	TemplateBuyerProfiles  = "buyer_profiles"
	TemplateManagementTeam = "management_team"
	TemplateGrowthStrategy = "growth_strategy_projections"
)

// ErrNilCatalog is returned by NewRegistry without a catalog.
var ErrNilCatalog = errors.New("validate: catalog is required")

// Registry validates slides against the catalog plus the code rules
// registered per template. It holds no mutable state after construction
// and is safe for concurrent use.
type Registry struct {
	catalog  *catalog.Catalog
	rules    map[string][]Rule
	unwrap   map[string]func(map[string]any) map[string]any
	logger   *slog.Logger
	pending  map[string][]Rule
	disabled map[string]bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithRule adds a code rule for a template. Rules run after the catalog
// slot checks, in registration order.
func WithRule(template string, rule Rule) Option {
	return func(r *Registry) {
		r.pending[template] = append(r.pending[template], rule)
	}
}

// WithoutBuiltinRules drops the built-in code rules for the given
// templates, leaving only catalog checks.
func WithoutBuiltinRules(templates ...string) Option {
	return func(r *Registry) {
		for _, t := range templates {
			r.disabled[t] = true
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func builtinRules() map[string][]Rule {
	return map[string][]Rule{
		TemplateBuyerProfiles:  {buyerProfilesRule},
		TemplateManagementTeam: {managementTeamRule},
	}
}

// NewRegistry builds a registry over cat. The catalog is authoritative: a
// code rule for a template the catalog does not define is dropped with a
// warning.
func NewRegistry(cat *catalog.Catalog, opts ...Option) (*Registry, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	r := &Registry{
		catalog:  cat,
		rules:    make(map[string][]Rule),
		unwrap:   map[string]func(map[string]any) map[string]any{TemplateGrowthStrategy: unwrapSlideData},
		logger:   slog.Default(),
		pending:  make(map[string][]Rule),
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}

	add := func(template string, rules []Rule) {
		if !cat.Contains(template) {
			r.logger.Warn("validator rule has no catalog template, dropping", "template", template)
			return
		}
		r.rules[template] = append(r.rules[template], rules...)
	}
	for template, rules := range builtinRules() {
		if r.disabled[template] {
			continue
		}
		add(template, rules)
	}
	for template, rules := range r.pending {
		add(template, rules)
	}
	r.pending = nil
	return r, nil
}

// Catalog returns the catalog the registry validates against.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// HasRules reports whether the template has code rules besides its slots.
func (r *Registry) HasRules(template string) bool {
	return len(r.rules[template]) > 0
}

// ValidateSlide validates one slide. number is the 1-based slide position.
// It never panics on malformed data: shape problems become issues.
func (r *Registry) ValidateSlide(number int, s ir.Slide, doc ir.ContentIR) Result {
	res := Result{SlideNumber: number, Template: s.Template}

	if !ir.Truthy(s.Data) {
		res.Issue(MsgMissingData)
	}

	tmpl, known := r.catalog.Get(s.Template)
	if !known {
		res.Warn(MsgUnknownTemplate, s.Template)
	} else {
		res.Findings.Merge(r.checkTemplate(tmpl, s, doc))
	}

	res.Valid = !res.Blocking()
	res.normalize()
	return res
}

func (r *Registry) checkTemplate(tmpl catalog.Template, s ir.Slide, doc ir.ContentIR) Findings {
	var f Findings

	if tmpl.DataShape == catalog.ShapeList {
		records, ok := s.Data.([]any)
		if !ok {
			if s.Data != nil {
				f.Issue("data must be a list, got %s", ir.KindOf(s.Data))
			}
			return f
		}
		if tmpl.Items != nil {
			label := tmpl.Items.DisplayLabel("Record")
			for i, rec := range records {
				checkValue(&f, rec, *tmpl.Items, fmt.Sprintf("data[%d]", i), fmt.Sprintf("%s #%d", label, i+1))
			}
		}
		r.runRules(tmpl.ID, RuleInput{Slide: s, Data: map[string]any{}, ContentIR: doc}, &f)
		return f
	}

	data, ok := s.Data.(map[string]any)
	if !ok {
		if s.Data != nil {
			f.Issue("data must be an object, got %s", ir.KindOf(s.Data))
			return f
		}
		data = map[string]any{}
	}
	if unwrap, ok := r.unwrap[tmpl.ID]; ok {
		data = unwrap(data)
	}

	checkSlots(&f, data, tmpl.RequiredSlots, true)
	checkSlots(&f, data, tmpl.OptionalSlots, false)
	r.runRules(tmpl.ID, RuleInput{Slide: s, Data: data, ContentIR: doc}, &f)
	return f
}

func (r *Registry) runRules(template string, in RuleInput, f *Findings) {
	for _, rule := range r.rules[template] {
		rule(in, f)
	}
}

// Validate checks every slide of plan in order and aggregates the counts.
// A slide is valid when it has no issues, missing fields or empty fields;
// the plan is valid when every slide is.
func (r *Registry) Validate(doc ir.ContentIR, plan ir.RenderPlan) *Report {
	report := &Report{
		Slides:      make([]Result, 0, len(plan.Slides)),
		TotalSlides: len(plan.Slides),
	}
	for i, s := range plan.Slides {
		res := r.ValidateSlide(i+1, s, doc)
		if res.Valid {
			report.ValidSlides++
		} else {
			report.InvalidSlides++
		}
		if len(res.Warnings) > 0 {
			report.SlidesWithWarnings++
		}
		report.Slides = append(report.Slides, res)
	}
	report.OverallValid = report.InvalidSlides == 0

	r.logger.Debug("validated render plan",
		"slides", report.TotalSlides,
		"invalid", report.InvalidSlides,
		"warnings", report.SlidesWithWarnings)
	return report
}
