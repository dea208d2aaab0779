// Package catalog holds the template catalog: which slide templates exist
// and which content slots each one needs.
//
// A Catalog is built once (from a file or the embedded default) and is
// read-only afterwards, so it is safe for concurrent use. The validator
// registry derives its field checks from the slot descriptors stored here.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
)

//go:embed templates.json
var defaultTemplates []byte

// DataShape is the JSON shape a template expects for slide data.
type DataShape string

const (
	ShapeObject DataShape = "object"
	ShapeList   DataShape = "list"
)

// Template is one slide template definition.
type Template struct {
	ID       string `json:"id"`
	Purpose  string `json:"purpose,omitempty"`
	RenderFn string `json:"render_fn,omitempty"`

	RequiredSlots Slots `json:"required_slots"`
	OptionalSlots Slots `json:"optional_slots"`

	// DataShape is ShapeObject unless the template takes a list of records.
	DataShape DataShape `json:"data_shape,omitempty"`

	// Items describes each record of a list-shaped template.
	Items *Slot `json:"items,omitempty"`

	ChartFrames       []any          `json:"chart_frames"`
	Validators        map[string]any `json:"validators"`
	LayoutSpecs       map[string]any `json:"layout_specs"`
	FunctionSignature map[string]any `json:"function_signature"`
}

// ContentIRSections lists the Content IR sections the template may source
// rows from, as declared under validators.content_ir_sections.
func (t Template) ContentIRSections() []string {
	raw, ok := t.Validators["content_ir_sections"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Slot looks a slot up among required then optional slots.
func (t Template) Slot(name string) (Slot, bool) {
	if s, ok := t.RequiredSlots.Get(name); ok {
		return s, true
	}
	return t.OptionalSlots.Get(name)
}

func (t *Template) fillDefaults() {
	if t.DataShape == "" {
		t.DataShape = ShapeObject
	}
	if t.RequiredSlots == nil {
		t.RequiredSlots = Slots{}
	}
	if t.OptionalSlots == nil {
		t.OptionalSlots = Slots{}
	}
	if t.ChartFrames == nil {
		t.ChartFrames = []any{}
	}
	if t.Validators == nil {
		t.Validators = map[string]any{}
	}
	if t.LayoutSpecs == nil {
		t.LayoutSpecs = map[string]any{}
	}
	if t.FunctionSignature == nil {
		t.FunctionSignature = map[string]any{}
	}
}

func (t Template) sanitize(logger *slog.Logger) Template {
	switch t.DataShape {
	case ShapeObject, ShapeList:
	default:
		logger.Warn("unknown data_shape, using object", "template", t.ID, "data_shape", string(t.DataShape))
		t.DataShape = ShapeObject
	}
	t.RequiredSlots = t.RequiredSlots.sanitize(t.ID+".required_slots.", logger)
	optional := t.OptionalSlots.sanitize(t.ID+".optional_slots.", logger)
	t.OptionalSlots = slices.DeleteFunc(optional, func(ns NamedSlot) bool {
		if _, dup := t.RequiredSlots.Get(ns.Name); dup {
			logger.Warn("slot is both required and optional, keeping required", "template", t.ID, "slot", ns.Name)
			return true
		}
		return false
	})
	if t.Items != nil {
		items := t.Items.sanitize(t.ID+".items", logger)
		t.Items = &items
	}
	return t
}

// Option configures catalog construction.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives catalog warnings. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Catalog is an immutable lookup table of templates.
type Catalog struct {
	templates map[string]Template
	order     []string
}

// New builds a catalog from definitions. Every template needs an id; when
// an id repeats, the later definition replaces the earlier one in place.
// Slot descriptors the validator cannot honour are logged and relaxed
// rather than rejected.
func New(templates []Template, opts ...Option) (*Catalog, error) {
	o := buildOptions(opts)
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for i, t := range templates {
		if t.ID == "" {
			return nil, &LoadError{Code: ErrCodeMissingID, Message: fmt.Sprintf("template #%d missing 'id'", i+1)}
		}
		t.fillDefaults()
		t = t.sanitize(o.logger)
		if _, dup := c.templates[t.ID]; dup {
			o.logger.Warn("duplicate template id, later definition wins", "template", t.ID)
		} else {
			c.order = append(c.order, t.ID)
		}
		c.templates[t.ID] = t
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("embedded template catalog is invalid: %v", err))
	}
	return c
}

// Parse reads a JSON catalog: a bare array of templates, or an object with
// the array under "slide_templates" or "templates".
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	entries, err := templateEntries(data)
	if err != nil {
		return nil, err
	}

	templates := make([]Template, 0, len(entries))
	for i, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, &LoadError{Code: ErrCodeShape, Message: fmt.Sprintf("template #%d must be an object", i+1)}
		}
		var id string
		if rawID, ok := fields["id"]; ok {
			_ = json.Unmarshal(rawID, &id)
		}
		if id == "" {
			return nil, &LoadError{Code: ErrCodeMissingID, Message: fmt.Sprintf("template #%d missing 'id'", i+1)}
		}

		var t Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidSlot, Message: fmt.Sprintf("template %s: %v", id, err)}
		}
		templates = append(templates, t)
	}
	return New(templates, opts...)
}

func templateEntries(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &LoadError{Code: ErrCodeDecode, Message: "catalog is empty"}
	}

	var entries []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding catalog: %v", err)}
		}
		return entries, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding catalog: %v", err)}
		}
		for _, key := range []string{"slide_templates", "templates"} {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, &LoadError{Code: ErrCodeShape, Message: fmt.Sprintf("%s must be an array", key)}
			}
			return entries, nil
		}
		return nil, &LoadError{Code: ErrCodeShape, Message: "catalog object has no slide_templates or templates array"}
	default:
		return nil, &LoadError{Code: ErrCodeDecode, Message: "catalog must be a JSON array or object"}
	}
}

// Get returns the template with the given id. Slices and maps inside the
// returned Template are shared with the catalog and must not be modified.
func (c *Catalog) Get(id string) (Template, bool) {
	if c == nil {
		return Template{}, false
	}
	t, ok := c.templates[id]
	return t, ok
}

// Contains reports whether the catalog defines id.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// IDs lists template ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Templates returns every template in catalog order.
func (c *Catalog) Templates() []Template {
	if c == nil {
		return nil
	}
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}
