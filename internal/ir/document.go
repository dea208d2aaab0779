package ir

import (
	"encoding/json"
	"fmt"
)

// Content IR section keys that identify a Content IR document.
var ContentIRSignatureKeys = []string{
	"entities",
	"management_team",
	"historical_financials",
	"strategic_buyers",
}

// ContentIR is the LLM-authored content document, keyed by section name
// (entities, facts, management_team, strategic_buyers, ...).
type ContentIR map[string]any

// LooksLikeContentIR reports whether an object carries any Content IR
// signature key.
func LooksLikeContentIR(m map[string]any) bool {
	for _, key := range ContentIRSignatureKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// CompanyName returns entities.company.name, or "" when absent.
func (c ContentIR) CompanyName() string {
	v, ok := Lookup(map[string]any(c), "entities.company.name")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Usable reports whether the document names the company it describes.
func (c ContentIR) Usable() bool {
	return c != nil && Truthy(c.CompanyName())
}

// Section returns a top-level section and whether it exists.
func (c ContentIR) Section(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// RenderPlan is the ordered list of slides to render.
type RenderPlan struct {
	Slides []Slide

	// Extra holds any top-level keys besides "slides", preserved verbatim.
	Extra map[string]any
}

// Slide is one entry of a RenderPlan.
type Slide struct {
	Template string

	// ContentIRKey names the Content IR section that sources this slide's
	// rows. Empty when the slide does not reference the Content IR.
	ContentIRKey string

	// Data is the template-specific payload. It is normally an object; the
	// sea_conglomerates template carries a list. nil when absent.
	Data any

	// Extra holds any other slide keys, preserved verbatim.
	Extra map[string]any
}

// DataMap returns the slide data as an object when it is one.
func (s Slide) DataMap() (map[string]any, bool) {
	m, ok := s.Data.(map[string]any)
	return m, ok
}

// HasContentIRKey reports whether the slide references the Content IR.
func (s Slide) HasContentIRKey() bool {
	return s.ContentIRKey != ""
}

// Clone deep-copies the slide.
func (s Slide) Clone() Slide {
	return Slide{
		Template:     s.Template,
		ContentIRKey: s.ContentIRKey,
		Data:         Clone(s.Data),
		Extra:        CloneMap(s.Extra),
	}
}

// ToMap converts the slide back into its JSON object form.
func (s Slide) ToMap() map[string]any {
	m := CloneMap(s.Extra)
	if m == nil {
		m = make(map[string]any, 3)
	}
	m["template"] = s.Template
	if s.ContentIRKey != "" {
		m["content_ir_key"] = s.ContentIRKey
	}
	if s.Data != nil {
		m["data"] = Clone(s.Data)
	}
	return m
}

// SlideFromMap builds a Slide from its JSON object form. Non-string
// template or content_ir_key values are rendered as text.
func SlideFromMap(m map[string]any) Slide {
	s := Slide{}
	for k, v := range m {
		switch k {
		case "template":
			s.Template = Text(v)
		case "content_ir_key":
			s.ContentIRKey = Text(v)
		case "data":
			s.Data = Clone(v)
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]any)
			}
			s.Extra[k] = Clone(v)
		}
	}
	return s
}

// NewRenderPlan builds a RenderPlan from a decoded object. It returns false
// unless the object has a "slides" array. Non-object slide entries become
// slides with no template so that positions are preserved.
func NewRenderPlan(v any) (RenderPlan, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return RenderPlan{}, false
	}
	raw, ok := m["slides"].([]any)
	if !ok {
		return RenderPlan{}, false
	}

	plan := RenderPlan{Slides: make([]Slide, 0, len(raw))}
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			plan.Slides = append(plan.Slides, Slide{})
			continue
		}
		plan.Slides = append(plan.Slides, SlideFromMap(obj))
	}
	for k, val := range m {
		if k == "slides" {
			continue
		}
		if plan.Extra == nil {
			plan.Extra = make(map[string]any)
		}
		plan.Extra[k] = Clone(val)
	}
	return plan, true
}

// Clone deep-copies the plan.
func (p RenderPlan) Clone() RenderPlan {
	out := RenderPlan{Extra: CloneMap(p.Extra)}
	if p.Slides != nil {
		out.Slides = make([]Slide, len(p.Slides))
		for i, s := range p.Slides {
			out.Slides[i] = s.Clone()
		}
	}
	return out
}

// ToMap converts the plan back into its JSON object form.
func (p RenderPlan) ToMap() map[string]any {
	m := CloneMap(p.Extra)
	if m == nil {
		m = make(map[string]any, 1)
	}
	slides := make([]any, len(p.Slides))
	for i, s := range p.Slides {
		slides[i] = s.ToMap()
	}
	m["slides"] = slides
	return m
}

// Templates lists the template id of every slide in order.
func (p RenderPlan) Templates() []string {
	ids := make([]string, len(p.Slides))
	for i, s := range p.Slides {
		ids[i] = s.Template
	}
	return ids
}

// MarshalJSON implements json.Marshaler for RenderPlan.
func (p RenderPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler for RenderPlan.
func (p *RenderPlan) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	plan, ok := NewRenderPlan(v)
	if !ok {
		return fmt.Errorf("render plan must be an object with a slides array")
	}
	*p = plan
	return nil
}

// MarshalJSON implements json.Marshaler for Slide.
func (s Slide) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler for Slide.
func (s *Slide) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("slide must be an object, got %s", KindOf(v))
	}
	*s = SlideFromMap(m)
	return nil
}

// NewContentIR builds a ContentIR from a decoded object.
func NewContentIR(v any) (ContentIR, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return ContentIR(CloneMap(m)), true
}

// UnmarshalJSON implements json.Unmarshaler for ContentIR.
func (c *ContentIR) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	doc, ok := NewContentIR(v)
	if !ok {
		return fmt.Errorf("content IR must be an object, got %s", KindOf(v))
	}
	*c = doc
	return nil
}
