package validate

import (
	"strings"

	"github.com/roach88/deckcheck/internal/ir"
)

// RuleInput is what a code rule sees of one slide.
type RuleInput struct {
	Slide ir.Slide

	// Data is the slide data as checked against the catalog slots, after
	// any wrapper was removed. Never nil.
	Data map[string]any

	// ContentIR is the paired Content IR. May be nil.
	ContentIR ir.ContentIR
}

// Rule adds checks a catalog slot descriptor cannot express, such as
// references into the Content IR.
type Rule func(in RuleInput, f *Findings)

// Messages shared with the feedback generator.
const (
	MsgMissingContentIRKey = "Missing content_ir_key - table will be empty"
	MsgInlineRows          = "Using hardcoded table_rows - content_ir_key preferred for dynamic data"
	MsgMissingData         = "Missing 'data' section"
	MsgUnknownTemplate     = "Unknown template type: %s"
)

var requiredBuyerFields = []string{"buyer_name", "strategic_rationale", "fit"}

var requiredInlineBuyerFields = []string{"buyer_name", "strategic_rationale"}

// resolveReference looks a content_ir_key up in the Content IR. Top-level
// keys win; dotted paths reach nested sections.
func resolveReference(doc ir.ContentIR, key string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if v, ok := doc.Section(key); ok {
		return v, true
	}
	if strings.Contains(key, ".") {
		return ir.Lookup(map[string]any(doc), key)
	}
	return nil, false
}

func unresolved(f *Findings, key string) {
	f.Issue("content_ir_key '%s' not found in Content IR (unresolved reference: %s)", key, key)
}

// buyerProfilesRule checks where the buyer table gets its rows from:
// preferably a Content IR section, otherwise inline table_rows.
func buyerProfilesRule(in RuleInput, f *Findings) {
	_, hasRows := in.Data["table_rows"]

	switch {
	case in.Slide.HasContentIRKey():
		key := in.Slide.ContentIRKey
		section, ok := resolveReference(in.ContentIR, key)
		if !ok {
			unresolved(f, key)
			return
		}
		if !ir.Truthy(section) {
			f.Empty("Empty %s array in Content IR", key)
			return
		}
		buyers, ok := section.([]any)
		if !ok {
			f.Issue("content_ir_key '%s' should be an array, got %s", key, ir.KindOf(section))
			return
		}
		for i, b := range buyers {
			buyer, ok := b.(map[string]any)
			if !ok {
				f.Issue("Buyer #%d should be an object", i+1)
				continue
			}
			for _, field := range requiredBuyerFields {
				v, present := buyer[field]
				switch {
				case !present:
					f.Empty("Buyer #%d missing %s", i+1, field)
				case ir.IsPlaceholder(v):
					f.Empty("Buyer #%d has placeholder %s", i+1, field)
				case !ir.Truthy(v):
					f.Empty("Buyer #%d has empty %s", i+1, field)
				}
			}
		}

	case hasRows:
		f.Warn(MsgInlineRows)
		rows, ok := in.Data["table_rows"].([]any)
		if !ok {
			// A populated non-list is a shape issue for the table_rows slot.
			if !ir.Truthy(in.Data["table_rows"]) {
				f.Empty("Empty table_rows array")
			}
			return
		}
		if len(rows) == 0 {
			f.Empty("Empty table_rows array")
			return
		}
		for i, raw := range rows {
			row, ok := ir.RowOf(raw)
			if !ok {
				f.Empty("Table row #%d has invalid structure", i+1)
				continue
			}
			switch r := row.(type) {
			case ir.NamedRow:
				for _, field := range requiredInlineBuyerFields {
					switch v := r[field]; {
					case ir.IsPlaceholder(v):
						f.Empty("Table row #%d has placeholder %s", i+1, field)
					case !ir.Truthy(v):
						f.Empty("Table row #%d missing or empty %s", i+1, field)
					}
				}
			case ir.PositionalRow:
				if len(r) == 0 {
					f.Empty("Table row #%d is empty", i+1)
					continue
				}
				for j, cell := range r {
					if !ir.Truthy(cell) || ir.IsPlaceholder(cell) {
						f.Empty("Table row #%d, cell #%d is empty or placeholder", i+1, j+1)
					}
				}
			}
		}

	default:
		f.Issue(MsgMissingContentIRKey)
	}
}

var managementColumns = []string{"left_column_profiles", "right_column_profiles"}

// managementTeamRule checks the two profile columns the slide reads from
// the Content IR.
func managementTeamRule(in RuleInput, f *Findings) {
	var section any
	if in.Slide.HasContentIRKey() {
		v, ok := resolveReference(in.ContentIR, in.Slide.ContentIRKey)
		if !ok {
			unresolved(f, in.Slide.ContentIRKey)
			return
		}
		section = v
	} else {
		v, ok := resolveReference(in.ContentIR, "management_team")
		if !ok {
			f.Issue("No management_team data in Content IR")
			return
		}
		section = v
	}

	team, ok := section.(map[string]any)
	if !ok {
		f.Issue("management_team data should be an object, got %s", ir.KindOf(section))
		return
	}

	for _, col := range managementColumns {
		raw, present := team[col]
		if !present {
			f.Missing("Missing %s", col)
			continue
		}
		profiles, ok := raw.([]any)
		if !ok || len(profiles) == 0 {
			f.Empty("Empty %s", col)
			continue
		}
		for i, p := range profiles {
			profile, ok := p.(map[string]any)
			if !ok {
				f.Issue("%s profile #%d should be an object", col, i+1)
				continue
			}
			role := profile["role_title"]
			if !ir.Truthy(role) || ir.IsPlaceholder(role) {
				f.Empty("%s profile #%d missing/placeholder role_title", col, i+1)
			}
			bullets, ok := profile["experience_bullets"].([]any)
			if !ok || len(bullets) == 0 {
				f.Empty("%s profile #%d missing/placeholder experience_bullets", col, i+1)
			}
		}
	}
}

// unwrapSlideData returns the object nested under slide_data when the LLM
// wrapped the growth slide payload.
func unwrapSlideData(data map[string]any) map[string]any {
	if inner, ok := data["slide_data"].(map[string]any); ok {
		return inner
	}
	return data
}
