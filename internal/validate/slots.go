package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/ir"
)

// checkSlots runs the descriptor checks for one set of slots against an
// object. Absent optional slots are skipped.
func checkSlots(f *Findings, data map[string]any, slots catalog.Slots, required bool) {
	for _, ns := range slots {
		v, present := data[ns.Name]
		ref := fmt.Sprintf("%s (%s)", ns.Slot.DisplayLabel(ns.Name), ns.Name)
		if !present {
			if required {
				reportAbsent(f, ns.Slot.Severity, ref)
			}
			continue
		}
		checkValue(f, v, ns.Slot, ns.Name, ns.Slot.DisplayLabel(ns.Name))
	}
}

func reportAbsent(f *Findings, sev catalog.Severity, ref string) {
	switch sev {
	case catalog.SeverityIssue:
		f.Issue("Missing %s", ref)
	case catalog.SeverityWarning:
		f.Warn("Missing %s", ref)
	default:
		f.Missing("Missing %s", ref)
	}
}

// checkValue checks a present value against its descriptor. path locates
// the value inside slide data ("competitors[1].revenue").
func checkValue(f *Findings, v any, slot catalog.Slot, path, label string) {
	ref := fmt.Sprintf("%s (%s)", label, path)
	if ir.IsPlaceholder(v) {
		f.Empty("Placeholder %s", ref)
		return
	}
	if !ir.Truthy(v) {
		f.Empty("Empty %s", ref)
		return
	}
	if !shapeMatches(slot.Type, v) {
		f.Issue("%s should be %s, got %s", ref, describeType(slot.Type), ir.KindOf(v))
		return
	}

	switch val := v.(type) {
	case string:
		if slot.MaxLength > 0 {
			if n := utf8.RuneCountInString(val); n > slot.MaxLength {
				f.Warn("%s is %d characters, keep it under %d", ref, n, slot.MaxLength)
			}
		}
	case []any:
		if slot.Type == catalog.TypeTable {
			checkTable(f, val, slot, ref)
			return
		}
		checkList(f, val, slot, path, label, ref)
	case map[string]any:
		checkProperties(f, val, slot.Properties, path)
	}
}

func checkList(f *Findings, list []any, slot catalog.Slot, path, label, ref string) {
	if slot.MinItems > 0 && len(list) < slot.MinItems {
		f.Warn("%s has %d items, at least %d recommended", ref, len(list), slot.MinItems)
	}
	if slot.MaxItems > 0 && len(list) > slot.MaxItems {
		f.Warn("%s has %d items, at most %d recommended", ref, len(list), slot.MaxItems)
	}
	if slot.Items == nil {
		return
	}
	for i, item := range list {
		checkValue(f, item, *slot.Items, fmt.Sprintf("%s[%d]", path, i), fmt.Sprintf("%s #%d", label, i+1))
	}
}

// checkProperties requires every property of an object. Nested absences
// are reported as empty fields: the enclosing slot exists but its content
// has holes.
func checkProperties(f *Findings, obj map[string]any, props catalog.Slots, path string) {
	for _, ns := range props {
		sub := path + "." + ns.Name
		label := ns.Slot.DisplayLabel(ns.Name)
		v, present := obj[ns.Name]
		if !present {
			f.Empty("Missing %s (%s)", label, sub)
			continue
		}
		checkValue(f, v, ns.Slot, sub, label)
	}
}

func checkTable(f *Findings, rows []any, slot catalog.Slot, ref string) {
	header, ok := rows[0].([]any)
	if !ok {
		f.Issue("%s should be a table (array of arrays), got rows of %s", ref, ir.KindOf(rows[0]))
		return
	}
	for i, row := range rows[1:] {
		if _, ok := row.([]any); !ok {
			f.Issue("%s row #%d should be an array, got %s", ref, i+2, ir.KindOf(row))
			return
		}
	}

	cols := len(header)
	if slot.MinColumns > 0 && cols < slot.MinColumns {
		f.Issue("%s has only %d columns, at least %d required", ref, cols, slot.MinColumns)
	} else if lo, hi, ok := slot.IdealRange(); ok && (cols < lo || cols > hi) {
		f.Warn("%s has %d columns, %d-%d recommended for readability", ref, cols, lo, hi)
	}

	if len(slot.HeaderTerms) > 0 {
		cells := make([]string, len(header))
		for i, h := range header {
			cells[i] = strings.ToLower(ir.Text(h))
		}
		if !slot.HasTerm(strings.Join(cells, " ")) {
			f.Warn("%s headers should mention one of: %s", ref, strings.Join(slot.HeaderTerms, ", "))
		}
	}
	if len(rows) < 2 {
		f.Warn("%s has a header row but no data rows", ref)
	}
}

func shapeMatches(t catalog.SlotType, v any) bool {
	switch t {
	case catalog.TypeString:
		switch ir.KindOf(v) {
		case ir.KindString, ir.KindNumber:
			return true
		}
		return false
	case catalog.TypeNumber:
		return ir.KindOf(v) == ir.KindNumber
	case catalog.TypeBool:
		return ir.KindOf(v) == ir.KindBool
	case catalog.TypeList, catalog.TypeTable:
		_, ok := v.([]any)
		return ok
	case catalog.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

func describeType(t catalog.SlotType) string {
	switch t {
	case catalog.TypeString:
		return "text"
	case catalog.TypeNumber:
		return "a number"
	case catalog.TypeBool:
		return "true or false"
	case catalog.TypeList:
		return "a list"
	case catalog.TypeObject:
		return "an object"
	case catalog.TypeTable:
		return "a table (array of arrays)"
	default:
		return string(t)
	}
}
