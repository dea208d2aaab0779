package extract

import (
	"strings"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/repair"
)

type docKind int

const (
	kindNone docKind = iota
	kindContentIR
	kindRenderPlan
)

// Markers are matched case-insensitively anywhere in a line, so decorated
// headers like "## CONTENT IR JSON:" and "**Render Plan:**" match too.
var (
	contentIRMarkers  = []string{"content ir json:", "content ir:"}
	renderPlanMarkers = []string{"render plan json:", "render plan:"}
)

// markerKind reports which document a header line introduces and the text
// that follows the marker on the same line.
func markerKind(line string) (docKind, string) {
	lower := strings.ToLower(line)
	for _, m := range contentIRMarkers {
		if idx := strings.Index(lower, m); idx >= 0 {
			return kindContentIR, line[idx+len(m):]
		}
	}
	for _, m := range renderPlanMarkers {
		if idx := strings.Index(lower, m); idx >= 0 {
			return kindRenderPlan, line[idx+len(m):]
		}
	}
	return kindNone, ""
}

// braceCounter tracks object nesting across lines, ignoring braces inside
// JSON strings.
type braceCounter struct {
	depth    int
	opened   bool
	inString bool
	escaped  bool
}

func (b *braceCounter) feed(line string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if b.escaped {
			b.escaped = false
			continue
		}
		if c == '\\' && b.inString {
			b.escaped = true
			continue
		}
		if c == '"' {
			b.inString = !b.inString
			continue
		}
		if b.inString {
			continue
		}
		switch c {
		case '{':
			b.depth++
			b.opened = true
		case '}':
			b.depth--
		}
	}
}

func (r *Result) resolved(kind docKind) bool {
	switch kind {
	case kindContentIR:
		return r.ContentIR != nil
	case kindRenderPlan:
		return r.Plan != nil
	default:
		return true
	}
}

func scanMarkers(text string, res *Result) {
	var (
		target  = kindNone
		buf     []string
		counter braceCounter
		block   int
	)

	for _, line := range strings.Split(text, "\n") {
		// A document that closed on its own marker line is complete once
		// the next marker arrives.
		if target != kindNone && counter.opened && counter.depth == 0 {
			if kind, _ := markerKind(line); kind != kindNone {
				block++
				assignMarkerBlock(res, target, strings.Join(buf, "\n"), block)
				target = kindNone
				if res.Complete() {
					return
				}
			}
		}
		if target == kindNone || !counter.opened {
			if kind, rest := markerKind(line); kind != kindNone && !res.resolved(kind) {
				target = kind
				buf = buf[:0]
				counter = braceCounter{}
				if strings.TrimSpace(rest) != "" {
					buf = append(buf, rest)
					counter.feed(rest)
				}
				continue
			}
		}
		if target == kindNone {
			continue
		}

		buf = append(buf, line)
		counter.feed(line)

		if counter.depth < 0 {
			target = kindNone
			continue
		}
		if !counter.opened || counter.depth != 0 || len(buf) < 2 {
			continue
		}

		block++
		assignMarkerBlock(res, target, strings.Join(buf, "\n"), block)
		target = kindNone
		if res.Complete() {
			return
		}
	}
}

func assignMarkerBlock(res *Result, kind docKind, text string, block int) {
	obj, err := repair.ParseObject(text)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{Source: SourceMarker, Block: block, Reason: err.Error()})
		return
	}

	switch kind {
	case kindContentIR:
		if len(obj) == 0 {
			res.Skipped = append(res.Skipped, Skip{Source: SourceMarker, Block: block, Reason: "empty content IR"})
			return
		}
		doc, _ := ir.NewContentIR(obj)
		res.ContentIR = doc
		res.ContentIRSource = SourceMarker
	case kindRenderPlan:
		plan, ok := ir.NewRenderPlan(obj)
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Source: SourceMarker, Block: block, Reason: "render plan has no slides array"})
			return
		}
		res.Plan = &plan
		res.PlanSource = SourceMarker
	}
}
