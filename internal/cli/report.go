package cli

import (
	"strconv"

	"github.com/roach88/deckcheck/internal/pipeline"
	"github.com/roach88/deckcheck/internal/validate"
)

// DeckResult is the JSON payload for a checked response.
type DeckResult struct {
	Name       string           `json:"name,omitempty"`
	Ready      bool             `json:"ready"`
	Summary    string           `json:"summary"`
	Problems   []string         `json:"problems"`
	Report     *validate.Report `json:"report"`
	Feedback   string           `json:"feedback"`
	GapFilled  bool             `json:"gap_filled,omitempty"`
	AttemptSeq int64            `json:"attempt_seq,omitempty"`
}

func newDeckResult(out *pipeline.Outcome) DeckResult {
	return DeckResult{
		Name:      out.Name,
		Ready:     out.Ready(),
		Summary:   validate.Summary(out.Report),
		Problems:  out.Problems,
		Report:    out.Report,
		Feedback:  out.Feedback,
		GapFilled: out.GapFilled.Any(),
	}
}

// printSlides renders the per-slide table.
func printSlides(p *Printer, tbl *Table, r *validate.Report) error {
	for _, res := range r.Slides {
		tbl.AddRow(
			strconv.Itoa(res.SlideNumber),
			res.Template,
			p.ValidBadge(res.Valid),
			strconv.Itoa(len(res.Issues)),
			strconv.Itoa(len(res.MissingFields)),
			strconv.Itoa(len(res.EmptyFields)),
			strconv.Itoa(len(res.Warnings)),
		)
	}
	return tbl.Render()
}

var slideHeaders = []string{"#", "Template", "Status", "Issues", "Missing", "Empty", "Warnings"}

// printOutcome writes the human-readable view of one outcome: problems,
// slide table, feedback (when showFeedback) and a final verdict line.
func printOutcome(p *Printer, f *OutputFormatter, out *pipeline.Outcome, showFeedback bool) error {
	if out.GapFilled.ContentIR {
		p.Warning("Content IR replaced with built-in example")
	}
	if out.GapFilled.RenderPlan {
		p.Warning("Render Plan replaced with built-in example")
	}
	for _, problem := range out.Problems {
		p.Warning("%s", problem)
	}

	if out.Report != nil && len(out.Report.Slides) > 0 {
		if err := printSlides(p, NewTable(f.Writer, slideHeaders), out.Report); err != nil {
			return err
		}
	}

	if showFeedback && out.Feedback != "" {
		p.Header("Feedback")
		p.Print("%s", out.Feedback)
	}

	if out.Ready() {
		p.Success("Deck ready (%s)", validate.Summary(out.Report))
	} else {
		p.Fail("Deck not ready (%s)", validate.Summary(out.Report))
	}
	return nil
}

// notReady returns the exit error for a response that failed validation.
func notReady(out *pipeline.Outcome) error {
	return NewExitError(ExitFailure, "deck not ready: "+validate.Summary(out.Report))
}
