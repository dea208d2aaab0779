package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/deckcheck/internal/validate"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestAttempt creates an attempt with minimal required fields.
// Distinct suffixes give distinct document hashes.
func createTestAttempt(sessionID, suffix string, valid bool) Attempt {
	invalid := 0
	if !valid {
		invalid = 1
	}
	return Attempt{
		SessionID:     sessionID,
		ContentIRHash: "ir-" + suffix,
		PlanHash:      "plan-" + suffix,
		OverallValid:  valid,
		Ready:         valid,
		TotalSlides:   1,
		ValidSlides:   1 - invalid,
		InvalidSlides: invalid,
		Report: &validate.Report{
			Slides:        []validate.Result{{SlideNumber: 1, Template: "appendix", Valid: valid}},
			TotalSlides:   1,
			ValidSlides:   1 - invalid,
			InvalidSlides: invalid,
			OverallValid:  valid,
		},
	}
}
