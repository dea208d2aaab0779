package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/pipeline"
	"github.com/roach88/deckcheck/internal/validate"
)

// Attempt is one validation pass over an LLM response within a session.
type Attempt struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	// Seq is the attempt's position in its session, starting at 1.
	// Assigned by RecordAttempt.
	Seq int64 `json:"seq"`

	ContentIRHash string `json:"content_ir_hash"`
	PlanHash      string `json:"plan_hash"`

	OverallValid       bool `json:"overall_valid"`
	Ready              bool `json:"ready"`
	TotalSlides        int  `json:"total_slides"`
	ValidSlides        int  `json:"valid_slides"`
	InvalidSlides      int  `json:"invalid_slides"`
	SlidesWithWarnings int  `json:"slides_with_warnings"`

	Problems []string         `json:"problems"`
	Report   *validate.Report `json:"report"`
	Feedback string           `json:"feedback"`
}

// NewAttempt summarizes a pipeline outcome for the log. The plan hash
// covers the normalized plan, so responses that differ only in what the
// normalizer rewrites count as the same attempt.
func NewAttempt(sessionID string, out *pipeline.Outcome) (Attempt, error) {
	if out == nil || out.Report == nil {
		return Attempt{}, fmt.Errorf("new attempt: outcome has no report")
	}

	docHash, err := ir.ContentIRHash(out.ContentIR)
	if err != nil {
		return Attempt{}, fmt.Errorf("new attempt: %w", err)
	}
	planHash, err := ir.RenderPlanHash(out.Normalized)
	if err != nil {
		return Attempt{}, fmt.Errorf("new attempt: %w", err)
	}

	r := out.Report
	return Attempt{
		SessionID:          sessionID,
		ContentIRHash:      docHash,
		PlanHash:           planHash,
		OverallValid:       r.OverallValid,
		Ready:              out.Ready(),
		TotalSlides:        r.TotalSlides,
		ValidSlides:        r.ValidSlides,
		InvalidSlides:      r.InvalidSlides,
		SlidesWithWarnings: r.SlidesWithWarnings,
		Problems:           out.Problems,
		Report:             r,
		Feedback:           out.Feedback,
	}, nil
}

// NewSessionID returns a fresh time-ordered session identifier.
func NewSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new session id: %w", err)
	}
	return id.String(), nil
}

// RecordAttempt appends an attempt to its session and returns the stored
// record. The ID (UUIDv7) and Seq are assigned here.
//
// Uses ON CONFLICT(session_id, content_ir_hash, plan_hash) DO NOTHING for
// idempotency: when the session already holds the same documents, the
// existing attempt is returned with inserted=false.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) (stored Attempt, inserted bool, err error) {
	if a.SessionID == "" {
		return Attempt{}, false, fmt.Errorf("record attempt: session id is required")
	}

	reportJSON, err := marshalReport(a.Report)
	if err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: %w", err)
	}
	problemsJSON, err := marshalProblems(a.Problems)
	if err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: %w", err)
	}

	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Attempt{}, false, fmt.Errorf("record attempt: generate id: %w", err)
		}
		a.ID = id.String()
	}

	// Use a transaction so seq assignment and insert-or-select are atomic
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM attempts WHERE session_id = ?
	`, a.SessionID).Scan(&a.Seq); err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO attempts
		(id, session_id, seq, content_ir_hash, plan_hash, overall_valid, ready,
		 total_slides, valid_slides, invalid_slides, slides_with_warnings,
		 problems, report, feedback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, content_ir_hash, plan_hash) DO NOTHING
	`,
		a.ID,
		a.SessionID,
		a.Seq,
		a.ContentIRHash,
		a.PlanHash,
		a.OverallValid,
		a.Ready,
		a.TotalSlides,
		a.ValidSlides,
		a.InvalidSlides,
		a.SlidesWithWarnings,
		problemsJSON,
		reportJSON,
		a.Feedback,
	)
	if err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		stored, inserted = a, true
		if stored.Problems == nil {
			stored.Problems = []string{}
		}
	} else {
		// Conflict - the session already has these documents
		row := tx.QueryRowContext(ctx, `
			SELECT `+attemptColumns+`
			FROM attempts
			WHERE session_id = ? AND content_ir_hash = ? AND plan_hash = ?
		`, a.SessionID, a.ContentIRHash, a.PlanHash)
		stored, err = scanAttempt(row)
		if err != nil {
			return Attempt{}, false, fmt.Errorf("record attempt: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, false, fmt.Errorf("record attempt: commit: %w", err)
	}

	return stored, inserted, nil
}
