package store

import (
	"context"
	"fmt"
)

const attemptColumns = `id, session_id, seq, content_ir_hash, plan_hash, overall_valid, ready,
	total_slides, valid_slides, invalid_slides, slides_with_warnings,
	problems, report, feedback`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var (
		a            Attempt
		problemsJSON string
		reportJSON   string
	)
	err := row.Scan(
		&a.ID, &a.SessionID, &a.Seq, &a.ContentIRHash, &a.PlanHash, &a.OverallValid, &a.Ready,
		&a.TotalSlides, &a.ValidSlides, &a.InvalidSlides, &a.SlidesWithWarnings,
		&problemsJSON, &reportJSON, &a.Feedback,
	)
	if err != nil {
		return Attempt{}, err
	}

	a.Problems, err = unmarshalProblems(problemsJSON)
	if err != nil {
		return Attempt{}, err
	}
	a.Report, err = unmarshalReport(reportJSON)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// Attempts returns every attempt of a session.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the session has no attempts.
func (s *Store) Attempts(ctx context.Context, sessionID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM attempts
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return attempts, nil
}

// LatestAttempt returns the highest-seq attempt of a session.
// Returns sql.ErrNoRows if the session has no attempts.
func (s *Store) LatestAttempt(ctx context.Context, sessionID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+attemptColumns+`
		FROM attempts
		WHERE session_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, sessionID)
	return scanAttempt(row)
}

// SessionSummary describes one session of the log.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Attempts  int    `json:"attempts"`

	// Latest* describe the highest-seq attempt.
	LatestSeq           int64 `json:"latest_seq"`
	LatestValid         bool  `json:"latest_valid"`
	LatestReady         bool  `json:"latest_ready"`
	LatestInvalidSlides int   `json:"latest_invalid_slides"`
}

// Sessions summarizes every session, ordered by session ID. Session IDs
// from NewSessionID are time-ordered, so this is creation order.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.session_id, c.n, a.seq, a.overall_valid, a.ready, a.invalid_slides
		FROM attempts a
		JOIN (
			SELECT session_id, COUNT(*) AS n, MAX(seq) AS max_seq
			FROM attempts
			GROUP BY session_id
		) c ON a.session_id = c.session_id AND a.seq = c.max_seq
		ORDER BY a.session_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.SessionID, &ss.Attempts, &ss.LatestSeq, &ss.LatestValid, &ss.LatestReady, &ss.LatestInvalidSlides); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, ss)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}
