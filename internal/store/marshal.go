package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/deckcheck/internal/validate"
)

// marshalReport converts a validation report to JSON TEXT for storage.
// Uses json.Encoder with HTML escaping disabled so that feedback-bound
// strings such as "<" survive untouched.
func marshalReport(r *validate.Report) (string, error) {
	if r == nil {
		return "null", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalReport parses stored report TEXT.
func unmarshalReport(data string) (*validate.Report, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var r validate.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// marshalProblems stores document-level problems as a JSON array.
func marshalProblems(problems []string) (string, error) {
	if problems == nil {
		problems = []string{}
	}
	data, err := json.Marshal(problems)
	if err != nil {
		return "", fmt.Errorf("marshal problems: %w", err)
	}
	return string(data), nil
}

func unmarshalProblems(data string) ([]string, error) {
	problems := []string{}
	if data == "" {
		return problems, nil
	}
	if err := json.Unmarshal([]byte(data), &problems); err != nil {
		return nil, fmt.Errorf("unmarshal problems: %w", err)
	}
	return problems, nil
}
