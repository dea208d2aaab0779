package repair

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/deckcheck/internal/ir"
)

// ErrNoObject reports that the text contained no JSON object at all.
var ErrNoObject = errors.New("no JSON object found")

// ParseError describes why a repaired candidate could not be decoded.
type ParseError struct {
	// Stage is "locate" when no object was found, "decode" when the
	// candidate was not valid JSON and "shape" when it was not an object.
	Stage  string
	Offset int64 // byte offset into the repaired candidate, when known
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("repair %s at offset %d: %v", e.Stage, e.Offset, e.Err)
	}
	return fmt.Sprintf("repair %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseObject repairs raw and decodes it into a JSON object. Numbers are
// kept as json.Number.
func ParseObject(raw string) (map[string]any, error) {
	located, ok := locate(raw)
	if !ok {
		return nil, &ParseError{Stage: "locate", Err: ErrNoObject}
	}
	candidate := stripTrailingCommas(located)

	v, err := ir.Decode([]byte(candidate))
	if err != nil {
		pe := &ParseError{Stage: "decode", Err: err}
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			pe.Offset = syn.Offset
		}
		return nil, pe
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Stage: "shape", Err: fmt.Errorf("expected object, got %s", ir.KindOf(v))}
	}
	return obj, nil
}
