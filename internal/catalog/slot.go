package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// SlotType is the expected JSON shape of a slot value.
type SlotType string

const (
	TypeAny    SlotType = "any"
	TypeString SlotType = "string"
	TypeList   SlotType = "list"
	TypeObject SlotType = "object"
	TypeNumber SlotType = "number"
	TypeBool   SlotType = "bool"
	// TypeTable is a list of rows where every row is itself a list and the
	// first row holds the column headers.
	TypeTable SlotType = "table"
)

// Severity decides where the absence of a required slot is reported.
type Severity string

const (
	// SeverityMissing reports an absent slot as a missing field.
	SeverityMissing Severity = ""
	// SeverityIssue reports an absent slot as a hard issue.
	SeverityIssue Severity = "issue"
	// SeverityWarning reports an absent slot as a warning only.
	SeverityWarning Severity = "warning"
)

// Slot describes one content slot of a template. In catalog files a slot
// is either a bare type name ("string") or an object with the fields below.
type Slot struct {
	Type  SlotType `json:"type"`
	Label string   `json:"label,omitempty"`

	// Items describes each element of a list slot.
	Items *Slot `json:"items,omitempty"`

	// Properties are sub-slots required whenever the value (or list item)
	// is an object.
	Properties Slots `json:"properties,omitempty"`

	MinItems  int `json:"min_items,omitempty"`
	MaxItems  int `json:"max_items,omitempty"`
	MaxLength int `json:"max_length,omitempty"`

	MinColumns   int      `json:"min_columns,omitempty"`
	IdealColumns []int    `json:"ideal_columns,omitempty"`
	HeaderTerms  []string `json:"header_terms,omitempty"`

	Severity Severity `json:"severity,omitempty"`

	// malformed holds the JSON kind of a slot value that was neither a
	// type name nor a descriptor.
	malformed string
}

// slotFields breaks the UnmarshalJSON recursion.
type slotFields Slot

// UnmarshalJSON accepts either a bare type string or a descriptor object.
// Any other value becomes an untyped slot.
func (s *Slot) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty slot value")
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = Slot{Type: SlotType(name)}
		return nil
	case '{':
	default:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Slot{Type: TypeAny}
		switch v.(type) {
		case float64:
			s.malformed = "number"
		case bool:
			s.malformed = "bool"
		case []any:
			s.malformed = "list"
		}
		return nil
	}

	var f slotFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Type == "" {
		f.Type = TypeAny
	}
	*s = Slot(f)
	return nil
}

// DisplayLabel returns the label, or name when no label was given.
func (s Slot) DisplayLabel(name string) string {
	if s.Label != "" {
		return s.Label
	}
	return name
}

// IdealRange returns the soft column range for table slots.
func (s Slot) IdealRange() (lo, hi int, ok bool) {
	if len(s.IdealColumns) != 2 {
		return 0, 0, false
	}
	return s.IdealColumns[0], s.IdealColumns[1], true
}

// sanitize returns the slot with anything it cannot honour dropped or
// replaced by a default, warning once per correction.
func (s Slot) sanitize(path string, logger *slog.Logger) Slot {
	if s.malformed != "" {
		logger.Warn("slot is neither a type name nor a descriptor, treating as any", "slot", path, "value", s.malformed)
		s.malformed = ""
	}
	switch s.Type {
	case TypeAny, TypeString, TypeNumber, TypeBool, TypeList, TypeObject, TypeTable:
	case "":
		s.Type = TypeAny
	default:
		logger.Warn("unknown slot type, treating as any", "slot", path, "type", string(s.Type))
		s.Type = TypeAny
	}
	switch s.Severity {
	case SeverityMissing, SeverityIssue, SeverityWarning:
	default:
		logger.Warn("unknown slot severity, using default", "slot", path, "severity", string(s.Severity))
		s.Severity = SeverityMissing
	}
	if len(s.IdealColumns) != 0 {
		if len(s.IdealColumns) != 2 || s.IdealColumns[0] > s.IdealColumns[1] {
			logger.Warn("ignoring ideal_columns, expected [min, max]", "slot", path, "ideal_columns", s.IdealColumns)
			s.IdealColumns = nil
		}
	}
	if s.MinItems < 0 || s.MaxItems < 0 || s.MaxLength < 0 || s.MinColumns < 0 {
		logger.Warn("ignoring negative limits", "slot", path)
		s.MinItems = max(s.MinItems, 0)
		s.MaxItems = max(s.MaxItems, 0)
		s.MaxLength = max(s.MaxLength, 0)
		s.MinColumns = max(s.MinColumns, 0)
	}
	if s.MaxItems > 0 && s.MinItems > s.MaxItems {
		logger.Warn("ignoring min_items above max_items", "slot", path, "min_items", s.MinItems, "max_items", s.MaxItems)
		s.MinItems = 0
	}
	if s.Items != nil {
		items := s.Items.sanitize(path+"[]", logger)
		s.Items = &items
	}
	s.Properties = s.Properties.sanitize(path+".", logger)
	return s
}

// NamedSlot pairs a slot with its field name.
type NamedSlot struct {
	Name string
	Slot Slot
}

// Slots is an ordered set of named slots. Order follows the catalog file so
// that diagnostics come out in authored order.
type Slots []NamedSlot

// Get returns the slot called name.
func (ss Slots) Get(name string) (Slot, bool) {
	for _, ns := range ss {
		if ns.Name == name {
			return ns.Slot, true
		}
	}
	return Slot{}, false
}

// sanitize drops unnamed slots and repeated names (the first wins) and
// sanitizes the rest. A nil set stays nil.
func (ss Slots) sanitize(prefix string, logger *slog.Logger) Slots {
	if ss == nil {
		return nil
	}
	out := make(Slots, 0, len(ss))
	seen := make(map[string]bool, len(ss))
	for _, ns := range ss {
		if ns.Name == "" {
			logger.Warn("ignoring slot without a name", "slot", prefix)
			continue
		}
		if seen[ns.Name] {
			logger.Warn("ignoring duplicate slot", "slot", prefix+ns.Name)
			continue
		}
		seen[ns.Name] = true
		out = append(out, NamedSlot{Name: ns.Name, Slot: ns.Slot.sanitize(prefix+ns.Name, logger)})
	}
	return out
}

// UnmarshalJSON reads a JSON object keeping key order. null yields no slots.
func (ss *Slots) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ss = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("slots must be an object, got %v", tok)
	}

	var out Slots
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("slot name must be a string, got %v", keyTok)
		}
		var slot Slot
		if err := dec.Decode(&slot); err != nil {
			return fmt.Errorf("slot %q: %w", key, err)
		}
		out = append(out, NamedSlot{Name: key, Slot: slot})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ss = out
	return nil
}

// MarshalJSON writes the slots as an object in order.
func (ss Slots) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ns := range ss {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ns.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ns.Slot)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HasTerm reports whether any header term occurs in text. Callers lowercase
// text first.
func (s Slot) HasTerm(text string) bool {
	return slices.ContainsFunc(s.HeaderTerms, func(term string) bool {
		return term != "" && strings.Contains(text, term)
	})
}
