package repair

import (
	"strings"
)

// EmptyObject is returned when no JSON object could be located.
const EmptyObject = "{}"

// Repair applies, in order: whitespace trim, fence removal, outermost-brace
// slicing and same-line trailing-comma removal. The result is a candidate
// for JSON parsing, not a guarantee.
func Repair(raw string) string {
	s, ok := locate(raw)
	if !ok {
		return EmptyObject
	}
	return stripTrailingCommas(s)
}

// locate trims, strips fences and slices from the first "{" to the last "}".
func locate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = stripFences(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || start >= end {
		return "", false
	}
	return s[start : end+1], true
}

// stripFences removes a leading ```json / ``` marker and a trailing ```
// marker. Each is matched independently.
func stripFences(s string) string {
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stripTrailingCommas removes commas that directly precede "}" or "]" on the
// same line, allowing spaces and tabs in between. Runs to a fixed point so
// ",,]" collapses fully.
func stripTrailingCommas(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = stripLineCommas(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineCommas(line string) string {
	for {
		changed := false
		var b strings.Builder
		b.Grow(len(line))
		for i := 0; i < len(line); i++ {
			if line[i] == ',' {
				j := i + 1
				for j < len(line) && (line[j] == ' ' || line[j] == '\t' || line[j] == '\r') {
					j++
				}
				if j < len(line) && (line[j] == '}' || line[j] == ']') {
					changed = true
					// Skip the comma; keep whitespace + bracket.
					continue
				}
			}
			b.WriteByte(line[i])
		}
		if !changed {
			return line
		}
		line = b.String()
	}
}
