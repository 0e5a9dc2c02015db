package vision

import "strings"

// ParseResponse parses a model response in format: name | category | notes,
// one suggestion per line.
func ParseResponse(raw string) []Suggestion {
	lines := strings.Split(raw, "\n")
	suggestions := make([]Suggestion, 0)

	for _, line := range lines {
		if s := ParseLine(line); s != nil {
			suggestions = append(suggestions, *s)
		}
	}

	return suggestions
}

// ParseLine parses a single "name | category | notes" line, returning nil for
// blank lines and conversational preamble.
func ParseLine(line string) *Suggestion {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	// Models often lead with a sentence before the list.
	if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I see") || strings.HasPrefix(line, "Based on") {
		return nil
	}

	// Lines without a pipe separator are indistinguishable from preamble.
	if !strings.Contains(line, "|") {
		return nil
	}

	parts := strings.Split(line, "|")
	s := &Suggestion{Name: strings.TrimSpace(parts[0])}
	if len(parts) >= 2 {
		s.Category = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		s.Notes = strings.TrimSpace(parts[2])
	}

	if s.Name == "" {
		return nil
	}
	return s
}
