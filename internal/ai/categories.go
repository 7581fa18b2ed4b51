package ai

import "strings"

// normalizeCategory normalizes a category name for comparison.
// Converts to uppercase and trims whitespace for case-insensitive comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// MatchCategory maps a raw suggestion onto a known label when they differ
// only by case or surrounding noise; otherwise the cleaned suggestion is
// returned as a new label. An empty result means no suggestion.
func MatchCategory(suggestion string, known []string) string {
	s := strings.TrimSpace(suggestion)
	s = strings.Trim(s, "\"'`.*")
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return ""
	}

	norm := normalizeCategory(s)
	for _, k := range known {
		if normalizeCategory(k) == norm {
			return k
		}
	}
	return s
}
