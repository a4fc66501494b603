package grants

import "strings"

// ParseKeywordList splits a free-text keyword list on both '|' and ','.
// Tokens are trimmed, empties dropped, first-seen order preserved, and case
// kept as written. De-duplication is case-sensitive exact match.
func ParseKeywordList(raw string) []string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ','
	})

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
