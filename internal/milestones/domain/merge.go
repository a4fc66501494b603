package domain

import "time"

// Merge folds an incoming feed record into an existing milestone.
//
// The external feed is authoritative for descriptive metadata (title,
// description, due date, priority) but never for workflow state: status only
// advances, matched keywords only grow, and a URL is first-write-wins.
// Merge(x, y) twice equals Merge(x, y) once, and keyword union plus
// status-rank max keep repeated or out-of-order batch delivery harmless.
func Merge(existing, incoming Milestone, now time.Time) Milestone {
	merged := existing

	merged.Title = incoming.Title
	merged.Description = incoming.Description
	merged.DueDate = incoming.DueDate
	merged.Priority = incoming.Priority
	merged.Source = incoming.Source

	merged.MatchedKeywords = UnionKeywords(existing.MatchedKeywords, incoming.MatchedKeywords)
	merged.Status = mergeStatus(existing.Status, incoming.Status)

	if merged.URL == "" {
		merged.URL = incoming.URL
	}

	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = now

	merged.Normalize()
	return merged
}

// UnionKeywords returns the set union of two keyword lists, preserving
// first-seen order. Comparison is case-sensitive exact match.
func UnionKeywords(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, kw := range list {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
