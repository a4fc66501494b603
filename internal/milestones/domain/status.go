// Package domain provides core business rules for the milestones bounded context.
package domain

// Status is the persisted workflow state of a milestone.
type Status string

const (
	StatusUpcoming   Status = "Upcoming"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	// StatusPlanned is set manually by operators and is never produced or
	// overwritten by automated feed merges.
	StatusPlanned Status = "Planned"

	// StatusOverdue is a display-only status computed at query time.
	// It is never persisted.
	StatusOverdue Status = "Overdue"
)

// statusRank is the advancement order used during merges. A merge never moves
// a milestone to a lower-ranked status. Planned sits outside the advancement
// order and is handled separately.
var statusRank = map[Status]int{
	StatusUpcoming:   0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// Valid reports whether s is a persistable status.
func Valid(s Status) bool {
	if s == StatusPlanned {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Rank returns the advancement rank of s, and whether s participates in the
// advancement order at all.
func (s Status) Rank() (int, bool) {
	r, ok := statusRank[s]
	return r, ok
}

// mergeStatus resolves the status of a merged milestone. Completed always
// wins. Planned on either side is sticky and survives any non-Completed
// counterpart. Otherwise the higher-ranked status wins, so manual advancement
// never regresses under a stale feed record. The resolution is commutative
// and idempotent, which keeps batch upserts order-independent.
func mergeStatus(existing, incoming Status) Status {
	if existing == StatusCompleted || incoming == StatusCompleted {
		return StatusCompleted
	}
	if existing == StatusPlanned || incoming == StatusPlanned {
		return StatusPlanned
	}

	er, eok := existing.Rank()
	ir, iok := incoming.Rank()
	switch {
	case !eok:
		return incoming
	case !iok:
		return existing
	case ir > er:
		return incoming
	default:
		return existing
	}
}

// Priority is the review priority of a milestone.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)
