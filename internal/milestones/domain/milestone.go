package domain

import "time"

// DateLayout is the canonical calendar-date format for due dates.
// Due dates carry no time component.
const DateLayout = "2006-01-02"

// SourceGrantsGov tags milestones that originate from the external grants feed.
// SourceManual tags operator-entered milestones, which are never auto-closed.
const (
	SourceGrantsGov = "grants.gov"
	SourceManual    = "manual"
)

// Milestone is a grant-compliance or funding-opportunity deliverable tracked
// to a due date. The ID is the stable key derived from the external source;
// milestones are never deleted, only marked Completed.
type Milestone struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DueDate         string    `json:"dueDate"`
	Status          Status    `json:"status"`
	Priority        Priority  `json:"priority"`
	MatchedKeywords []string  `json:"matchedKeywords"`
	URL             string    `json:"url"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DueBefore reports whether the milestone's due date is strictly before the
// given day (date-only comparison; the time component of day is ignored).
func (m Milestone) DueBefore(day time.Time) bool {
	due, err := time.Parse(DateLayout, m.DueDate)
	if err != nil {
		return false
	}
	dayOnly := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(dayOnly)
}

// EffectiveStatus returns the status a dashboard should display on the given
// day. Past-due records that are not Completed show as Overdue; the persisted
// status is left untouched.
func (m Milestone) EffectiveStatus(day time.Time) Status {
	if m.Status != StatusCompleted && m.DueBefore(day) {
		return StatusOverdue
	}
	return m.Status
}

// Normalize ensures invariants that persistence and serialization rely on:
// MatchedKeywords is never nil, so an empty set serializes as [] rather than
// being absent.
func (m *Milestone) Normalize() {
	if m.MatchedKeywords == nil {
		m.MatchedKeywords = []string{}
	}
}
