// Package domain holds the lead model and its lifecycle vocabulary.
package domain

import "time"

// Status is a lead's pipeline state. The Active family covers leads still
// being worked; the Closed family covers terminal outcomes. Transitions are
// unrestricted, including reopening a closed lead.
type Status string

const (
	StatusNew            Status = "New"
	StatusResearching    Status = "Researching"
	StatusInitialContact Status = "Initial Contact"
	StatusQualified      Status = "Qualified"
	StatusProposalSent   Status = "Proposal Sent"
	StatusNegotiating    Status = "Negotiating"

	StatusCommitted     Status = "Committed"
	StatusDonated       Status = "Donated"
	StatusNotInterested Status = "Not Interested"
	StatusInvalid       Status = "Invalid"
)

// TimelineClosed is stamped into Timeline when a lead enters the Closed
// family, so reporting can tell a closed "Immediate" from an open one.
const TimelineClosed = "Closed"

var closedFamily = map[Status]bool{
	StatusCommitted:     true,
	StatusDonated:       true,
	StatusNotInterested: true,
	StatusInvalid:       true,
}

var activeFamily = map[Status]bool{
	StatusNew:            true,
	StatusResearching:    true,
	StatusInitialContact: true,
	StatusQualified:      true,
	StatusProposalSent:   true,
	StatusNegotiating:    true,
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return activeFamily[s] || closedFamily[s]
}

// IsClosed reports whether s belongs to the Closed family.
func (s Status) IsClosed() bool {
	return closedFamily[s]
}

// ClosedStatuses returns the Closed family as strings, for query filters.
func ClosedStatuses() []string {
	out := make([]string, 0, len(closedFamily))
	for s := range closedFamily {
		out = append(out, string(s))
	}
	return out
}

// DateLayout is the wire format for follow-up dates. Date only, no time
// component.
const DateLayout = "2006-01-02"

// Lead is a prospective equipment-donation opportunity tracked through the
// pipeline. Ids are store-assigned and monotonic.
type Lead struct {
	ID                int64     `json:"id"`
	ContactName       string    `json:"contactName"`
	Organization      string    `json:"organization"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Source            string    `json:"source"`
	EquipmentType     string    `json:"equipmentType,omitempty"`
	EstimatedQuantity int       `json:"estimatedQuantity"`
	Timeline          string    `json:"timeline,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Priority          int       `json:"priority"`
	Status            Status    `json:"status"`
	FollowUpDate      string    `json:"followUpDate,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DaysUntilFollowUp returns whole days from day to the follow-up date,
// negative when overdue. ok is false when no follow-up date is set or it
// does not parse.
func (l Lead) DaysUntilFollowUp(day time.Time) (int, bool) {
	if l.FollowUpDate == "" {
		return 0, false
	}
	due, err := time.Parse(DateLayout, l.FollowUpDate)
	if err != nil {
		return 0, false
	}
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24), true
}
