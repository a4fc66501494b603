// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"donorops_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Milestone Domain Events
// =============================================================================

// MilestoneBatchIngested is published after a feed batch has been merged into
// the milestone store.
type MilestoneBatchIngested struct {
	BaseEvent
	RunID    string `json:"runId"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
	Skipped  int    `json:"skipped"`
}

func (e MilestoneBatchIngested) EventName() string { return "milestones.batch.ingested" }

// MilestonesAutoClosed is published after an auto-close sweep completes.
type MilestonesAutoClosed struct {
	BaseEvent
	Closed   int    `json:"closed"`
	IDPrefix string `json:"idPrefix"`
}

func (e MilestonesAutoClosed) EventName() string { return "milestones.auto_closed" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID       int64  `json:"leadId"`
	Organization string `json:"organization"`
	Priority     int    `json:"priority"`
	Source       string `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead moves between statuses.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     int64  `json:"leadId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Closed     bool   `json:"closed"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadFollowUpCompleted is published when a follow-up on a lead is completed.
type LeadFollowUpCompleted struct {
	BaseEvent
	LeadID int64 `json:"leadId"`
}

func (e LeadFollowUpCompleted) EventName() string { return "leads.lead.follow_up_completed" }
