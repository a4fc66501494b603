package transport

import (
	"time"

	"donorops_backend/internal/milestones/domain"
)

// MilestoneView is a milestone as shown in API responses. DisplayStatus is
// the stored status with past-due open milestones rendered as Overdue; it is
// never written back to the store.
type MilestoneView struct {
	domain.Milestone
	DisplayStatus domain.Status `json:"displayStatus"`
}

// ToView renders a milestone for the given day.
func ToView(m domain.Milestone, day time.Time) MilestoneView {
	return MilestoneView{Milestone: m, DisplayStatus: m.EffectiveStatus(day)}
}

// ToViews renders a slice of milestones for the given day.
func ToViews(list []domain.Milestone, day time.Time) []MilestoneView {
	views := make([]MilestoneView, 0, len(list))
	for _, m := range list {
		views = append(views, ToView(m, day))
	}
	return views
}
