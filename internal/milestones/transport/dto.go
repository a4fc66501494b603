package transport

// CreateMilestoneRequest is the payload for manually tracked milestones.
type CreateMilestoneRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=Upcoming 'In Progress' Completed Planned"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	URL         string `json:"url,omitempty" validate:"omitempty,url,max=500"`
}

// UpdateMilestoneStatusRequest carries a persistable status transition.
// Overdue is display-only and is rejected by the service layer.
type UpdateMilestoneStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListMilestonesRequest filters the milestone listing.
type ListMilestonesRequest struct {
	Status  string `form:"status" validate:"omitempty,max=20"`
	DueFrom string `form:"dueFrom" validate:"omitempty,datetime=2006-01-02"`
	DueTo   string `form:"dueTo" validate:"omitempty,datetime=2006-01-02"`
}
