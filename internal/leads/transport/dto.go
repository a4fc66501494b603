package transport

// CreateLeadRequest is the payload for a new lead. Either contactName or
// organization must be present; the service enforces that.
type CreateLeadRequest struct {
	ContactName       string `json:"contactName" validate:"max=200"`
	Organization      string `json:"organization" validate:"max=200"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	Phone             string `json:"phone,omitempty" validate:"max=30"`
	Source            string `json:"source" validate:"max=100"`
	EquipmentType     string `json:"equipmentType,omitempty" validate:"max=100"`
	EstimatedQuantity int    `json:"estimatedQuantity"`
	Timeline          string `json:"timeline,omitempty" validate:"max=100"`
	Notes             string `json:"notes,omitempty" validate:"max=2000"`
	FollowUpDate      string `json:"followUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateLeadRequest is a partial lead edit. Absent fields stay unchanged.
type UpdateLeadRequest struct {
	ContactName       *string `json:"contactName,omitempty" validate:"omitempty,max=200"`
	Organization      *string `json:"organization,omitempty" validate:"omitempty,max=200"`
	Email             *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone             *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Source            *string `json:"source,omitempty" validate:"omitempty,max=100"`
	EquipmentType     *string `json:"equipmentType,omitempty" validate:"omitempty,max=100"`
	EstimatedQuantity *int    `json:"estimatedQuantity,omitempty"`
	Timeline          *string `json:"timeline,omitempty" validate:"omitempty,max=100"`
	Notes             *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Priority          *int    `json:"priority,omitempty"`
	FollowUpDate      *string `json:"followUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateLeadStatusRequest moves a lead to a new pipeline status.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CompleteFollowUpRequest closes out the current follow-up. NextDate may be
// empty to stop the cycle.
type CompleteFollowUpRequest struct {
	NextDate string `json:"nextDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ListLeadsRequest filters the lead listing.
type ListLeadsRequest struct {
	Status string `form:"status" validate:"omitempty,max=30"`
	Source string `form:"source" validate:"omitempty,max=100"`
}
