package grants

import (
	"fmt"
	"time"

	"donorops_backend/internal/milestones/domain"
	"donorops_backend/platform/clock"
)

// closeDateLayout is the feed's date format.
const closeDateLayout = "01/02/2006"

// opportunityURLTemplate is the fixed external view-by-id URL.
const opportunityURLTemplate = "https://www.grants.gov/search-results-detail/%s"

// MapContext carries per-search context into the mapping.
type MapContext struct {
	// Keyword is the search term that matched this opportunity, if any.
	Keyword string
}

// MapOpportunity transforms one feed record into a milestone. Pure transform:
// createdAt/updatedAt are stamped later by the store.
//
// Records already past their close date map to Completed with High priority.
// High here flags the record for audit and closure, not for pursuit. Open
// records start as exploratory Upcoming/Low.
func MapOpportunity(opp Opportunity, mctx MapContext, clk clock.Clock) (domain.Milestone, error) {
	if opp.CloseDate == "" {
		return domain.Milestone{}, &MappingError{OpportunityID: opp.ID, Field: "closeDate", Value: ""}
	}

	due, err := time.Parse(closeDateLayout, opp.CloseDate)
	if err != nil {
		return domain.Milestone{}, &MappingError{OpportunityID: opp.ID, Field: "closeDate", Value: opp.CloseDate}
	}

	now := clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	status := domain.StatusUpcoming
	priority := domain.PriorityLow
	if due.Before(today) {
		status = domain.StatusCompleted
		priority = domain.PriorityHigh
	}

	keywords := []string{}
	if mctx.Keyword != "" {
		keywords = []string{mctx.Keyword}
	}

	m := domain.Milestone{
		ID:              BuildID(opp),
		Title:           opp.Title,
		Description:     buildDescription(opp),
		DueDate:         due.Format(domain.DateLayout),
		Status:          status,
		Priority:        priority,
		MatchedKeywords: keywords,
		URL:             fmt.Sprintf(opportunityURLTemplate, opp.ID),
		Source:          domain.SourceGrantsGov,
	}
	m.Normalize()
	return m, nil
}

func buildDescription(opp Opportunity) string {
	if len(opp.CFDAList) > 0 {
		return fmt.Sprintf("%s | Assistance Listing %s", opp.AgencyName, opp.CFDAList[0])
	}
	return opp.AgencyName
}
