package grants

import "fmt"

// MappingError signals a data-quality failure while mapping one opportunity.
// Ingestion skips the offending record and continues the batch; a missing or
// unparsable close date is never silently defaulted.
type MappingError struct {
	OpportunityID string
	Field         string
	Value         string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("opportunity %s: cannot map field %s from %q", e.OpportunityID, e.Field, e.Value)
}
