// Package grants transforms external grants.gov opportunity records into
// milestone records. All transforms here are pure; fetching lives in
// grants/client and persistence in the milestones context.
package grants

// Opportunity is one record from the external opportunity feed.
// OpenDate and OppStatus are carried for provenance but unused by mapping.
type Opportunity struct {
	ID         string   `json:"id"`
	Number     string   `json:"number"`
	Title      string   `json:"title"`
	AgencyName string   `json:"agencyName"`
	CFDAList   []string `json:"cfdaList"`
	OpenDate   string   `json:"openDate"`
	CloseDate  string   `json:"closeDate"`
	OppStatus  string   `json:"oppStatus"`
}
