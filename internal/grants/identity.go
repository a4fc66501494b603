package grants

// SourcePrefix tags every milestone id derived from the grants.gov feed.
// The auto-close sweep keys off this prefix to leave manual milestones alone.
const SourcePrefix = "GRANTSGOV-"

// BuildID derives the stable milestone id for an opportunity. The
// human-readable opportunity number is preferred verbatim; the raw numeric id
// is the fallback. Deterministic and injective over the feed's id space.
//
// An opportunity with neither number nor id yields the bare prefix; callers
// must guard against upserting that degenerate id.
func BuildID(opp Opportunity) string {
	if opp.Number != "" {
		return SourcePrefix + opp.Number
	}
	return SourcePrefix + opp.ID
}
