package grants

import (
	"errors"
	"strings"
	"testing"
	"time"

	"donorops_backend/internal/milestones/domain"
	"donorops_backend/platform/clock"

	"github.com/google/go-cmp/cmp"
)

var mapperClock = clock.At(time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC))

func TestMapOpportunityOpenRecord(t *testing.T) {
	opp := Opportunity{
		ID:         "12345",
		Number:     "DE-FOA-0001",
		Title:      "Digital Equity Capacity Grant",
		AgencyName: "Department of Energy",
		CFDAList:   []string{"81.086"},
		CloseDate:  "09/30/2030",
	}

	got, err := MapOpportunity(opp, MapContext{Keyword: "digital equity"}, mapperClock)
	if err != nil {
		t.Fatalf("MapOpportunity returned error: %v", err)
	}

	if got.ID != "GRANTSGOV-DE-FOA-0001" {
		t.Errorf("id: got %q, want %q", got.ID, "GRANTSGOV-DE-FOA-0001")
	}
	if got.DueDate != "2030-09-30" {
		t.Errorf("dueDate: got %q, want %q", got.DueDate, "2030-09-30")
	}
	if got.Status != domain.StatusUpcoming {
		t.Errorf("status: got %q, want %q", got.Status, domain.StatusUpcoming)
	}
	if got.Priority != domain.PriorityLow {
		t.Errorf("priority: got %q, want %q", got.Priority, domain.PriorityLow)
	}
	if diff := cmp.Diff([]string{"digital equity"}, got.MatchedKeywords); diff != "" {
		t.Errorf("matchedKeywords mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got.Description, "Department of Energy") {
		t.Errorf("description %q does not mention the agency", got.Description)
	}
	if !strings.Contains(got.Description, "81.086") {
		t.Errorf("description %q does not mention the assistance listing", got.Description)
	}
	if !strings.Contains(got.URL, "12345") {
		t.Errorf("url %q does not reference the raw opportunity id", got.URL)
	}
}

func TestMapOpportunityPastDueIsCompletedHigh(t *testing.T) {
	opp := Opportunity{
		ID:         "777",
		Number:     "ED-GRANTS-0009",
		Title:      "Closed Opportunity",
		AgencyName: "Department of Education",
		CloseDate:  "01/15/2010",
	}

	got, err := MapOpportunity(opp, MapContext{}, mapperClock)
	if err != nil {
		t.Fatalf("MapOpportunity returned error: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("status: got %q, want %q", got.Status, domain.StatusCompleted)
	}
	if got.Priority != domain.PriorityHigh {
		t.Errorf("priority: got %q, want %q", got.Priority, domain.PriorityHigh)
	}
	if got.MatchedKeywords == nil || len(got.MatchedKeywords) != 0 {
		t.Errorf("matchedKeywords: got %#v, want empty non-nil slice", got.MatchedKeywords)
	}
}

func TestMapOpportunityDueTodayIsStillUpcoming(t *testing.T) {
	opp := Opportunity{
		ID:        "88",
		Number:    "TODAY-1",
		CloseDate: "03/01/2026",
	}

	got, err := MapOpportunity(opp, MapContext{}, mapperClock)
	if err != nil {
		t.Fatalf("MapOpportunity returned error: %v", err)
	}
	// Strictly-before comparison: due today is not yet past.
	if got.Status != domain.StatusUpcoming {
		t.Errorf("status: got %q, want %q", got.Status, domain.StatusUpcoming)
	}
}

func TestMapOpportunityBadCloseDateFailsLoudly(t *testing.T) {
	tests := []struct {
		name      string
		closeDate string
	}{
		{"missing", ""},
		{"garbage", "soon"},
		{"wrong format", "2030-09-30"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MapOpportunity(Opportunity{ID: "1", CloseDate: tc.closeDate}, MapContext{}, mapperClock)
			var mapErr *MappingError
			if !errors.As(err, &mapErr) {
				t.Fatalf("expected *MappingError, got %v", err)
			}
			if mapErr.Field != "closeDate" {
				t.Errorf("field: got %q, want %q", mapErr.Field, "closeDate")
			}
		})
	}
}

func TestBuildID(t *testing.T) {
	tests := []struct {
		name string
		opp  Opportunity
		want string
	}{
		{"prefers opportunity number", Opportunity{ID: "12345", Number: "DE-FOA-0001"}, "GRANTSGOV-DE-FOA-0001"},
		{"falls back to raw id", Opportunity{ID: "12345"}, "GRANTSGOV-12345"},
		{"degenerate empty input", Opportunity{}, "GRANTSGOV-"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildID(tc.opp); got != tc.want {
				t.Errorf("BuildID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseKeywordList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"mixed delimiters with stray whitespace",
			"digital equity| broadband adoption, device donation , ",
			[]string{"digital equity", "broadband adoption", "device donation"},
		},
		{"empty input", "", []string{}},
		{"whitespace only", "  ,  |  ", []string{}},
		{"duplicates collapse to first seen", "a|b,a", []string{"a", "b"}},
		{"case preserved and significant", "Equity|equity", []string{"Equity", "equity"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseKeywordList(tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseKeywordList(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}
