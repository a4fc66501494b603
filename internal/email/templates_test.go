package email

import (
	"strings"
	"testing"
	"time"

	"donorops_backend/internal/leads/domain"
)

func TestRenderDigest(t *testing.T) {
	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	leads := []domain.Lead{
		{Organization: "Harbor Community College", FollowUpDate: "2026-03-07", Status: domain.StatusQualified, Priority: 92},
		{ContactName: "Jordan Reyes", FollowUpDate: "2026-03-12", Status: domain.StatusNew, Priority: 55},
	}

	html, err := renderDigest(leads, day)
	if err != nil {
		t.Fatalf("renderDigest returned error: %v", err)
	}

	for _, want := range []string{
		"Harbor Community College",
		"Jordan Reyes",
		"2026-03-07 (overdue)",
		"2026-03-12",
		"March 10, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if strings.Contains(html, "2026-03-12 (overdue)") {
		t.Error("future follow-up marked overdue")
	}
}
