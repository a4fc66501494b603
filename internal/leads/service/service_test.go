package service

import (
	"context"
	"testing"
	"time"

	"donorops_backend/internal/leads/domain"
	"donorops_backend/internal/leads/repository"
	"donorops_backend/internal/leads/scoring"
	"donorops_backend/platform/apperr"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/events"
	"donorops_backend/platform/logger"
)

var leadNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeRepo keeps leads in memory and assigns ids the way a bigserial would.
type fakeRepo struct {
	leads  map[int64]domain.Lead
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[int64]domain.Lead), nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, lead domain.Lead, now time.Time) (domain.Lead, error) {
	lead.ID = f.nextID
	f.nextID++
	lead.CreatedAt = now
	lead.UpdatedAt = now
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if params.Status != "" && lead.Status != params.Status {
			continue
		}
		if params.Source != "" && lead.Source != params.Source {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, lead domain.Lead, now time.Time) (domain.Lead, error) {
	if _, ok := f.leads[lead.ID]; !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.UpdatedAt = now
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) DueForFollowUp(_ context.Context, onOrBefore string) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.FollowUpDate == "" || lead.Status.IsClosed() {
			continue
		}
		if lead.FollowUpDate <= onOrBefore {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpcomingFollowUps(_ context.Context, from, to string) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.FollowUpDate == "" || lead.Status.IsClosed() {
			continue
		}
		if lead.FollowUpDate >= from && lead.FollowUpDate <= to {
			out = append(out, lead)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	messages []string
}

func (f *fakeRecorder) Record(_ context.Context, _ string, message string) {
	f.messages = append(f.messages, message)
}

func newService(repo *fakeRepo) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	scorer := scoring.New(scoring.DefaultWeights())
	return New(repo, scorer, rec, bus, clock.At(leadNow), log, 2, 14), rec
}

func TestCreateScoresAndStampsNewStatus(t *testing.T) {
	repo := newFakeRepo()
	svc, rec := newService(repo)

	lead, err := svc.Create(context.Background(), CreateParams{
		ContactName:       "Jordan Reyes",
		Organization:      "Harbor Community College",
		Phone:             "(212) 555-0187",
		Source:            "Reddit (r/sysadmin)",
		EstimatedQuantity: 200,
		Timeline:          "Immediate",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if lead.ID != 1 {
		t.Errorf("id = %d, want 1", lead.ID)
	}
	if lead.Status != domain.StatusNew {
		t.Errorf("status = %q, want New", lead.Status)
	}
	if lead.Priority != 92 {
		t.Errorf("priority = %d, want 92", lead.Priority)
	}
	if lead.Phone != "+12125550187" {
		t.Errorf("phone = %q, want E.164", lead.Phone)
	}
	if len(rec.messages) != 1 {
		t.Errorf("activity messages = %v, want one entry", rec.messages)
	}
}

func TestCreateRequiresAName(t *testing.T) {
	svc, _ := newService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateParams{Source: "Website Form"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateClampsNegativeQuantity(t *testing.T) {
	svc, _ := newService(newFakeRepo())

	lead, err := svc.Create(context.Background(), CreateParams{
		Organization:      "Northside Shelter",
		EstimatedQuantity: -40,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if lead.EstimatedQuantity != 0 {
		t.Errorf("quantity = %d, want 0", lead.EstimatedQuantity)
	}
}

func TestClosingSetsTimelineMarkerAndStopsAlerts(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	lead, err := svc.Create(ctx, CreateParams{
		Organization: "Harbor Community College",
		Timeline:     "Immediate",
		FollowUpDate: "2026-03-11",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	due, err := svc.DueForFollowUp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("due before close = %d leads, want 1", len(due))
	}

	closed, err := svc.UpdateStatus(ctx, lead.ID, domain.StatusDonated)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if closed.Timeline != domain.TimelineClosed {
		t.Errorf("timeline = %q, want %q", closed.Timeline, domain.TimelineClosed)
	}

	due, err = svc.DueForFollowUp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("closed lead still alerts: %v", due)
	}

	// Reopening resumes alerting.
	if _, err := svc.UpdateStatus(ctx, lead.ID, domain.StatusNegotiating); err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	due, err = svc.DueForFollowUp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Errorf("reopened lead missing from alerts, got %d", len(due))
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), 1, domain.Status("Ghosted"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusMissingLeadIsNotFound(t *testing.T) {
	svc, _ := newService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), 99, domain.StatusQualified)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestFollowUpWindowsAreSeparate(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	dates := map[string]string{
		"overdue":       "2026-03-05",
		"alert edge":    "2026-03-12",
		"upcoming only": "2026-03-20",
		"beyond window": "2026-04-01",
	}
	for name, date := range dates {
		if _, err := svc.Create(ctx, CreateParams{Organization: name, FollowUpDate: date}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}

	due, err := svc.DueForFollowUp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// The 2-day alert window catches overdue and the inclusive edge.
	if len(due) != 2 {
		t.Errorf("due = %d leads, want 2", len(due))
	}

	upcoming, err := svc.UpcomingFollowUps(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// The 14-day dashboard window starts today, so the overdue lead is not
	// in it, and 2026-04-01 is past the horizon.
	if len(upcoming) != 2 {
		t.Errorf("upcoming = %d leads, want 2", len(upcoming))
	}
}

func TestCompleteFollowUpAdvancesDate(t *testing.T) {
	repo := newFakeRepo()
	svc, rec := newService(repo)
	ctx := context.Background()

	lead, err := svc.Create(ctx, CreateParams{Organization: "Northside Shelter", FollowUpDate: "2026-03-11"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.CompleteFollowUp(ctx, lead.ID, "2026-03-25")
	if err != nil {
		t.Fatalf("CompleteFollowUp returned error: %v", err)
	}
	if updated.FollowUpDate != "2026-03-25" {
		t.Errorf("followUpDate = %q, want 2026-03-25", updated.FollowUpDate)
	}
	if len(rec.messages) != 2 {
		t.Errorf("activity messages = %v, want create + completion", rec.messages)
	}
}

func TestManualPriorityEditIsClamped(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	lead, err := svc.Create(ctx, CreateParams{Organization: "Northside Shelter"})
	if err != nil {
		t.Fatal(err)
	}

	priority := 180
	updated, err := svc.Update(ctx, lead.ID, UpdateParams{Priority: &priority})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Priority != 100 {
		t.Errorf("priority = %d, want 100", updated.Priority)
	}

	priority = -10
	updated, err = svc.Update(ctx, lead.ID, UpdateParams{Priority: &priority})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Priority != 0 {
		t.Errorf("priority = %d, want 0", updated.Priority)
	}
}

func TestArchiveIsAHardDelete(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	lead, err := svc.Create(ctx, CreateParams{Organization: "Harbor Community College"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Archive(ctx, lead.ID); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if _, err := svc.Get(ctx, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after archive, got %v", err)
	}
	if err := svc.Archive(ctx, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second archive should be not found, got %v", err)
	}
}
