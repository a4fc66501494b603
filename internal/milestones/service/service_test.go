package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"donorops_backend/internal/milestones/domain"
	"donorops_backend/internal/milestones/repository"
	"donorops_backend/platform/apperr"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/events"
	"donorops_backend/platform/logger"

	"github.com/google/go-cmp/cmp"
)

var svcNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeRepo mirrors the repository's merge semantics in memory.
type fakeRepo struct {
	items map[string]domain.Milestone
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]domain.Milestone)}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (domain.Milestone, error) {
	m, ok := f.items[id]
	if !ok {
		return domain.Milestone{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]domain.Milestone, error) {
	out := make([]domain.Milestone, 0)
	for _, m := range f.items {
		if params.Status != "" && m.Status != params.Status {
			continue
		}
		if params.DueFrom != "" && m.DueDate < params.DueFrom {
			continue
		}
		if params.DueTo != "" && m.DueDate > params.DueTo {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRepo) UpsertMerge(_ context.Context, incoming domain.Milestone, now time.Time) (domain.Milestone, bool, error) {
	existing, ok := f.items[incoming.ID]
	if !ok {
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		incoming.Normalize()
		f.items[incoming.ID] = incoming
		return incoming, true, nil
	}
	merged := domain.Merge(existing, incoming, now)
	f.items[incoming.ID] = merged
	return merged, false, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.Status, now time.Time) (domain.Milestone, error) {
	m, ok := f.items[id]
	if !ok {
		return domain.Milestone{}, repository.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = now
	f.items[id] = m
	return m, nil
}

func (f *fakeRepo) AutoCloseExpired(_ context.Context, idPrefix string, before time.Time, now time.Time) (int, error) {
	closed := 0
	for id, m := range f.items {
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		if m.Status == domain.StatusCompleted || !m.DueBefore(before) {
			continue
		}
		m.Status = domain.StatusCompleted
		m.UpdatedAt = now
		f.items[id] = m
		closed++
	}
	return closed, nil
}

func (f *fakeRepo) StatusCounts(_ context.Context, day time.Time) (map[domain.Status]int, error) {
	counts := make(map[domain.Status]int)
	for _, m := range f.items {
		counts[m.EffectiveStatus(day)]++
	}
	return counts, nil
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
	return New(repo, rec, bus, clock.At(svcNow), log, 14), rec
}

func feedRecord(id string, keywords ...string) domain.Milestone {
	if keywords == nil {
		keywords = []string{}
	}
	return domain.Milestone{
		ID:              id,
		Title:           "Digital Equity Capacity Grant",
		Description:     "Department of Commerce | Assistance Listing 11.032",
		DueDate:         "2030-09-30",
		Status:          domain.StatusUpcoming,
		Priority:        domain.PriorityLow,
		MatchedKeywords: keywords,
		Source:          domain.SourceGrantsGov,
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	batch := []domain.Milestone{
		feedRecord("GRANTSGOV-DE-FOA-0001", "digital equity"),
		feedRecord("GRANTSGOV-DE-FOA-0002", "device donation"),
	}

	first := svc.Upsert(ctx, batch)
	if first.Inserted != 2 || first.Skipped != 0 {
		t.Fatalf("first upsert: %+v", first)
	}

	stateAfterOnce := map[string]domain.Milestone{}
	for id, m := range repo.items {
		stateAfterOnce[id] = m
	}

	second := svc.Upsert(ctx, batch)
	if second.Merged != 2 || second.Inserted != 0 {
		t.Fatalf("second upsert: %+v", second)
	}

	if diff := cmp.Diff(stateAfterOnce, repo.items); diff != "" {
		t.Errorf("store state changed on re-delivery (-once +twice):\n%s", diff)
	}
}

func TestUpsertOrderIndependentKeywordUnion(t *testing.T) {
	ctx := context.Background()
	a := feedRecord("GRANTSGOV-X", "digital equity")
	b := feedRecord("GRANTSGOV-X", "device donation")

	repoAB := newFakeRepo()
	svcAB, _ := newService(repoAB)
	svcAB.Upsert(ctx, []domain.Milestone{a})
	svcAB.Upsert(ctx, []domain.Milestone{b})

	repoBA := newFakeRepo()
	svcBA, _ := newService(repoBA)
	svcBA.Upsert(ctx, []domain.Milestone{b})
	svcBA.Upsert(ctx, []domain.Milestone{a})

	kwAB := append([]string(nil), repoAB.items["GRANTSGOV-X"].MatchedKeywords...)
	kwBA := append([]string(nil), repoBA.items["GRANTSGOV-X"].MatchedKeywords...)

	asSet := func(list []string) map[string]bool {
		set := make(map[string]bool, len(list))
		for _, kw := range list {
			set[kw] = true
		}
		return set
	}
	if diff := cmp.Diff(asSet(kwAB), asSet(kwBA)); diff != "" {
		t.Errorf("keyword union depends on delivery order (-ab +ba):\n%s", diff)
	}
}

func TestUpsertSkipsBadRecordsAndContinues(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)

	report := svc.Upsert(context.Background(), []domain.Milestone{
		{ID: "  "},
		feedRecord("GRANTSGOV-OK"),
	})

	if report.Skipped != 1 || report.Inserted != 1 {
		t.Fatalf("report: %+v", report)
	}
	if len(report.Reasons) != 1 {
		t.Fatalf("reasons: %v", report.Reasons)
	}
	if _, ok := repo.items["GRANTSGOV-OK"]; !ok {
		t.Error("good record was not stored")
	}
}

func TestAutoCloseHonorsPrefixScope(t *testing.T) {
	repo := newFakeRepo()
	svc, rec := newService(repo)
	ctx := context.Background()

	pastDue := feedRecord("GRANTSGOV-OLD")
	pastDue.DueDate = "2026-01-15"
	manual := feedRecord("MANUAL-abc")
	manual.DueDate = "2026-01-15"
	manual.Source = domain.SourceManual
	open := feedRecord("GRANTSGOV-OPEN")

	svc.Upsert(ctx, []domain.Milestone{pastDue, manual, open})

	closed, err := svc.AutoClose(ctx, "GRANTSGOV-")
	if err != nil {
		t.Fatalf("AutoClose returned error: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	if got := repo.items["GRANTSGOV-OLD"].Status; got != domain.StatusCompleted {
		t.Errorf("expired feed milestone: got %q, want Completed", got)
	}
	if got := repo.items["MANUAL-abc"].Status; got == domain.StatusCompleted {
		t.Error("manual milestone must never be auto-closed")
	}
	if got := repo.items["GRANTSGOV-OPEN"].Status; got != domain.StatusUpcoming {
		t.Errorf("open milestone changed: got %q", got)
	}

	// Second sweep is a no-op.
	closed, err = svc.AutoClose(ctx, "GRANTSGOV-")
	if err != nil {
		t.Fatalf("second AutoClose returned error: %v", err)
	}
	if closed != 0 {
		t.Errorf("second sweep closed %d records, want 0", closed)
	}
	if len(rec.messages) != 1 {
		t.Errorf("activity messages: %v, want exactly one", rec.messages)
	}
}

func TestUpdateStatusRejectsDisplayOnlyOverdue(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	svc.Upsert(context.Background(), []domain.Milestone{feedRecord("GRANTSGOV-1")})

	_, err := svc.UpdateStatus(context.Background(), "GRANTSGOV-1", domain.StatusOverdue)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusMissingMilestoneIsNotFound(t *testing.T) {
	svc, _ := newService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), "GRANTSGOV-GHOST", domain.StatusInProgress)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSummarizeCountsDerivedOverdue(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newService(repo)
	ctx := context.Background()

	past := feedRecord("GRANTSGOV-PAST")
	past.DueDate = "2026-02-01"
	soon := feedRecord("GRANTSGOV-SOON")
	soon.DueDate = "2026-03-10"
	far := feedRecord("GRANTSGOV-FAR")
	far.DueDate = "2030-09-30"

	svc.Upsert(ctx, []domain.Milestone{past, soon, far})

	summary, err := svc.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Counts[domain.StatusOverdue] != 1 {
		t.Errorf("overdue count: got %d, want 1", summary.Counts[domain.StatusOverdue])
	}
	if summary.Counts[domain.StatusUpcoming] != 2 {
		t.Errorf("upcoming count: got %d, want 2", summary.Counts[domain.StatusUpcoming])
	}
	if summary.DueSoon != 1 {
		t.Errorf("dueSoon: got %d, want 1", summary.DueSoon)
	}
}
