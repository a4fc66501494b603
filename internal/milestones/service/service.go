// Package service implements milestone store operations: batch upsert,
// auto-close sweeps, manual edits, and dashboard queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"donorops_backend/internal/activity"
	"donorops_backend/internal/events"
	"donorops_backend/internal/milestones/domain"
	"donorops_backend/internal/milestones/repository"
	"donorops_backend/platform/apperr"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"

	"github.com/google/uuid"
)

// manualIDPrefix tags operator-entered milestones. It never matches the feed
// prefix, which keeps manual records out of auto-close sweeps.
const manualIDPrefix = "MANUAL-"

// Repository is the consumer-driven data access interface for this service.
type Repository interface {
	GetByID(ctx context.Context, id string) (domain.Milestone, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Milestone, error)
	UpsertMerge(ctx context.Context, incoming domain.Milestone, now time.Time) (domain.Milestone, bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, now time.Time) (domain.Milestone, error)
	AutoCloseExpired(ctx context.Context, idPrefix string, before time.Time, now time.Time) (int, error)
	StatusCounts(ctx context.Context, day time.Time) (map[domain.Status]int, error)
}

// UpsertReport summarizes one batch upsert. One bad record never aborts the
// batch; it lands in Skipped with a reason.
type UpsertReport struct {
	Inserted int      `json:"inserted"`
	Merged   int      `json:"merged"`
	Skipped  int      `json:"skipped"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Service coordinates milestone mutations and queries.
type Service struct {
	repo           Repository
	recorder       activity.Recorder
	bus            events.Bus
	clk            clock.Clock
	log            *logger.Logger
	upcomingWindow int
}

// New creates a new milestone service. upcomingWindowDays is the dashboard
// "due soon" horizon, distinct from the lead alert window.
func New(repo Repository, recorder activity.Recorder, bus events.Bus, clk clock.Clock, log *logger.Logger, upcomingWindowDays int) *Service {
	return &Service{
		repo:           repo,
		recorder:       recorder,
		bus:            bus,
		clk:            clk,
		log:            log,
		upcomingWindow: upcomingWindowDays,
	}
}

// Upsert merges a mapped batch into the store, one record at a time. Each
// record's read-merge-write is atomic in the repository, so re-delivered or
// out-of-order batches converge to the same state.
func (s *Service) Upsert(ctx context.Context, batch []domain.Milestone) UpsertReport {
	now := s.clk.Now()
	var report UpsertReport

	for _, m := range batch {
		if strings.TrimSpace(m.ID) == "" {
			report.Skipped++
			report.Reasons = append(report.Reasons, "record without id")
			continue
		}

		_, inserted, err := s.repo.UpsertMerge(ctx, m, now)
		if err != nil {
			report.Skipped++
			report.Reasons = append(report.Reasons, fmt.Sprintf("%s: %v", m.ID, err))
			s.log.Error("milestone upsert failed", "id", m.ID, "error", err)
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Merged++
		}
	}

	return report
}

// AutoClose completes feed-sourced milestones whose due date has passed.
// Manual milestones are out of scope by id prefix. Returns the number of
// records changed; running the sweep twice changes nothing the second time.
func (s *Service) AutoClose(ctx context.Context, idPrefix string) (int, error) {
	now := s.clk.Now()
	closed, err := s.repo.AutoCloseExpired(ctx, idPrefix, now, now)
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		s.recorder.Record(ctx, activity.CategoryMilestone, fmt.Sprintf("Auto-closed %d expired milestone(s)", closed))
		s.bus.Publish(ctx, events.MilestonesAutoClosed{
			BaseEvent: events.NewBaseEvent(),
			Closed:    closed,
			IDPrefix:  idPrefix,
		})
	}

	return closed, nil
}

// CreateManualParams describes an operator-entered milestone.
type CreateManualParams struct {
	Title       string
	Description string
	DueDate     string
	Status      domain.Status
	Priority    domain.Priority
	URL         string
}

// CreateManual inserts an operator-entered milestone.
func (s *Service) CreateManual(ctx context.Context, params CreateManualParams) (domain.Milestone, error) {
	if strings.TrimSpace(params.Title) == "" {
		return domain.Milestone{}, apperr.Validation("title is required")
	}
	if _, err := time.Parse(domain.DateLayout, params.DueDate); err != nil {
		return domain.Milestone{}, apperr.Validation("dueDate must be a calendar date (YYYY-MM-DD)")
	}

	status := params.Status
	if status == "" {
		status = domain.StatusPlanned
	}
	if !domain.Valid(status) {
		return domain.Milestone{}, apperr.Validation("invalid milestone status")
	}

	priority := params.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	m := domain.Milestone{
		ID:              manualIDPrefix + uuid.NewString(),
		Title:           strings.TrimSpace(params.Title),
		Description:     params.Description,
		DueDate:         params.DueDate,
		Status:          status,
		Priority:        priority,
		URL:             params.URL,
		Source:          domain.SourceManual,
		MatchedKeywords: []string{},
	}

	stored, _, err := s.repo.UpsertMerge(ctx, m, s.clk.Now())
	if err != nil {
		return domain.Milestone{}, err
	}

	s.recorder.Record(ctx, activity.CategoryMilestone, fmt.Sprintf("Milestone created: %s", stored.Title))
	return stored, nil
}

// UpdateStatus advances a milestone manually. Overdue is display-only and is
// rejected here.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Milestone, error) {
	if !domain.Valid(status) {
		return domain.Milestone{}, apperr.Validation("invalid milestone status")
	}

	m, err := s.repo.UpdateStatus(ctx, id, status, s.clk.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Milestone{}, apperr.NotFound("milestone not found")
	}
	if err != nil {
		return domain.Milestone{}, err
	}

	s.recorder.Record(ctx, activity.CategoryMilestone, fmt.Sprintf("Milestone %s moved to %s", m.Title, status))
	return m, nil
}

// Get fetches one milestone.
func (s *Service) Get(ctx context.Context, id string) (domain.Milestone, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Milestone{}, apperr.NotFound("milestone not found")
	}
	return m, err
}

// List returns milestones filtered by persisted status and due-date range.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Milestone, error) {
	if params.Status != "" && !domain.Valid(params.Status) {
		return nil, apperr.Validation("invalid milestone status filter")
	}
	return s.repo.List(ctx, params)
}

// Summary is the dashboard roll-up of the milestone store.
type Summary struct {
	Counts  map[domain.Status]int `json:"counts"`
	DueSoon int                   `json:"dueSoon"`
}

// Summarize computes status counts (including the derived Overdue bucket)
// and how many open milestones fall due inside the upcoming window.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	now := s.clk.Now()

	counts, err := s.repo.StatusCounts(ctx, now)
	if err != nil {
		return Summary{}, err
	}

	horizon := now.AddDate(0, 0, s.upcomingWindow)
	upcoming, err := s.repo.List(ctx, repository.ListParams{
		DueFrom: now.Format(domain.DateLayout),
		DueTo:   horizon.Format(domain.DateLayout),
	})
	if err != nil {
		return Summary{}, err
	}

	dueSoon := 0
	for _, m := range upcoming {
		if m.Status != domain.StatusCompleted {
			dueSoon++
		}
	}

	return Summary{Counts: counts, DueSoon: dueSoon}, nil
}
