// Package service implements lead lifecycle operations: creation with
// scoring, status transitions, follow-up tracking, and archiving.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donorops_backend/internal/activity"
	"donorops_backend/internal/events"
	"donorops_backend/internal/leads/domain"
	"donorops_backend/internal/leads/repository"
	"donorops_backend/internal/leads/scoring"
	"donorops_backend/platform/apperr"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"
	"donorops_backend/platform/phone"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, lead domain.Lead, now time.Time) (domain.Lead, error)
	GetByID(ctx context.Context, id int64) (domain.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, error)
	Update(ctx context.Context, lead domain.Lead, now time.Time) (domain.Lead, error)
	Delete(ctx context.Context, id int64) error
	DueForFollowUp(ctx context.Context, onOrBefore string) ([]domain.Lead, error)
	UpcomingFollowUps(ctx context.Context, from, to string) ([]domain.Lead, error)
}

// Service coordinates lead mutations and follow-up queries.
type Service struct {
	repo               Repository
	scorer             *scoring.Scorer
	recorder           activity.Recorder
	bus                events.Bus
	clk                clock.Clock
	log                *logger.Logger
	alertWindowDays    int
	upcomingWindowDays int
}

// New creates a new lead service. alertWindowDays drives follow-up alerts
// (due within N days, overdue included); upcomingWindowDays drives the wider
// dashboard listing. The two are separate settings on purpose.
func New(repo Repository, scorer *scoring.Scorer, recorder activity.Recorder, bus events.Bus, clk clock.Clock, log *logger.Logger, alertWindowDays, upcomingWindowDays int) *Service {
	return &Service{
		repo:               repo,
		scorer:             scorer,
		recorder:           recorder,
		bus:                bus,
		clk:                clk,
		log:                log,
		alertWindowDays:    alertWindowDays,
		upcomingWindowDays: upcomingWindowDays,
	}
}

// CreateParams is the input for a new lead.
type CreateParams struct {
	ContactName       string
	Organization      string
	Email             string
	Phone             string
	Source            string
	EquipmentType     string
	EstimatedQuantity int
	Timeline          string
	Notes             string
	FollowUpDate      string
}

// Create scores and stores a new lead. The initial status is always New and
// the priority comes from the scorer; negative quantities are clamped to
// zero rather than rejected.
func (s *Service) Create(ctx context.Context, params CreateParams) (domain.Lead, error) {
	if params.ContactName == "" && params.Organization == "" {
		return domain.Lead{}, apperr.Validation("contact name or organization is required")
	}
	if err := validFollowUpDate(params.FollowUpDate); err != nil {
		return domain.Lead{}, err
	}
	if params.EstimatedQuantity < 0 {
		s.log.Debug("clamping negative estimated quantity", "quantity", params.EstimatedQuantity)
		params.EstimatedQuantity = 0
	}

	lead := domain.Lead{
		ContactName:       params.ContactName,
		Organization:      params.Organization,
		Email:             params.Email,
		Phone:             phone.NormalizeE164(params.Phone),
		Source:            params.Source,
		EquipmentType:     params.EquipmentType,
		EstimatedQuantity: params.EstimatedQuantity,
		Timeline:          params.Timeline,
		Notes:             params.Notes,
		Status:            domain.StatusNew,
		FollowUpDate:      params.FollowUpDate,
	}
	lead.Priority = s.scorer.Score(lead)

	created, err := s.repo.Create(ctx, lead, s.clk.Now())
	if err != nil {
		s.log.DatabaseError("leads.create", err)
		return domain.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       created.ID,
		Organization: created.Organization,
		Priority:     created.Priority,
		Source:       created.Source,
	})
	s.recorder.Record(ctx, activity.CategoryLead,
		fmt.Sprintf("New lead %s scored %d", leadLabel(created), created.Priority))

	return created, nil
}

// Get fetches one lead.
func (s *Service) Get(ctx context.Context, id int64) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound(fmt.Sprintf("lead %d not found", id))
	}
	return lead, err
}

// List returns leads ordered by priority.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Lead, error) {
	return s.repo.List(ctx, params)
}

// UpdateParams carries a partial lead edit. Nil fields are left unchanged.
type UpdateParams struct {
	ContactName       *string
	Organization      *string
	Email             *string
	Phone             *string
	Source            *string
	EquipmentType     *string
	EstimatedQuantity *int
	Timeline          *string
	Notes             *string
	Priority          *int
	FollowUpDate      *string
}

// Update applies a partial edit. A manual priority is clamped to [0,100]
// and overrides the scored value until the next explicit rescore.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (domain.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	if params.ContactName != nil {
		lead.ContactName = *params.ContactName
	}
	if params.Organization != nil {
		lead.Organization = *params.Organization
	}
	if params.Email != nil {
		lead.Email = *params.Email
	}
	if params.Phone != nil {
		lead.Phone = phone.NormalizeE164(*params.Phone)
	}
	if params.Source != nil {
		lead.Source = *params.Source
	}
	if params.EquipmentType != nil {
		lead.EquipmentType = *params.EquipmentType
	}
	if params.EstimatedQuantity != nil {
		qty := *params.EstimatedQuantity
		if qty < 0 {
			s.log.Debug("clamping negative estimated quantity", "quantity", qty)
			qty = 0
		}
		lead.EstimatedQuantity = qty
	}
	if params.Timeline != nil {
		lead.Timeline = *params.Timeline
	}
	if params.Notes != nil {
		lead.Notes = *params.Notes
	}
	if params.Priority != nil {
		lead.Priority = scoring.ClampManual(*params.Priority)
	}
	if params.FollowUpDate != nil {
		if err := validFollowUpDate(*params.FollowUpDate); err != nil {
			return domain.Lead{}, err
		}
		lead.FollowUpDate = *params.FollowUpDate
	}

	return s.repo.Update(ctx, lead, s.clk.Now())
}

// UpdateStatus moves a lead to a new status. Any transition between
// enumerated statuses is allowed. Entering the Closed family stamps the
// timeline with the Closed marker, which drops the lead from follow-up
// queries; reopening resumes normal alerting.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Lead, error) {
	if !status.Valid() {
		return domain.Lead{}, apperr.Validation(fmt.Sprintf("invalid lead status %q", status))
	}

	lead, err := s.Get(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	from := lead.Status
	lead.Status = status
	if status.IsClosed() {
		lead.Timeline = domain.TimelineClosed
	}

	updated, err := s.repo.Update(ctx, lead, s.clk.Now())
	if err != nil {
		s.log.DatabaseError("leads.update_status", err)
		return domain.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     updated.ID,
		FromStatus: string(from),
		ToStatus:   string(status),
		Closed:     status.IsClosed(),
	})
	s.recorder.Record(ctx, activity.CategoryLead,
		fmt.Sprintf("Lead %s moved from %s to %s", leadLabel(updated), from, status))

	return updated, nil
}

// CompleteFollowUp marks the current follow-up done and sets the next date,
// which may be empty to stop the follow-up cycle.
func (s *Service) CompleteFollowUp(ctx context.Context, id int64, nextDate string) (domain.Lead, error) {
	if err := validFollowUpDate(nextDate); err != nil {
		return domain.Lead{}, err
	}

	lead, err := s.Get(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.FollowUpDate = nextDate
	updated, err := s.repo.Update(ctx, lead, s.clk.Now())
	if err != nil {
		return domain.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadFollowUpCompleted{BaseEvent: events.NewBaseEvent(), LeadID: updated.ID})
	s.recorder.Record(ctx, activity.CategoryLead,
		fmt.Sprintf("Follow-up completed for lead %s", leadLabel(updated)))

	return updated, nil
}

// Archive removes the lead from the active collection entirely.
func (s *Service) Archive(ctx context.Context, id int64) error {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(fmt.Sprintf("lead %d not found", id))
		}
		return err
	}

	s.recorder.Record(ctx, activity.CategoryLead,
		fmt.Sprintf("Lead %s archived", leadLabel(lead)))
	return nil
}

// DueForFollowUp returns open leads due for follow-up within the alert
// window, including already overdue ones.
func (s *Service) DueForFollowUp(ctx context.Context) ([]domain.Lead, error) {
	horizon := s.clk.Now().AddDate(0, 0, s.alertWindowDays)
	return s.repo.DueForFollowUp(ctx, horizon.Format(domain.DateLayout))
}

// UpcomingFollowUps returns open leads with a follow-up date inside the
// dashboard's upcoming window, today included.
func (s *Service) UpcomingFollowUps(ctx context.Context) ([]domain.Lead, error) {
	now := s.clk.Now()
	horizon := now.AddDate(0, 0, s.upcomingWindowDays)
	return s.repo.UpcomingFollowUps(ctx, now.Format(domain.DateLayout), horizon.Format(domain.DateLayout))
}

func validFollowUpDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid follow-up date %q, want YYYY-MM-DD", date))
	}
	return nil
}

func leadLabel(lead domain.Lead) string {
	switch {
	case lead.Organization != "" && lead.ContactName != "":
		return fmt.Sprintf("%s (%s)", lead.Organization, lead.ContactName)
	case lead.Organization != "":
		return lead.Organization
	default:
		return lead.ContactName
	}
}
