package repository

import (
	"context"
	"errors"
	"time"

	"donorops_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, contact_name, organization, email, phone, source, equipment_type,
	estimated_quantity, timeline, notes, priority, status, follow_up_date, created_at, updated_at`

// Repository persists leads in Postgres. Ids come from a bigserial, so they
// are monotonic per insert order.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a lead and returns it with the assigned id.
func (r *Repository) Create(ctx context.Context, lead domain.Lead, now time.Time) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (contact_name, organization, email, phone, source, equipment_type,
			estimated_quantity, timeline, notes, priority, status, follow_up_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::date, $13, $13)
		RETURNING `+leadColumns+`
	`, lead.ContactName, lead.Organization, lead.Email, lead.Phone, lead.Source, lead.EquipmentType,
		lead.EstimatedQuantity, lead.Timeline, lead.Notes, lead.Priority, string(lead.Status),
		lead.FollowUpDate, now)
	return scanLead(row)
}

// GetByID fetches one lead.
func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1
	`, id)
	return scanLead(row)
}

// ListParams filters List. Zero values mean "no filter".
type ListParams struct {
	Status domain.Status
	Source string
}

// List returns leads ordered by priority, highest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR source = $2)
		ORDER BY priority DESC, id ASC
	`, string(params.Status), params.Source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// Update replaces every mutable field of the lead.
func (r *Repository) Update(ctx context.Context, lead domain.Lead, now time.Time) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET contact_name = $2, organization = $3, email = $4, phone = $5, source = $6,
		    equipment_type = $7, estimated_quantity = $8, timeline = $9, notes = $10,
		    priority = $11, status = $12, follow_up_date = NULLIF($13, '')::date, updated_at = $14
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, lead.ID, lead.ContactName, lead.Organization, lead.Email, lead.Phone, lead.Source,
		lead.EquipmentType, lead.EstimatedQuantity, lead.Timeline, lead.Notes,
		lead.Priority, string(lead.Status), lead.FollowUpDate, now)
	return scanLead(row)
}

// Delete removes a lead entirely. Archiving is a hard delete, not a status.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DueForFollowUp returns open leads whose follow-up date is on or before the
// given day. Overdue leads are included; Closed-family leads never are.
func (r *Repository) DueForFollowUp(ctx context.Context, onOrBefore string) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE follow_up_date IS NOT NULL
		  AND follow_up_date <= $1::date
		  AND NOT (status = ANY($2))
		ORDER BY follow_up_date ASC, priority DESC
	`, onOrBefore, domain.ClosedStatuses())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// UpcomingFollowUps returns open leads whose follow-up date falls inside the
// inclusive [from, to] range.
func (r *Repository) UpcomingFollowUps(ctx context.Context, from, to string) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE follow_up_date IS NOT NULL
		  AND follow_up_date >= $1::date
		  AND follow_up_date <= $2::date
		  AND NOT (status = ANY($3))
		ORDER BY follow_up_date ASC, priority DESC
	`, from, to, domain.ClosedStatuses())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var (
		lead     domain.Lead
		status   string
		followUp *time.Time
	)
	err := row.Scan(&lead.ID, &lead.ContactName, &lead.Organization, &lead.Email, &lead.Phone,
		&lead.Source, &lead.EquipmentType, &lead.EstimatedQuantity, &lead.Timeline, &lead.Notes,
		&lead.Priority, &status, &followUp, &lead.CreatedAt, &lead.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Status = domain.Status(status)
	if followUp != nil {
		lead.FollowUpDate = followUp.Format(domain.DateLayout)
	}
	return lead, nil
}
