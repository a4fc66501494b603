package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"donorops_backend/internal/milestones/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("milestone not found")

const milestoneColumns = `id, title, description, due_date, status, priority, matched_keywords, url, source, created_at, updated_at`

// Repository persists milestones in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new milestone repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches one milestone.
func (r *Repository) GetByID(ctx context.Context, id string) (domain.Milestone, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones
		WHERE id = $1
	`, id)
	return scanMilestone(row)
}

// ListParams filters List. Zero values mean "no filter".
type ListParams struct {
	Status  domain.Status
	DueFrom string
	DueTo   string
}

// List returns milestones ordered by due date, optionally filtered by
// persisted status and due-date range (inclusive bounds).
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR due_date >= $2::date)
		  AND ($3 = '' OR due_date <= $3::date)
		ORDER BY due_date ASC, id ASC
	`, string(params.Status), params.DueFrom, params.DueTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Milestone, 0)
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}

	return items, rows.Err()
}

// UpsertMerge inserts the incoming record or merges it into the existing row
// with the same id. The row is locked for the duration of the read-merge-write
// so concurrent batches touching the same id cannot lose updates. Returns the
// stored milestone and whether it was a fresh insert.
func (r *Repository) UpsertMerge(ctx context.Context, incoming domain.Milestone, now time.Time) (domain.Milestone, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Milestone{}, false, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones
		WHERE id = $1
		FOR UPDATE
	`, incoming.ID)

	existing, err := scanMilestone(row)
	inserted := false
	var stored domain.Milestone

	switch {
	case errors.Is(err, ErrNotFound):
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		incoming.Normalize()
		if err := insertMilestone(ctx, tx, incoming); err != nil {
			return domain.Milestone{}, false, err
		}
		stored, inserted = incoming, true
	case err != nil:
		return domain.Milestone{}, false, err
	default:
		stored = domain.Merge(existing, incoming, now)
		if err := updateMilestone(ctx, tx, stored); err != nil {
			return domain.Milestone{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Milestone{}, false, err
	}
	return stored, inserted, nil
}

// UpdateStatus sets the persisted status of a milestone (manual advancement).
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status, now time.Time) (domain.Milestone, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE milestones
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+milestoneColumns+`
	`, id, string(status), now)
	return scanMilestone(row)
}

// AutoCloseExpired marks feed-sourced milestones Completed when their due
// date is strictly before the given day. Only ids with the prefix are
// touched; the single UPDATE makes the sweep idempotent and order-independent.
func (r *Repository) AutoCloseExpired(ctx context.Context, idPrefix string, before time.Time, now time.Time) (int, error) {
	day := before.Format(domain.DateLayout)
	tag, err := r.pool.Exec(ctx, `
		UPDATE milestones
		SET status = $3, updated_at = $4
		WHERE id LIKE $1 || '%'
		  AND due_date < $2::date
		  AND status <> $3
	`, idPrefix, day, string(domain.StatusCompleted), now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// StatusCounts aggregates persisted status counts plus the computed Overdue
// view (open records already past due on the given day).
func (r *Repository) StatusCounts(ctx context.Context, day time.Time) (map[domain.Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			CASE
				WHEN status <> $2 AND due_date < $1::date THEN $3
				ELSE status
			END AS bucket,
			COUNT(*)
		FROM milestones
		GROUP BY bucket
	`, day.Format(domain.DateLayout), string(domain.StatusCompleted), string(domain.StatusOverdue))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var bucket string
		var n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		counts[domain.Status(bucket)] = n
	}

	return counts, rows.Err()
}

func insertMilestone(ctx context.Context, tx pgx.Tx, m domain.Milestone) error {
	keywords, err := json.Marshal(m.MatchedKeywords)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO milestones (id, title, description, due_date, status, priority, matched_keywords, url, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11)
	`, m.ID, m.Title, m.Description, m.DueDate, string(m.Status), string(m.Priority), keywords, m.URL, m.Source, m.CreatedAt, m.UpdatedAt)
	return err
}

func updateMilestone(ctx context.Context, tx pgx.Tx, m domain.Milestone) error {
	keywords, err := json.Marshal(m.MatchedKeywords)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE milestones
		SET title = $2, description = $3, due_date = $4::date, status = $5, priority = $6,
		    matched_keywords = $7, url = $8, source = $9, updated_at = $10
		WHERE id = $1
	`, m.ID, m.Title, m.Description, m.DueDate, string(m.Status), string(m.Priority), keywords, m.URL, m.Source, m.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMilestone(row rowScanner) (domain.Milestone, error) {
	var (
		m           domain.Milestone
		status      string
		priority    string
		dueDate     time.Time
		keywordsRaw []byte
	)
	err := row.Scan(&m.ID, &m.Title, &m.Description, &dueDate, &status, &priority, &keywordsRaw, &m.URL, &m.Source, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Milestone{}, ErrNotFound
	}
	if err != nil {
		return domain.Milestone{}, err
	}

	m.Status = domain.Status(status)
	m.Priority = domain.Priority(priority)
	m.DueDate = dueDate.Format(domain.DateLayout)
	if err := json.Unmarshal(keywordsRaw, &m.MatchedKeywords); err != nil {
		return domain.Milestone{}, err
	}
	m.Normalize()
	return m, nil
}
