// Package activity provides the shared activity feed appended to by every
// lead and milestone mutation.
package activity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxEntries bounds the feed: only the most recent entries are retained,
// oldest evicted on insert.
const MaxEntries = 20

// Entry is one line in the activity feed.
type Entry struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists activity entries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts an entry and evicts everything beyond the retention bound in
// the same statement, so the feed can never grow past MaxEntries.
func (r *Repository) Append(ctx context.Context, category, message string) (Entry, error) {
	var entry Entry
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO activity_entries (category, message)
			VALUES ($1, $2)
			RETURNING id, category, message, created_at
		), evicted AS (
			-- The delete runs against the pre-insert snapshot, so keep one
			-- slot free for the row being inserted.
			DELETE FROM activity_entries
			WHERE id NOT IN (
				SELECT id FROM activity_entries
				ORDER BY created_at DESC, id DESC
				LIMIT $3 - 1
			)
		)
		SELECT id, category, message, created_at FROM inserted
	`, category, message, MaxEntries).Scan(
		&entry.ID,
		&entry.Category,
		&entry.Message,
		&entry.CreatedAt,
	)
	return entry, err
}

// List returns the retained entries, newest first.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, message, created_at
		FROM activity_entries
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, MaxEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Category, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
