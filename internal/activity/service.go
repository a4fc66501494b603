package activity

import (
	"context"

	"donorops_backend/platform/logger"
)

// Categories for activity entries. The feed UI groups on these.
const (
	CategoryLead      = "lead"
	CategoryMilestone = "milestone"
	CategoryIngest    = "ingest"
)

// Recorder is the write-side interface mutation services depend on.
type Recorder interface {
	Record(ctx context.Context, category, message string)
}

// Service records and lists activity entries. Recording failures are logged
// and swallowed: a feed entry must never fail the mutation it describes.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

// New creates a new activity service.
func New(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends an entry to the feed.
func (s *Service) Record(ctx context.Context, category, message string) {
	if _, err := s.repo.Append(ctx, category, message); err != nil {
		s.log.Error("activity append failed", "category", category, "error", err)
	}
}

// List returns the retained feed, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}
