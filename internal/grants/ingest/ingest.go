// Package ingest runs the grants.gov feed pipeline: fetch every configured
// keyword, map the records to milestones, and merge them into the store.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"donorops_backend/internal/activity"
	"donorops_backend/internal/events"
	"donorops_backend/internal/grants"
	"donorops_backend/internal/milestones/domain"
	"donorops_backend/internal/milestones/service"
	"donorops_backend/internal/storage"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"
)

// maxConcurrentSearches bounds parallel feed queries; the client also rate
// limits per request, so this only caps in-flight connections.
const maxConcurrentSearches = 4

// Fetcher retrieves all opportunities matching one search keyword.
type Fetcher interface {
	Search(ctx context.Context, keyword string) ([]grants.Opportunity, error)
}

// Upserter merges mapped milestones into the store.
type Upserter interface {
	Upsert(ctx context.Context, batch []domain.Milestone) service.UpsertReport
}

// Report summarizes one ingestion run.
type Report struct {
	RunID    string   `json:"runId"`
	Fetched  int      `json:"fetched"`
	Inserted int      `json:"inserted"`
	Merged   int      `json:"merged"`
	Skipped  int      `json:"skipped"`
	Reasons  []string `json:"reasons,omitempty"`
	Archive  string   `json:"archive,omitempty"`
}

// Service orchestrates one feed run end to end.
type Service struct {
	fetcher    Fetcher
	milestones Upserter
	archiver   storage.Archiver
	recorder   activity.Recorder
	bus        events.Bus
	clk        clock.Clock
	log        *logger.Logger
	keywords   []string
}

// New creates the ingestion service. archiver may be nil when batch archival
// is disabled.
func New(fetcher Fetcher, milestones Upserter, archiver storage.Archiver, recorder activity.Recorder, bus events.Bus, clk clock.Clock, log *logger.Logger, keywords []string) *Service {
	return &Service{
		fetcher:    fetcher,
		milestones: milestones,
		archiver:   archiver,
		recorder:   recorder,
		bus:        bus,
		clk:        clk,
		log:        log,
		keywords:   keywords,
	}
}

type keywordBatch struct {
	Keyword       string               `json:"keyword"`
	Opportunities []grants.Opportunity `json:"opportunities"`
}

// Run executes one ingestion: concurrent keyword searches, mapping with
// per-record skips, and a merge upsert. A record matched by several keywords
// is upserted once per keyword; the store's merge unions the keyword sets.
func (s *Service) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	startedAt := s.clk.Now()

	batches := make([]keywordBatch, len(s.keywords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)
	for i, keyword := range s.keywords {
		i, keyword := i, keyword
		g.Go(func() error {
			opps, err := s.fetcher.Search(gctx, keyword)
			if err != nil {
				return fmt.Errorf("search %q: %w", keyword, err)
			}
			batches[i] = keywordBatch{Keyword: keyword, Opportunities: opps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{RunID: runID}, err
	}

	report := Report{RunID: runID}
	var mapped []domain.Milestone
	for _, batch := range batches {
		report.Fetched += len(batch.Opportunities)
		for _, opp := range batch.Opportunities {
			m, err := grants.MapOpportunity(opp, grants.MapContext{Keyword: batch.Keyword}, s.clk)
			if err != nil {
				report.Skipped++
				report.Reasons = append(report.Reasons, err.Error())
				continue
			}
			mapped = append(mapped, m)
		}
	}

	upsert := s.milestones.Upsert(ctx, mapped)
	report.Inserted = upsert.Inserted
	report.Merged = upsert.Merged
	report.Skipped += upsert.Skipped
	report.Reasons = append(report.Reasons, upsert.Reasons...)

	if s.archiver != nil {
		key, err := s.archiver.ArchiveBatch(ctx, runID, startedAt, batches)
		if err != nil {
			// Archival is best effort; the merge already happened.
			s.log.Error("batch archival failed", "run_id", runID, "error", err)
		} else {
			report.Archive = key
		}
	}

	s.log.IngestRun(runID, report.Fetched, report.Inserted+report.Merged, report.Skipped)
	s.bus.Publish(ctx, events.MilestoneBatchIngested{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		Fetched:   report.Fetched,
		Upserted:  report.Inserted + report.Merged,
		Skipped:   report.Skipped,
	})
	s.recorder.Record(ctx, activity.CategoryIngest,
		fmt.Sprintf("Feed run %s: %d fetched, %d new, %d merged, %d skipped",
			shortRunID(runID), report.Fetched, report.Inserted, report.Merged, report.Skipped))

	return report, nil
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
