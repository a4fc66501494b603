package scheduler

import (
	"context"
	"time"

	"donorops_backend/internal/config"
	"donorops_backend/internal/grants"
	"donorops_backend/platform/logger"
)

// Enqueuer puts the recurring tasks on the queue at their configured
// intervals. Dedup and mutual exclusion happen on the worker side via the
// sweep lock.
type Enqueuer struct {
	client *Client
	cfg    *config.Config
	log    *logger.Logger
}

// NewEnqueuer creates the periodic enqueuer.
func NewEnqueuer(client *Client, cfg *config.Config, log *logger.Logger) *Enqueuer {
	return &Enqueuer{client: client, cfg: cfg, log: log}
}

// Run blocks until the context is cancelled.
func (e *Enqueuer) Run(ctx context.Context) {
	ingestTicker := time.NewTicker(e.cfg.IngestInterval)
	autoCloseTicker := time.NewTicker(e.cfg.AutoCloseInterval)
	digestTicker := time.NewTicker(e.cfg.DigestInterval)
	defer ingestTicker.Stop()
	defer autoCloseTicker.Stop()
	defer digestTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ingestTicker.C:
			err := e.client.EnqueueGrantsIngest(ctx, GrantsIngestPayload{TriggeredBy: "schedule"})
			e.logOutcome(TaskGrantsIngest, err)
		case <-autoCloseTicker.C:
			err := e.client.EnqueueMilestonesAutoClose(ctx, MilestonesAutoClosePayload{IDPrefix: grants.SourcePrefix})
			e.logOutcome(TaskMilestonesAutoClose, err)
		case <-digestTicker.C:
			err := e.client.EnqueueFollowUpDigest(ctx, FollowUpDigestPayload{Recipient: e.cfg.DigestRecipient})
			e.logOutcome(TaskFollowUpDigest, err)
		}
	}
}

func (e *Enqueuer) logOutcome(task string, err error) {
	if err != nil {
		e.log.Error("enqueue failed", "task", task, "error", err)
		return
	}
	e.log.Debug("task enqueued", "task", task)
}
