package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"donorops_backend/internal/config"
	"donorops_backend/internal/email"
	"donorops_backend/internal/grants/ingest"
	leadsvc "donorops_backend/internal/leads/service"
	mssvc "donorops_backend/internal/milestones/service"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"
)

// sweepLockTTL bounds how long a crashed ingestion or sweep can hold the
// milestone store lock.
const sweepLockTTL = 10 * time.Minute

// Worker consumes scheduler tasks.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	ingest     *ingest.Service
	milestones *mssvc.Service
	leads      *leadsvc.Service
	sender     email.Sender
	lock       *SweepLock
	clk        clock.Clock
	log        *logger.Logger
	recipient  string
}

// NewWorker builds the asynq server and wires every task handler.
func NewWorker(cfg *config.Config, ingestSvc *ingest.Service, milestones *mssvc.Service, leads *leadsvc.Service, sender email.Sender, clk clock.Clock, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.AsynqConcurrency
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	rdb := redis.NewClient(&redis.Options{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		ingest:     ingestSvc,
		milestones: milestones,
		leads:      leads,
		sender:     sender,
		lock:       NewSweepLock(rdb, SweepLockKey, sweepLockTTL),
		clk:        clk,
		log:        log,
		recipient:  cfg.DigestRecipient,
	}

	mux.HandleFunc(TaskGrantsIngest, w.handleGrantsIngest)
	mux.HandleFunc(TaskMilestonesAutoClose, w.handleMilestonesAutoClose)
	mux.HandleFunc(TaskFollowUpDigest, w.handleFollowUpDigest)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleGrantsIngest runs one feed ingestion under the sweep lock so it
// never interleaves with an auto-close sweep. Returning the error lets
// asynq retry a run that lost the lock race.
func (w *Worker) handleGrantsIngest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGrantsIngestPayload(task)
	if err != nil {
		return err
	}

	release, ok, err := w.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Info("ingest skipped, sweep lock held", "triggered_by", payload.TriggeredBy)
		return nil
	}
	defer release()

	report, err := w.ingest.Run(ctx)
	if err != nil {
		w.log.Error("ingest run failed", "triggered_by", payload.TriggeredBy, "error", err)
		return err
	}
	w.log.Info("ingest run finished", "run_id", report.RunID, "fetched", report.Fetched)
	return nil
}

func (w *Worker) handleMilestonesAutoClose(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMilestonesAutoClosePayload(task)
	if err != nil {
		return err
	}

	release, ok, err := w.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Info("auto-close skipped, sweep lock held")
		return nil
	}
	defer release()

	closed, err := w.milestones.AutoClose(ctx, payload.IDPrefix)
	if err != nil {
		return err
	}
	w.log.Info("auto-close sweep finished", "closed", closed, "id_prefix", payload.IDPrefix)
	return nil
}

func (w *Worker) handleFollowUpDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpDigestPayload(task)
	if err != nil {
		return err
	}

	recipient := payload.Recipient
	if recipient == "" {
		recipient = w.recipient
	}
	if w.sender == nil || recipient == "" {
		return nil
	}

	due, err := w.leads.DueForFollowUp(ctx)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	return w.sender.SendFollowUpDigest(ctx, recipient, due, w.clk.Now())
}
