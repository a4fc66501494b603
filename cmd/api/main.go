package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donorops_backend/internal/activity"
	"donorops_backend/internal/config"
	"donorops_backend/internal/events"
	grantsclient "donorops_backend/internal/grants/client"
	"donorops_backend/internal/grants/ingest"
	apphttp "donorops_backend/internal/http"
	"donorops_backend/internal/http/router"
	"donorops_backend/internal/leads"
	"donorops_backend/internal/leads/scoring"
	"donorops_backend/internal/milestones"
	"donorops_backend/internal/storage"
	"donorops_backend/migrations"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/db"
	"donorops_backend/platform/logger"
	"donorops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(cfg.DatabaseURL, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	subscribeObservers(eventBus, log)
	clk := clock.System{}
	val := validator.New()

	weights, err := scoring.LoadWeights(cfg.ScoringWeightsPath)
	if err != nil {
		log.Error("failed to load scoring weights", "error", err)
		panic("failed to load scoring weights: " + err.Error())
	}

	var archiver storage.Archiver
	if cfg.ArchiveEnabled {
		minioArchiver, err := storage.NewMinIOArchiver(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize batch archiver", "error", err)
			panic("failed to initialize batch archiver: " + err.Error())
		}
		archiver = minioArchiver
		log.Info("batch archiver initialized", "bucket", cfg.ArchiveBucket)
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	activityModule := activity.NewModule(activity.New(activity.NewRepository(pool), log))
	recorder := activityModule.Service()

	milestonesModule := milestones.NewModule(pool, recorder, eventBus, clk, val, cfg, log)
	leadsModule := leads.NewModule(pool, weights, recorder, eventBus, clk, val, cfg, log)

	feedClient := grantsclient.New(cfg.GrantsFeedBaseURL, cfg.GrantsPageSize, cfg.GrantsFeedRPS, log)
	ingestSvc := ingest.New(feedClient, milestonesModule.Service(), archiver, recorder, eventBus, clk, log, cfg.GrantsKeywords)
	grantsModule := ingest.NewModule(ingestSvc)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			milestonesModule,
			leadsModule,
			grantsModule,
			activityModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// subscribeObservers attaches log observers for the domain events other
// consumers (dashboards, future integrations) would hook into here.
func subscribeObservers(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.MilestoneBatchIngested{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.MilestoneBatchIngested); ok {
			log.Info("milestone batch ingested", "run_id", ev.RunID, "fetched", ev.Fetched, "upserted", ev.Upserted, "skipped", ev.Skipped)
		}
		return nil
	}))
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.LeadStatusChanged); ok && ev.Closed {
			log.Info("lead closed", "lead_id", ev.LeadID, "status", ev.ToStatus)
		}
		return nil
	}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
