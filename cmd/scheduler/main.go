package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"donorops_backend/internal/activity"
	"donorops_backend/internal/config"
	"donorops_backend/internal/email"
	"donorops_backend/internal/events"
	grantsclient "donorops_backend/internal/grants/client"
	"donorops_backend/internal/grants/ingest"
	"donorops_backend/internal/leads/repository"
	"donorops_backend/internal/leads/scoring"
	leadsvc "donorops_backend/internal/leads/service"
	msrepo "donorops_backend/internal/milestones/repository"
	mssvc "donorops_backend/internal/milestones/service"
	"donorops_backend/internal/scheduler"
	"donorops_backend/internal/storage"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/db"
	"donorops_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	clk := clock.System{}

	recorder := activity.New(activity.NewRepository(pool), log)

	milestoneSvc := mssvc.New(msrepo.New(pool), recorder, eventBus, clk, log, cfg.LeadUpcomingWindowDays)

	weights, err := scoring.LoadWeights(cfg.ScoringWeightsPath)
	if err != nil {
		log.Error("failed to load scoring weights", "error", err)
		panic("failed to load scoring weights: " + err.Error())
	}
	leadSvc := leadsvc.New(repository.New(pool), scoring.New(weights), recorder, eventBus, clk, log,
		cfg.LeadAlertWindowDays, cfg.LeadUpcomingWindowDays)

	var archiver storage.Archiver
	if cfg.ArchiveEnabled {
		minioArchiver, err := storage.NewMinIOArchiver(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize batch archiver", "error", err)
			panic("failed to initialize batch archiver: " + err.Error())
		}
		archiver = minioArchiver
	}

	feedClient := grantsclient.New(cfg.GrantsFeedBaseURL, cfg.GrantsPageSize, cfg.GrantsFeedRPS, log)
	ingestSvc := ingest.New(feedClient, milestoneSvc, archiver, recorder, eventBus, clk, log, cfg.GrantsKeywords)

	var sender email.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.EmailFromAddr, cfg.EmailFromName)
		log.Info("digest sender initialized", "recipient", cfg.DigestRecipient)
	}

	worker, err := scheduler.NewWorker(cfg, ingestSvc, milestoneSvc, leadSvc, sender, clk, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer client.Close()

	enqueuer := scheduler.NewEnqueuer(client, cfg, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		enqueuer.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	wg.Wait()
}
