// Command snapshot exports the milestone and lead collections to a JSON
// document, or verifies that an existing document still decodes cleanly.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donorops_backend/internal/config"
	leadrepo "donorops_backend/internal/leads/repository"
	msrepo "donorops_backend/internal/milestones/repository"
	"donorops_backend/internal/snapshot"
	"donorops_backend/platform/db"
	"donorops_backend/platform/logger"
)

func main() {
	out := flag.String("out", "", "write a snapshot of both collections to this path")
	verify := flag.String("verify", "", "read an existing snapshot and report its contents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *out != "":
		export(ctx, cfg, log, *out)
	case *verify != "":
		report(log, *verify)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func export(ctx context.Context, cfg *config.Config, log *logger.Logger, path string) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	exporter := snapshot.NewExporter(msrepo.New(pool), leadrepo.New(pool), func() time.Time {
		return time.Now().UTC()
	})

	snap, err := exporter.Export(ctx, path)
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
	log.Info("snapshot written", "path", path,
		"milestones", len(snap.Milestones), "leads", len(snap.Leads))
}

func report(log *logger.Logger, path string) {
	snap, err := snapshot.Read(path)
	if err != nil {
		log.Error("snapshot unreadable", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("snapshot ok", "path", path, "exported_at", snap.ExportedAt,
		"milestones", len(snap.Milestones), "leads", len(snap.Leads))
}
