package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/Tom-Shanks/FireSight-AI/internal/adapters/nats"
	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/postgres"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
	"github.com/Tom-Shanks/FireSight-AI/internal/ingest"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/config"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("firesight-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, detections will not be published", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	client := &http.Client{Timeout: 60 * time.Second}
	feed := ingest.NewFeedClient(client, cfg.Ingest.FeedURL)
	repo := postgres.NewDetectionRepo(db)

	poller := ingest.NewPoller(
		feed,
		repo,
		eventPublisher(publisher),
		cfg.Ingest.IntervalMinutes,
		cfg.Ingest.RetentionDays,
		cfg.Ingest.SyntheticOnError,
	)
	if err := poller.Start(); err != nil {
		log.Fatalf("start poller: %v", err)
	}
	defer poller.Stop()

	slog.Info("ingestor running",
		"feed_url", cfg.Ingest.FeedURL,
		"interval_minutes", cfg.Ingest.IntervalMinutes,
		"retention_days", cfg.Ingest.RetentionDays,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("ingestor stopping")
}

// eventPublisher avoids handing a typed-nil pointer to an interface parameter.
func eventPublisher(p *natsadapter.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
