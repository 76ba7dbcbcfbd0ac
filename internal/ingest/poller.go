package ingest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/metrics"
)

// Poller periodically fetches the detection feed and persists new rows.
type Poller struct {
	scheduler *gocron.Scheduler
	feed      *FeedClient
	repo      ports.DetectionRepository
	publisher ports.EventPublisher

	interval         time.Duration
	retentionDays    int
	syntheticOnError bool
	rng              *rand.Rand
}

// NewPoller creates a poller. Publisher may be nil.
func NewPoller(
	feed *FeedClient,
	repo ports.DetectionRepository,
	publisher ports.EventPublisher,
	intervalMinutes, retentionDays int,
	syntheticOnError bool,
) *Poller {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Poller{
		scheduler:        gocron.NewScheduler(time.UTC),
		feed:             feed,
		repo:             repo,
		publisher:        publisher,
		interval:         time.Duration(intervalMinutes) * time.Minute,
		retentionDays:    retentionDays,
		syntheticOnError: syntheticOnError,
		rng:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Start schedules the poll job and runs it once immediately.
func (p *Poller) Start() error {
	minutes := int(p.interval.Minutes())

	_, err := p.scheduler.Every(minutes).Minutes().StartImmediately().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		p.PollOnce(ctx)
	})
	if err != nil {
		return err
	}

	// Retention sweep once a day.
	_, err = p.scheduler.Every(1).Day().At("03:15").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cutoff := time.Now().UTC().AddDate(0, 0, -p.retentionDays)
		deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			slog.Error("retention sweep failed", "error", err)
			return
		}
		slog.Info("retention sweep done", "deleted", deleted, "cutoff", cutoff)
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// PollOnce runs one fetch-and-store cycle.
func (p *Poller) PollOnce(ctx context.Context) {
	start := time.Now()
	source := "firms"

	detections, err := p.feed.Fetch(ctx)
	if err != nil {
		metrics.FeedPollErrors.WithLabelValues(source).Inc()
		if !p.syntheticOnError {
			slog.Error("feed fetch failed", "error", err)
			return
		}
		slog.Warn("feed fetch failed, generating synthetic detections", "error", err)
		detections = Synthetic(p.rng, 25, time.Now().UTC())
		source = "synthetic"
	}
	metrics.FeedPollDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if len(detections) == 0 {
		slog.Info("feed poll returned no detections")
		return
	}

	inserted, err := p.repo.InsertBatch(ctx, detections)
	if err != nil {
		slog.Error("insert detections failed", "error", err)
		return
	}

	for i := range detections {
		metrics.DetectionsIngested.WithLabelValues(detections[i].Source).Inc()
	}

	if p.publisher != nil {
		for i := range detections {
			if err := p.publisher.PublishDetection(ctx, &detections[i]); err != nil {
				slog.Warn("publish detection failed", "error", err)
				break
			}
		}
	}

	slog.Info("feed poll done",
		"source", source,
		"fetched", len(detections),
		"inserted", inserted,
		"elapsed", time.Since(start).String(),
	)
}

// Stop stops the scheduler.
func (p *Poller) Stop() {
	p.scheduler.Stop()
}
