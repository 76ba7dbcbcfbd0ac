package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/http"
	natsadapter "github.com/Tom-Shanks/FireSight-AI/internal/adapters/nats"
	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/postgres"
	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/valkey"
	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/weather"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/config"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/logging"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/metrics"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("firesight-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Refresh pool gauges on an interval, pgxpool has no stats callback.
	metrics.UpdateDBPoolMetrics(db.Pool.Stat())
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Weather: real provider when an API key is configured, synthetic otherwise
	var provider weather.Provider
	if cfg.Weather.APIKey != "" {
		httpClient := &stdhttp.Client{Timeout: time.Duration(cfg.Weather.TimeoutSec) * time.Second}
		provider = weather.NewOpenWeatherProvider(httpClient, cfg.Weather.APIKey, cfg.Weather.BaseURL)
	}
	weatherSvc := weather.NewService(provider)

	// Repos
	detectionRepo := postgres.NewDetectionRepo(db)
	riskAreaRepo := postgres.NewRiskAreaRepo(db)

	// Use cases
	spreadSvc := usecases.NewSpreadService(weatherSvc, cacheOrNil(cache), publisherOrNil(publisher),
		cfg.Simulation.MaxGridCells, cfg.Simulation.CacheTTLSeconds)
	riskSvc := usecases.NewRiskService(weatherSvc, usecases.NewModelCache(), nil)
	damageSvc := usecases.NewDamageService(nil)
	detectionSvc := usecases.NewDetectionService(detectionRepo, riskAreaRepo, cacheOrNil(cache))

	deps := &http.Dependencies{
		Spread:     spreadSvc,
		Risk:       riskSvc,
		Damage:     damageSvc,
		Detections: detectionSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "FireSight API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// cacheOrNil avoids handing a typed-nil pointer to an interface field.
func cacheOrNil(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}

func publisherOrNil(p *natsadapter.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
