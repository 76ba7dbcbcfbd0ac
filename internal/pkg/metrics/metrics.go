package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
	}, []string{"method", "path"})

	// Simulation metrics
	SimulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "sim",
		Name:      "runs_total",
		Help:      "Total fire-spread simulations executed",
	}, []string{"outcome"})

	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "sim",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of fire-spread simulations",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	SimulationSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "sim",
		Name:      "steps",
		Help:      "Time steps executed per simulation run",
		Buckets:   []float64{1, 2, 6, 12, 24, 48, 96, 144},
	})

	SimulationBurnedCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "sim",
		Name:      "burned_cells",
		Help:      "Cells burned per simulation run",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// Ingestion metrics
	DetectionsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "ingest",
		Name:      "detections_total",
		Help:      "Total satellite fire detections ingested",
	}, []string{"source"})

	FeedPollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "ingest",
		Name:      "feed_poll_errors_total",
		Help:      "Total detection feed poll errors",
	}, []string{"source"})

	FeedPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firesight",
		Subsystem: "ingest",
		Name:      "feed_poll_duration_seconds",
		Help:      "Duration of detection feed polls",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source"})

	// Weather metrics
	WeatherFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "weather",
		Name:      "fallbacks_total",
		Help:      "Times synthetic weather was substituted for a failed provider fetch",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firesight",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firesight",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firesight",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firesight",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firesight",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveRun records the outcome metrics of one simulation run.
func ObserveRun(outcome string, elapsed time.Duration, steps, burnedCells int) {
	SimulationsTotal.WithLabelValues(outcome).Inc()
	SimulationDuration.Observe(elapsed.Seconds())
	SimulationSteps.Observe(float64(steps))
	SimulationBurnedCells.Observe(float64(burnedCells))
}

// UpdateDBPoolMetrics updates database pool gauges from pgx pool stats. The
// interface keeps pgxpool out of this package's imports.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
