package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/skipvault/skipvault-go/internal/service"
)

// Metrics holds all Prometheus collectors for the skipvault backend.
var Metrics = struct {
	SubmissionsTotal *prometheus.CounterVec
	VotesTotal       *prometheus.CounterVec
	AutoModFlagged   prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skipvault_submissions_total",
			Help: "Total segments submitted, by category.",
		},
		[]string{"category"},
	)

	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skipvault_votes_total",
			Help: "Total votes processed, by outcome.",
		},
		[]string{"outcome"},
	)

	Metrics.AutoModFlagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skipvault_automod_flagged_total",
			Help: "Total segments flagged by the classifier gate.",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skipvault_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skipvault_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "skipvault_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "skipvault_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.SubmissionsTotal,
		Metrics.VotesTotal,
		Metrics.AutoModFlagged,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// EventMetricsSink wraps an event sink and counts moderation flags as they
// pass through.
type EventMetricsSink struct {
	next service.EventSink
}

func NewEventMetricsSink(next service.EventSink) *EventMetricsSink {
	return &EventMetricsSink{next: next}
}

func (s *EventMetricsSink) Emit(event string, payload any) {
	if event == "moderation.flagged" && Metrics.AutoModFlagged != nil {
		Metrics.AutoModFlagged.Inc()
	}
	if s.next != nil {
		s.next.Emit(event, payload)
	}
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	if len(path) > 14 && path[:14] == "/api/segments/" && path != "/api/segments/viewed" {
		return "/api/segments/:hashPrefix"
	}
	return path
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
