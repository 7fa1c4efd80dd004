package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ consume latency (ms)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Queries slower than the configured threshold",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// fallback: "true" when the requested template was missing
	PlanGenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_generation_total",
			Help: "Plans expanded from templates",
		},
		[]string{"template", "fallback"},
	)

	PlanItemsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_items_generated_total",
			Help: "Tasks and milestones created by plan generation",
		},
		[]string{"kind"}, // task, milestone
	)

	// source: explicit, inferred
	StageResolutionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_resolution_total",
			Help: "Project stage resolutions by resulting stage",
		},
		[]string{"stage", "source"},
	)

	// 0 closed, 1 open, 2 half-open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state",
		},
		[]string{"name"},
	)

	DuplicateEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_duplicate_event_total",
			Help: "Events skipped by the deduper",
		},
		[]string{"routing_key"},
	)
)

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

func RecordHTTPRequestDuration(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementPlanGeneration(template string, fellBack bool, tasks, milestones int) {
	PlanGenerationCount.WithLabelValues(template, strconv.FormatBool(fellBack)).Inc()
	PlanItemsGenerated.WithLabelValues("task").Add(float64(tasks))
	PlanItemsGenerated.WithLabelValues("milestone").Add(float64(milestones))
}

func IncrementStageResolution(stage string, explicit bool) {
	source := "inferred"
	if explicit {
		source = "explicit"
	}
	StageResolutionCount.WithLabelValues(stage, source).Inc()
}

func IncrementDuplicateEvent(routingKey string) {
	DuplicateEventCount.WithLabelValues(routingKey).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
