package fanout

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsCollector implements MetricsCollector using Prometheus
// metrics registered on a private registry
type PrometheusMetricsCollector struct {
	spawned        prometheus.Counter
	launchFailures *prometheus.CounterVec
	exits          *prometheus.CounterVec
	duration       prometheus.Histogram
	bytes          prometheus.Counter
	forcedDrains   prometheus.Counter

	registry *prometheus.Registry
}

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	if namespace == "" {
		namespace = "fanout"
	}

	pmc := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
	}

	pmc.spawned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workers_spawned_total",
			Help:      "Total number of worker processes started",
		},
	)

	pmc.launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_launch_failures_total",
			Help:      "Total number of workers that could not be launched",
		},
		[]string{"stage"},
	)

	// Exit codes are few and small; range IDs are not used as labels
	pmc.exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_exits_total",
			Help:      "Total number of worker exits by exit code",
		},
		[]string{"exit_code"},
	)

	pmc.duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_duration_seconds",
			Help:      "Wall time from worker start to observed exit",
			Buckets:   prometheus.DefBuckets,
		},
	)

	pmc.bytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drain_bytes_total",
			Help:      "Total number of worker output bytes forwarded",
		},
	)

	pmc.forcedDrains = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drain_forced_total",
			Help:      "Total number of drains closed after their worker exited",
		},
	)

	pmc.registry.MustRegister(
		pmc.spawned,
		pmc.launchFailures,
		pmc.exits,
		pmc.duration,
		pmc.bytes,
		pmc.forcedDrains,
	)

	return pmc
}

// Registry returns the registry holding the collector's metrics
func (pmc *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return pmc.registry
}

// WriteToTextfile writes the current metrics in the text exposition format,
// as read by the node exporter textfile collector
func (pmc *PrometheusMetricsCollector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, pmc.registry)
}

func (pmc *PrometheusMetricsCollector) WorkerSpawned(rangeID int) {
	pmc.spawned.Inc()
}

func (pmc *PrometheusMetricsCollector) LaunchFailed(rangeID int, stage Stage) {
	pmc.launchFailures.WithLabelValues(string(stage)).Inc()
}

func (pmc *PrometheusMetricsCollector) WorkerExited(rangeID int, exitCode int, duration time.Duration) {
	pmc.exits.WithLabelValues(strconv.Itoa(exitCode)).Inc()
	pmc.duration.Observe(duration.Seconds())
}

func (pmc *PrometheusMetricsCollector) BytesForwarded(rangeID int, n int64) {
	pmc.bytes.Add(float64(n))
}

func (pmc *PrometheusMetricsCollector) DrainForced(rangeID int) {
	pmc.forcedDrains.Inc()
}
