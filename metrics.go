package fanout

import (
	"time"
)

// MetricsCollector receives orchestration events
type MetricsCollector interface {
	// WorkerSpawned records a worker that was started
	WorkerSpawned(rangeID int)

	// LaunchFailed records a worker that could not be launched
	LaunchFailed(rangeID int, stage Stage)

	// WorkerExited records the exit of a worker and how long it ran
	WorkerExited(rangeID int, exitCode int, duration time.Duration)

	// BytesForwarded records the output a drain forwarded for a worker
	BytesForwarded(rangeID int, n int64)

	// DrainForced records a drain that was cut off after its worker exited
	DrainForced(rangeID int)
}

// noopMetricsCollector is a no-op implementation of MetricsCollector
type noopMetricsCollector struct{}

func (*noopMetricsCollector) WorkerSpawned(rangeID int)                                      {}
func (*noopMetricsCollector) LaunchFailed(rangeID int, stage Stage)                          {}
func (*noopMetricsCollector) WorkerExited(rangeID int, exitCode int, duration time.Duration) {}
func (*noopMetricsCollector) BytesForwarded(rangeID int, n int64)                            {}
func (*noopMetricsCollector) DrainForced(rangeID int)                                        {}

// NewNoopMetricsCollector creates a no-op metrics collector
func NewNoopMetricsCollector() MetricsCollector {
	return &noopMetricsCollector{}
}
