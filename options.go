package fanout

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// Option configures the Orchestrator
type Option func(*Orchestrator)

// WithSpawner sets the Spawner used to start workers. The default re-runs
// the current executable through ExecSpawner.
func WithSpawner(spawner Spawner) Option {
	return func(o *Orchestrator) {
		o.spawner = spawner
	}
}

// WithPipeFactory sets how worker output pipes are created
func WithPipeFactory(factory PipeFactory) Option {
	return func(o *Orchestrator) {
		o.newPipe = factory
	}
}

// WithOutput sets the sink all drains forward to. Drains write to it
// concurrently without locking.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.output = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(mc MetricsCollector) Option {
	return func(o *Orchestrator) {
		o.metrics = mc
	}
}

// WithDrainGrace sets how long a drain may keep reading after its worker
// exited before the pipe is closed under it. Non-positive values keep the
// default.
func WithDrainGrace(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.drainGrace = d
		}
	}
}
