package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultDrainGrace is how long a drain may keep reading after its worker
// exited
const DefaultDrainGrace = 2 * time.Second

// Orchestrator runs one worker process per range of a plan and forwards the
// output of all of them to a single sink
type Orchestrator struct {
	plan       Plan
	spawner    Spawner
	newPipe    PipeFactory
	output     io.Writer
	logger     *zap.Logger
	metrics    MetricsCollector
	drainGrace time.Duration
}

// WorkerResult is what the orchestrator observed about one spawned worker
type WorkerResult struct {
	RangeID int
	Range   WorkRange
	Pid     int

	// ExitCode is -1 if the worker was killed by a signal or its status
	// could not be collected
	ExitCode int

	// Err is set when the exit status could not be collected
	Err error

	BytesForwarded int64

	// DrainErr is a read or write error that ended the drain early
	DrainErr error

	// DrainForced is set when the pipe was still open after the drain grace
	// period and had to be closed
	DrainForced bool

	StartedAt time.Time
	ExitedAt  time.Time
}

// Report lists the workers of a run in plan order. Workers that were never
// launched are absent.
type Report struct {
	RunID   string
	Results []WorkerResult
}

// Failed returns the results of workers that exited with a non-zero code or
// whose exit status is unknown
func (r *Report) Failed() []WorkerResult {
	var failed []WorkerResult
	for _, res := range r.Results {
		if res.ExitCode != 0 || res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// New creates an orchestrator for the plan
func New(plan Plan, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		plan:       plan,
		newPipe:    OSPipe,
		output:     os.Stdout,
		logger:     zap.NewNop(),
		metrics:    NewNoopMetricsCollector(),
		drainGrace: DefaultDrainGrace,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// worker is the orchestrator's handle on one spawned process
type worker struct {
	result WorkerResult
	proc   Process

	out       io.ReadCloser
	closeOnce sync.Once
	closeErr  error

	drained  chan struct{}
	drainN   int64
	drainErr error
}

// release closes the read end of the worker's pipe. Safe to call repeatedly.
func (w *worker) release() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.out.Close()
	})
	return w.closeErr
}

// Run launches one worker per range, in plan order, then blocks until every
// launched worker has exited and its output has been forwarded. The plan
// must cover [1, N] without gaps or overlaps; otherwise nothing is launched.
//
// If a pipe cannot be created or a worker cannot be started, no further
// workers are launched and Run returns a *LaunchError once the workers
// already running have exited. Closing ctx has the same effect on launching;
// running workers are never signalled. Worker exit codes do not affect the
// returned error, they are found in the report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if err := o.plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID))

	spawner := o.spawner
	if spawner == nil {
		spawner = ExecSpawner{RunID: runID}
	}

	barrier := NewBarrier()
	workers := make([]*worker, 0, len(o.plan))

	var launchErr error
	for i, r := range o.plan {
		if err := ctx.Err(); err != nil {
			launchErr = &LaunchError{Stage: StageCanceled, RangeID: i, Range: r, Err: err}
			break
		}

		w, err := o.launch(ctx, spawner, i, r)
		if err != nil {
			launchErr = err
			break
		}
		logger.Debug("worker spawned",
			zap.Int("range_id", i),
			zap.Int("pid", w.result.Pid),
			zap.Int("start", r.Start),
			zap.Int("end", r.End))

		workers = append(workers, w)
		barrier.Go(fmt.Sprintf("worker %d", i), func() error {
			o.supervise(logger, w)
			return nil
		})
	}

	if launchErr != nil {
		var le *LaunchError
		if errors.As(launchErr, &le) {
			o.metrics.LaunchFailed(le.RangeID, le.Stage)
		}
		logger.Error("stopped launching workers",
			zap.Int("launched", len(workers)),
			zap.Error(launchErr))
	}

	barrierErr := barrier.Wait()

	var closeErr error
	for _, w := range workers {
		closeErr = multierr.Append(closeErr, w.release())
	}
	if closeErr != nil {
		logger.Warn("closing worker pipes", zap.Error(closeErr))
	}

	report := &Report{RunID: runID, Results: make([]WorkerResult, len(workers))}
	for i, w := range workers {
		report.Results[i] = w.result
	}

	logger.Info("all workers exited",
		zap.Int("workers", len(workers)),
		zap.Int("failed", len(report.Failed())))

	if launchErr != nil {
		return report, launchErr
	}
	return report, barrierErr
}

// launch creates the pipe, starts the worker and its drain
func (o *Orchestrator) launch(ctx context.Context, spawner Spawner, id int, r WorkRange) (*worker, error) {
	out, in, err := o.newPipe()
	if err != nil {
		return nil, &LaunchError{Stage: StagePipe, RangeID: id, Range: r, Err: err}
	}

	started := time.Now()
	proc, err := spawner.Spawn(ctx, id, r, in)
	// The child holds its own copy of the write end; ours must go so the
	// drain sees end-of-stream when the child exits
	_ = in.Close()
	if err != nil {
		_ = out.Close()
		return nil, &LaunchError{Stage: StageSpawn, RangeID: id, Range: r, Err: err}
	}
	o.metrics.WorkerSpawned(id)

	w := &worker{
		result: WorkerResult{
			RangeID:   id,
			Range:     r,
			Pid:       proc.Pid(),
			StartedAt: started,
		},
		proc:    proc,
		out:     out,
		drained: make(chan struct{}),
	}

	go func() {
		defer close(w.drained)
		w.drainN, w.drainErr = Drain(o.output, w.out)
	}()

	return w, nil
}

// supervise waits for the worker to exit, then for its drain
func (o *Orchestrator) supervise(logger *zap.Logger, w *worker) {
	logger = logger.With(zap.Int("range_id", w.result.RangeID), zap.Int("pid", w.result.Pid))

	code, err := w.proc.Wait()
	w.result.ExitedAt = time.Now()
	w.result.ExitCode = code
	w.result.Err = err

	timer := time.NewTimer(o.drainGrace)
	defer timer.Stop()
	select {
	case <-w.drained:
	case <-timer.C:
		w.result.DrainForced = true
		_ = w.release()
		<-w.drained
		o.metrics.DrainForced(w.result.RangeID)
		logger.Warn("worker output still open after exit, pipe closed",
			zap.Duration("grace", o.drainGrace))
	}

	w.result.BytesForwarded = w.drainN
	w.result.DrainErr = w.drainErr
	o.metrics.BytesForwarded(w.result.RangeID, w.drainN)
	o.metrics.WorkerExited(w.result.RangeID, code, w.result.ExitedAt.Sub(w.result.StartedAt))

	switch {
	case err != nil:
		logger.Error("collecting worker exit status", zap.Error(err))
	case code != 0:
		logger.Warn("worker exited with non-zero status", zap.Int("exit_code", code))
	default:
		logger.Debug("worker exited", zap.Int64("bytes", w.drainN))
	}
	if w.drainErr != nil {
		logger.Debug("worker output drain stopped early", zap.Error(w.drainErr))
	}
}
