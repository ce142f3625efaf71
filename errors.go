package fanout

import "fmt"

// Stage identifies the step of launching a worker that failed
type Stage string

const (
	// StagePipe means the output pipe could not be created
	StagePipe Stage = "pipe"
	// StageSpawn means the worker process could not be started
	StageSpawn Stage = "spawn"
	// StageCanceled means the context closed before the worker was launched
	StageCanceled Stage = "canceled"
)

// LaunchError is returned by Run when a worker could not be launched. No
// further workers are launched after it; workers already running are
// waited for.
type LaunchError struct {
	Stage   Stage
	RangeID int
	Range   WorkRange
	Err     error
}

func (err *LaunchError) Error() string {
	return fmt.Sprintf("launch worker %d %s: %s: %v", err.RangeID, err.Range, err.Stage, err.Err)
}

// Unwrap returns the underlying error
func (err *LaunchError) Unwrap() error {
	return err.Err
}
