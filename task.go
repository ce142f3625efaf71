package fanout

import (
	"context"
	"io"
)

// A Task is the computation a worker process performs over its range.
//
// The task runs inside the child process. Everything it writes to stdout and
// stderr travels through the worker's pipe and is forwarded, unmodified, to
// the orchestrator's output. The orchestrator never interprets that text.
//
// A task returns nil when it has covered the whole range. Any error makes the
// worker exit with a non-zero status.
type Task func(ctx context.Context, r WorkRange, stdout, stderr io.Writer) error
