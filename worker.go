package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Worker exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ErrUsage is returned by ParseRange when the arguments do not describe a
// range
var ErrUsage = errors.New("usage: <start> <end>")

// ParseRange parses the two positional arguments a worker is started with
func ParseRange(args []string) (WorkRange, error) {
	if len(args) != 2 {
		return WorkRange{}, fmt.Errorf("%w: expected 2 arguments, got %d", ErrUsage, len(args))
	}
	start, err := strconv.Atoi(args[0])
	if err != nil {
		return WorkRange{}, fmt.Errorf("%w: start: %v", ErrUsage, err)
	}
	end, err := strconv.Atoi(args[1])
	if err != nil {
		return WorkRange{}, fmt.Errorf("%w: end: %v", ErrUsage, err)
	}
	r := WorkRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return WorkRange{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return r, nil
}

// RunWorker is the body of a worker process. It parses the range from args,
// runs the task over it and returns the exit code. Diagnostics go to stderr,
// which in a spawned worker is the same pipe as stdout.
func RunWorker(ctx context.Context, args []string, task Task, stdout, stderr io.Writer) int {
	r, err := ParseRange(args)
	if err != nil {
		fmt.Fprintf(stderr, "worker: %v\n", err)
		return ExitUsage
	}

	err = protect(func() error {
		return task(ctx, r, stdout, stderr)
	})
	if err != nil {
		fmt.Fprintf(stderr, "worker %s: %v\n", r, err)
		return ExitError
	}
	return ExitOK
}
