package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables set on every worker started by ExecSpawner
const (
	EnvRunID   = "FANOUT_RUN_ID"
	EnvRangeID = "FANOUT_RANGE_ID"
)

// Process is a spawned worker. The orchestrator may only wait for it.
type Process interface {
	// Pid returns the operating system process ID
	Pid() int

	// Wait blocks until the process exits and returns its exit code. A
	// non-zero exit code is not an error; err is set only when the exit
	// status could not be collected.
	Wait() (exitCode int, err error)
}

// Spawner starts one worker process for a range, connecting both its stdout
// and stderr to output. The spawner must not close or retain output: the
// orchestrator closes its copy as soon as Spawn returns.
type Spawner interface {
	Spawn(ctx context.Context, rangeID int, r WorkRange, output *os.File) (Process, error)
}

// PipeFactory creates the channel carrying one worker's output. The write end
// is handed to the child; the read end stays with the orchestrator.
type PipeFactory func() (io.ReadCloser, *os.File, error)

// OSPipe is the default PipeFactory. Both ends are opened close-on-exec, so
// only the write end, installed as the child's stdout and stderr, is
// inherited by the worker.
func OSPipe() (io.ReadCloser, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	return r, w, nil
}

// ExecSpawner starts workers by running an executable, by default the
// current one, with the range bounds as the last two arguments
type ExecSpawner struct {
	// Path of the executable. Empty means os.Executable().
	Path string

	// Args are placed before the range bounds
	Args []string

	// Env is appended to the orchestrator's environment
	Env []string

	// Dir is the working directory. Empty means the orchestrator's.
	Dir string

	// RunID is exported to workers as FANOUT_RUN_ID when set
	RunID string
}

// Spawn implements Spawner
func (s ExecSpawner) Spawn(ctx context.Context, rangeID int, r WorkRange, output *os.File) (Process, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		path = exe
	}

	args := make([]string, 0, len(s.Args)+2)
	args = append(args, s.Args...)
	args = append(args, strconv.Itoa(r.Start), strconv.Itoa(r.End))

	// Workers are never cancelled: ctx is not bound to the command
	cmd := exec.Command(path, args...)
	cmd.Dir = s.Dir
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Env = append(cmd.Env, EnvRangeID+"="+strconv.Itoa(rangeID))
	if s.RunID != "" {
		cmd.Env = append(cmd.Env, EnvRunID+"="+s.RunID)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when the process was terminated by a signal
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
