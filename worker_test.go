package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want WorkRange
		ok   bool
	}{
		{"range", []string{"1", "1000"}, WorkRange{1, 1000}, true},
		{"single element", []string{"2", "2"}, WorkRange{2, 2}, true},
		{"negative", []string{"-5", "5"}, WorkRange{-5, 5}, true},
		{"no args", nil, WorkRange{}, false},
		{"one arg", []string{"1"}, WorkRange{}, false},
		{"three args", []string{"1", "2", "3"}, WorkRange{}, false},
		{"non-integer start", []string{"one", "2"}, WorkRange{}, false},
		{"non-integer end", []string{"1", "2.5"}, WorkRange{}, false},
		{"inverted", []string{"10", "1"}, WorkRange{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.args)
			if !tt.ok {
				require.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, r)
		})
	}
}

func TestRunWorkerRunsTaskOverRange(t *testing.T) {
	var got WorkRange
	task := func(ctx context.Context, r WorkRange, stdout, stderr io.Writer) error {
		got = r
		_, err := fmt.Fprintf(stdout, "scanned %d..%d\n", r.Start, r.End)
		return err
	}

	var stdout, stderr syncBuffer
	code := RunWorker(context.Background(), []string{"11", "20"}, task, &stdout, &stderr)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, WorkRange{11, 20}, got)
	assert.Equal(t, "scanned 11..20\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunWorkerUsageError(t *testing.T) {
	called := false
	task := func(ctx context.Context, r WorkRange, stdout, stderr io.Writer) error {
		called = true
		return nil
	}

	var stderr syncBuffer
	code := RunWorker(context.Background(), []string{"x", "y"}, task, io.Discard, &stderr)
	require.Equal(t, ExitUsage, code)
	require.False(t, called)
	require.Contains(t, stderr.String(), "usage: <start> <end>")
}

func TestRunWorkerTaskError(t *testing.T) {
	task := func(ctx context.Context, r WorkRange, stdout, stderr io.Writer) error {
		return errors.New("disk full")
	}

	var stderr syncBuffer
	code := RunWorker(context.Background(), []string{"1", "10"}, task, io.Discard, &stderr)
	require.Equal(t, ExitError, code)
	require.Equal(t, "worker [1, 10]: disk full\n", stderr.String())
}
