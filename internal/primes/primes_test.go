package primes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridge/fanout"
)

func TestIsPrime(t *testing.T) {
	primes := map[int]bool{}
	for _, p := range []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97} {
		primes[p] = true
	}
	for n := -3; n <= 100; n++ {
		assert.Equal(t, primes[n], IsPrime(n), "n=%d", n)
	}
	assert.True(t, IsPrime(7919))
	assert.False(t, IsPrime(7917))
}

func scan(t *testing.T, rangeSize int, r fanout.WorkRange) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Reporter{RangeSize: rangeSize}.Scan(context.Background(), r, &out, io.Discard))
	s := strings.TrimSuffix(out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestScanReportsEveryPrimeOnce(t *testing.T) {
	r := fanout.WorkRange{Start: 1, End: 1000}
	lines := scan(t, 1000, r)

	seen := map[int]int{}
	for _, line := range lines {
		var index, n int
		_, err := fmt.Sscanf(line, "Process %d found prime: %d", &index, &n)
		require.NoError(t, err, line)
		require.Equal(t, 0, index)
		seen[n]++
	}
	for n := r.Start; n <= r.End; n++ {
		if IsPrime(n) {
			require.Equal(t, 1, seen[n], "prime %d", n)
		} else {
			require.Zero(t, seen[n], "non-prime %d", n)
		}
	}
	require.Len(t, seen, 168)
}

func TestScanIndexFromRangeStart(t *testing.T) {
	require.Equal(t, []string{
		"Process 1 found prime: 11",
		"Process 1 found prime: 13",
		"Process 1 found prime: 17",
		"Process 1 found prime: 19",
	}, scan(t, 10, fanout.WorkRange{Start: 11, End: 20}))
}

func TestScanSingleElementRange(t *testing.T) {
	require.Equal(t, []string{"Process 0 found prime: 2"}, scan(t, 1000, fanout.WorkRange{Start: 2, End: 2}))
	require.Empty(t, scan(t, 1000, fanout.WorkRange{Start: 4, End: 4}))
}

func TestScanRejectsBadInput(t *testing.T) {
	err := Reporter{}.Scan(context.Background(), fanout.WorkRange{Start: 1, End: 2}, io.Discard, io.Discard)
	require.Error(t, err)

	err = Reporter{RangeSize: 10}.Scan(context.Background(), fanout.WorkRange{Start: 2, End: 1}, io.Discard, io.Discard)
	require.Error(t, err)
}

func TestScanStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Reporter{RangeSize: 10}.Scan(ctx, fanout.WorkRange{Start: 1, End: 100}, &out, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, out.String())
}
