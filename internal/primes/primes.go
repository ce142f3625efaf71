// Package primes is the workload of primefan: it reports the primes found in
// a range, one line per prime.
package primes

import (
	"context"
	"fmt"
	"io"

	"github.com/ridge/fanout"
)

// IsPrime reports whether n is prime, by trial division
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	for i := 2; i <= n/i; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// Reporter writes "Process <index> found prime: <n>" for every prime of a
// range, where index is the range start divided by RangeSize
type Reporter struct {
	RangeSize int
}

// Scan implements fanout.Task
func (rep Reporter) Scan(ctx context.Context, r fanout.WorkRange, stdout, stderr io.Writer) error {
	if rep.RangeSize <= 0 {
		return fmt.Errorf("range size must be positive, got %d", rep.RangeSize)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	index := r.Start / rep.RangeSize

	// The condition sits at the bottom so End == math.MaxInt terminates
	for n := r.Start; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if IsPrime(n) {
			if _, err := fmt.Fprintf(stdout, "Process %d found prime: %d\n", index, n); err != nil {
				return err
			}
		}
		if n == r.End {
			return nil
		}
	}
}
