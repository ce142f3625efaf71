package fanout

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// workerSeq numbers the functions started by every barrier of the process
var workerSeq atomic.Int64

// Barrier is the join point of a run. Every spawned worker is represented by
// one function started with Go; Wait returns once all of them have returned.
//
// Unlike a first-completion race, a failing function does not stop the
// others: the barrier only records the first error and keeps waiting.
type Barrier struct {
	mu      sync.Mutex
	running int
	done    chan struct{}
	err     error
}

// NewBarrier creates an empty barrier. Wait on an empty barrier returns
// immediately.
func NewBarrier() *Barrier {
	b := new(Barrier)
	b.done = make(chan struct{})
	close(b.done)
	return b
}

// Go runs fn in a new goroutine and counts it as running until it returns.
// The name only appears in error messages.
func (b *Barrier) Go(name string, fn func() error) {
	seq := workerSeq.Add(1)

	b.mu.Lock()
	if b.running == 0 {
		b.done = make(chan struct{})
	}
	b.running++
	b.mu.Unlock()

	go b.run(seq, name, fn)
}

// run is the goroutine body of Go. seq is unused here; it shows up among the
// arguments in a goroutine dump, telling apart supervisors of one run.
func (b *Barrier) run(seq int64, name string, fn func() error) {
	err := protect(fn)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && b.err == nil {
		b.err = fmt.Errorf("%s: %w", name, err)
	}

	b.running--
	if b.running == 0 {
		close(b.done)
	}
}

// Running returns the number of functions that have not returned yet
func (b *Barrier) Running() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.running
}

// Done returns a channel that closes when the last running function returns.
// If nothing is running, the returned channel is already closed.
func (b *Barrier) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.done
}

// Wait blocks until nothing is running, then returns the first error any
// function returned, or nil
func (b *Barrier) Wait() error {
	<-b.Done()

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.err
}
