package fanout

import (
	"fmt"
	"runtime/debug"
)

// ErrPanic carries a recovered panic out of a barrier function, together
// with the stack of the goroutine that panicked
type ErrPanic struct {
	Value any
	Stack []byte
}

func (p ErrPanic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes the panic value to errors.Is and errors.As when it is an
// error itself
func (p ErrPanic) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// protect calls fn in the current goroutine and returns a panic as ErrPanic
func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = ErrPanic{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn()
}
