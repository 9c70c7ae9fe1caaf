package task

import (
	"fmt"
)

type result struct {
	value any
	err   error
}

// Future is bound to one submitted Task and is fulfilled once, after the
// task has run. Only one goroutine may wait on a Future.
type Future struct {
	ch     chan result
	done   bool
	result result
}

func newFuture() *Future {
	return &Future{ch: make(chan result, 1)}
}

func (f *Future) fulfil(value any, err error) {
	f.ch <- result{value: value, err: err}
}

// Wait blocks until the task has run and returns its result. Calling Wait
// again returns the same result.
func (f *Future) Wait() (any, error) {
	if !f.done {
		f.result = <-f.ch
		f.done = true
	}

	return f.result.value, f.result.err
}

// Await waits on f and asserts the result to T.
func Await[T any](f *Future) (T, error) {
	var zero T

	v, err := f.Wait()
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("task returned %T, wanted %T", v, zero)
	}

	return t, nil
}
