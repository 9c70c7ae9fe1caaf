package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("task channel closed")

// Request pairs a queued Task with the Future its submitter is holding.
type Request struct {
	task   Task
	future *Future
}

// Execute runs the task against table and fulfils its Future. A panicking
// task fulfils the Future with an error instead of taking the consumer
// down.
func (r Request) Execute(table SessionTable) {
	var (
		value any
		err   error
	)

	func() {
		defer func() {
			if p := recover(); p != nil {
				value, err = nil, fmt.Errorf("task %T panicked: %v", r.task, p)
			}
		}()
		value, err = r.task.Execute(table)
	}()

	r.future.fulfil(value, err)
}

// Channel is an ordered multi producer, single consumer task queue.
type Channel struct {
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	senders  sync.WaitGroup
	requests chan Request
}

// NewChannel returns a Channel that buffers up to size tasks before Submit
// blocks.
func NewChannel(size int) *Channel {
	if size < 0 {
		size = 0
	}
	return &Channel{
		done:     make(chan struct{}),
		requests: make(chan Request, size),
	}
}

// Submit queues t and returns its Future. After Close the Future is
// fulfilled immediately with ErrClosed, including for a Submit that was
// still waiting for room in the queue when Close was called.
func (c *Channel) Submit(t Task) *Future {
	f := newFuture()

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		f.fulfil(nil, ErrClosed)
		return f
	}
	c.senders.Add(1)
	c.mu.RUnlock()
	defer c.senders.Done()

	select {
	case c.requests <- Request{task: t, future: f}:
	case <-c.done:
		f.fulfil(nil, ErrClosed)
	}

	return f
}

// Requests is the consumer end. Requests must be executed in the order
// they are received. The channel is closed once Close has returned.
func (c *Channel) Requests() <-chan Request {
	return c.requests
}

// Serve executes requests against table until the channel is closed and
// drained. When ctx is done first the channel is shut down instead.
func (c *Channel) Serve(ctx context.Context, table SessionTable) {
	for {
		select {
		case <-ctx.Done():
			c.Shutdown()
			return
		case r, ok := <-c.requests:
			if !ok {
				return
			}
			r.Execute(table)
		}
	}
}

// Close stops new submissions. Requests already queued can still be read.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	// Blocked senders give up on done, so this does not wait on a consumer.
	c.senders.Wait()
	close(c.requests)
}

// Shutdown closes the channel and fulfils every request still queued with
// ErrClosed. Only the consumer may call it.
func (c *Channel) Shutdown() {
	c.Close()
	for r := range c.requests {
		r.future.fulfil(nil, ErrClosed)
	}
}
