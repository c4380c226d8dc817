// Package worker runs jobs on a single background goroutine.
//
// Callers submit a job with Run and block until it has finished, so
// errors raised in the background are reported synchronously. Jobs run
// one at a time in submission order; there is no cancellation.
package worker

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("worker: executor closed")

type job struct {
	fn   func() error
	done chan error
}

// Executor owns one background goroutine.
type Executor struct {
	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts an executor. Call Close to stop it.
func New() *Executor {
	e := &Executor{queue: make(chan job, 16)}
	e.wg.Add(1)
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer e.wg.Done()
	for j := range e.queue {
		j.done <- runJob(j.fn)
	}
}

// runJob converts a panic in fn into an error.
func runJob(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: job panicked: %v", r)
		}
	}()
	return fn()
}

// Run executes fn on the background goroutine and waits for it.
func (e *Executor) Run(fn func() error) error {
	done := make(chan error, 1)

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrClosed
	}
	e.queue <- job{fn: fn, done: done}
	e.mu.RUnlock()

	return <-done
}

// Close stops accepting jobs, lets queued jobs finish and stops the goroutine.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()
	e.wg.Wait()
}
