package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
)

// ErrStopped is returned for jobs submitted after the worker exited.
var ErrStopped = errors.New("app: worker stopped")

// Engine is the part of *navigation.Navigator the worker drives.
type Engine interface {
	NavigateTo(target navigation.State) (bool, error)
	SynchronizeState() (navigation.State, error)
	CurrentState() navigation.State
	SetOptions(opts navigation.Options)
	Options() navigation.Options
}

// Result describes one finished navigation request.
type Result struct {
	Target  navigation.State
	Reached bool
	State   navigation.State
	Err     error
	Elapsed time.Duration
}

// Worker owns the engine on a single goroutine. Every request (navigation,
// resync, reconfiguration, asset reindex) is queued and runs to completion
// before the next one starts.
//
// Cancelling a caller's context only stops the caller from waiting; input in
// flight is halted through the fail-safe instead.
type Worker struct {
	engine   Engine
	jobs     chan func()
	done     chan struct{}
	busy     atomic.Bool
	onResult func(Result)
}

// NewWorker creates a stopped worker. onResult, if non-nil, is called on the
// worker goroutine after every navigation.
func NewWorker(e Engine, onResult func(Result)) *Worker {
	return &Worker{
		engine:   e,
		jobs:     make(chan func()),
		done:     make(chan struct{}),
		onResult: onResult,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	logging.Debug("Worker started")
	for {
		select {
		case <-ctx.Done():
			logging.Debug("Worker stopped")
			return
		case job := <-w.jobs:
			w.busy.Store(true)
			job()
			w.busy.Store(false)
		}
	}
}

// Busy reports whether a job is running.
func (w *Worker) Busy() bool { return w.busy.Load() }

// Do runs fn on the worker goroutine and waits for it.
func (w *Worker) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case w.jobs <- job:
	case <-w.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Navigate queues a navigation to target and waits for its result.
func (w *Worker) Navigate(ctx context.Context, target navigation.State) (Result, error) {
	var res Result
	err := w.Do(ctx, func() {
		start := time.Now()
		ok, err := w.engine.NavigateTo(target)
		res = Result{
			Target:  target,
			Reached: ok,
			State:   w.engine.CurrentState(),
			Err:     err,
			Elapsed: time.Since(start),
		}
		if w.onResult != nil {
			w.onResult(res)
		}
	})
	if err != nil {
		return Result{Target: target, Err: err}, err
	}
	return res, res.Err
}

// Synchronize queues a state resync.
func (w *Worker) Synchronize(ctx context.Context) (navigation.State, error) {
	var (
		s    navigation.State
		serr error
	)
	if err := w.Do(ctx, func() { s, serr = w.engine.SynchronizeState() }); err != nil {
		return navigation.Unknown, err
	}
	return s, serr
}

// Reconfigure queues an options swap, so it never lands mid-navigation.
func (w *Worker) Reconfigure(ctx context.Context, opts navigation.Options) error {
	return w.Do(ctx, func() { w.engine.SetOptions(opts) })
}
