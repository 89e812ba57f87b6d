// Package flow holds the form state machines behind each screen. A flow owns
// its state; callers read snapshots and react to the one-shot event channel
// returned by each submit.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// EventKind tags a terminal flow event.
type EventKind int

const (
	// EventSuccess carries the email the flow completed for, or "Google user".
	EventSuccess EventKind = iota + 1
	EventEmailNotVerified
	EventFailure
	EventSignedOut
)

func (k EventKind) String() string {
	switch k {
	case EventSuccess:
		return "success"
	case EventEmailNotVerified:
		return "email_not_verified"
	case EventFailure:
		return "failure"
	case EventSignedOut:
		return "signed_out"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is emitted at most once per submit attempt.
type Event struct {
	Kind    EventKind
	Email   string
	Message string
}

// runner binds background backend calls to the flow's lifetime.
type runner struct {
	name   string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newRunner(name string, logger *slog.Logger) runner {
	ctx, cancel := context.WithCancel(context.Background())
	return runner{
		name:   name,
		logger: slogx.OrDefault(logger).With("flow", name),
		ctx:    ctx,
		cancel: cancel,
	}
}

// launch runs fn in a goroutine with a context that ends when either the
// flow is closed or the caller's ctx ends. fn returns the event to emit, or
// nil for none. Results of a closed flow are discarded.
func (r *runner) launch(ctx context.Context, fn func(ctx context.Context) *Event) <-chan Event {
	events := make(chan Event, 1)

	callCtx, cancel := context.WithCancel(r.ctx)
	stop := context.AfterFunc(ctx, cancel)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(events)
		defer cancel()
		defer stop()

		ev := fn(callCtx)
		if ev != nil && r.ctx.Err() == nil {
			events <- *ev
		}
	}()

	return events
}

// closed returns a channel that yields nothing.
func closed() <-chan Event {
	ch := make(chan Event)
	close(ch)
	return ch
}

// alive reports whether results may still be applied to state.
func (r *runner) alive() bool {
	return r.ctx.Err() == nil
}

func (r *runner) logError(op string, err error) {
	r.logger.Error("backend call failed", "op", op, "error", err)
}

// Close cancels in-flight calls and waits for them to finish. Their results
// are dropped.
func (r *runner) Close() {
	r.cancel()
	r.wg.Wait()
}

// errorMessage is the text shown for an unexpected failure.
func errorMessage(err error) string {
	return "An error occurred: " + err.Error()
}
