// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package progress

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Sink renders a single event. Implementations are not expected to be
// safe for concurrent use; the Reporter calls Render from a single
// goroutine, per §4.8's "single-threaded consumer" contract.
type Sink interface {
	Render(Event)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Render(e Event) { f(e) }

// Reporter consumes a bounded channel of Event and renders each through
// sink, throttling Progress events to at most one per 250ms per task
// label via golang.org/x/time/rate — the same library the teacher uses
// to throttle outbound API calls, repurposed here to throttle rendering.
type Reporter struct {
	sink    Sink
	events  chan Event
	mu      sync.Mutex
	limiter map[string]*rate.Limiter
}

// NewReporter creates a Reporter with a bounded event queue of the given
// capacity, shared between the pipeline engine (producer) and the
// reporter's own goroutine (consumer). The queue is closed by the
// producer when Completed is emitted, per §5.
func NewReporter(sink Sink, capacity int) *Reporter {
	return &Reporter{
		sink:    sink,
		events:  make(chan Event, capacity),
		limiter: make(map[string]*rate.Limiter),
	}
}

// Events returns the channel the pipeline engine publishes to.
func (r *Reporter) Events() chan<- Event {
	return r.events
}

// Run drains the event channel until it is closed, rendering every event
// except throttled Progress events. It returns when the channel closes,
// which the producer does immediately after emitting Completed.
func (r *Reporter) Run(ctx context.Context) {
	for ev := range r.events {
		switch e := ev.(type) {
		case Progress:
			if r.allow(e.TaskLabel) {
				r.sink.Render(e)
			}
		default:
			r.sink.Render(ev)
		}
	}
}

func (r *Reporter) allow(taskLabel string) bool {
	r.mu.Lock()
	l, ok := r.limiter[taskLabel]
	if !ok {
		l = rate.NewLimiter(rate.Every(250*time.Millisecond), 1)
		r.limiter[taskLabel] = l
	}
	r.mu.Unlock()
	return l.Allow()
}
