// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package progress

import (
	"context"
	"sync"
	"testing"
)

func TestReporterOrdersAndRendersNonProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var rendered []Event

	sink := SinkFunc(func(e Event) {
		mu.Lock()
		rendered = append(rendered, e)
		mu.Unlock()
	})
	r := NewReporter(sink, 16)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	r.Events() <- Plan{Folder: "/drops/2026-08", Tasks: []string{"Meta", "Codes"}}
	r.Events() <- TaskPlanned{TaskLabel: "Meta", EstimatedTotal: 1}
	r.Events() <- TaskCompleted{TaskLabel: "Meta", Imported: 1}
	r.Events() <- Completed{TotalImported: 1}
	close(r.events)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(rendered) != 4 {
		t.Fatalf("expected 4 rendered events, got %d", len(rendered))
	}
	if _, ok := rendered[0].(Plan); !ok {
		t.Fatalf("expected first event to be Plan, got %T", rendered[0])
	}
	if _, ok := rendered[3].(Completed); !ok {
		t.Fatalf("expected last event to be Completed, got %T", rendered[3])
	}
}

func TestReporterThrottlesProgressPerTask(t *testing.T) {
	var mu sync.Mutex
	rendered := 0

	sink := SinkFunc(func(e Event) {
		if _, ok := e.(Progress); ok {
			mu.Lock()
			rendered++
			mu.Unlock()
		}
	})
	r := NewReporter(sink, 256)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	for i := 0; i < 100; i++ {
		r.Events() <- Progress{TaskLabel: "Enterprises", Processed: i}
	}
	close(r.events)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if rendered == 0 {
		t.Fatalf("expected at least one progress event to render")
	}
	if rendered >= 100 {
		t.Fatalf("expected throttling to drop most of the 100 rapid-fire events, got %d rendered", rendered)
	}
}
