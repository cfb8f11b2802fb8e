// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/kbo-data/kbodata/progress"
	"github.com/kbo-data/kbodata/store"
)

type fakeStep struct {
	name        string
	executeErr  error
	imported    int
	reportCalls *int
}

func (f *fakeStep) Name() string { return f.name }
func (f *fakeStep) Prepare(ctx context.Context, db *store.DB, baseline int) (int, bool, error) {
	return 10, true, nil
}
func (f *fakeStep) BeforeExecute(ctx context.Context, db *store.DB) error { return nil }
func (f *fakeStep) Execute(ctx context.Context, db *store.DB, report ProgressFunc) (int, int, int, error) {
	if f.reportCalls != nil {
		report(f.imported / 2)
		report(f.imported)
		*f.reportCalls += 2
	}
	return f.imported, 0, 0, f.executeErr
}

func drainEvents(ch chan progress.Event) []progress.Event {
	var out []progress.Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestEngineRunsStepsInOrder(t *testing.T) {
	events := make(chan progress.Event, 64)
	eng := &Engine{
		Steps: []Step{
			&fakeStep{name: "A", imported: 3},
			&fakeStep{name: "B", imported: 4},
		},
		Events: events,
	}

	go func() {
		eng.Run(context.Background(), "/drops/2026-08", false, nil)
		close(events)
	}()
	evs := drainEvents(events)

	if _, ok := evs[0].(progress.Plan); !ok {
		t.Fatalf("expected first event to be Plan, got %T", evs[0])
	}
	last := evs[len(evs)-1]
	completed, ok := last.(progress.Completed)
	if !ok {
		t.Fatalf("expected last event to be Completed, got %T", last)
	}
	if completed.TotalImported != 7 {
		t.Fatalf("expected total imported 7, got %d", completed.TotalImported)
	}
	if completed.Cancelled {
		t.Fatalf("did not expect cancellation")
	}
}

func TestEngineStopsOnStepError(t *testing.T) {
	events := make(chan progress.Event, 64)
	boom := errors.New("boom")
	eng := &Engine{
		Steps: []Step{
			&fakeStep{name: "A", imported: 1},
			&fakeStep{name: "B", executeErr: boom},
			&fakeStep{name: "C", imported: 99},
		},
		Events: events,
	}

	var runErr error
	go func() {
		_, runErr = eng.Run(context.Background(), "/drops", false, nil)
		close(events)
	}()
	evs := drainEvents(events)

	if !errors.Is(runErr, boom) {
		t.Fatalf("expected boom error, got %v", runErr)
	}

	var sawC bool
	for _, ev := range evs {
		if tc, ok := ev.(progress.TaskCompleted); ok && tc.TaskLabel == "C" {
			sawC = true
		}
	}
	if sawC {
		t.Fatalf("step C must not run after step B failed")
	}
}

func TestEngineCancellation(t *testing.T) {
	events := make(chan progress.Event, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := &Engine{
		Steps: []Step{
			&fakeStep{name: "A", imported: 1},
		},
		Events: events,
	}

	go func() {
		eng.Run(ctx, "/drops", false, nil)
		close(events)
	}()
	evs := drainEvents(events)

	last := evs[len(evs)-1].(progress.Completed)
	if !last.Cancelled {
		t.Fatalf("expected Completed.Cancelled to be true")
	}
}

func TestEngineForwardsStepProgress(t *testing.T) {
	events := make(chan progress.Event, 64)
	calls := 0
	eng := &Engine{
		Steps: []Step{
			&fakeStep{name: "A", imported: 10, reportCalls: &calls},
		},
		Events: events,
	}

	go func() {
		eng.Run(context.Background(), "/drops", false, nil)
		close(events)
	}()
	evs := drainEvents(events)

	if calls != 2 {
		t.Fatalf("expected step to call report twice, got %d", calls)
	}
	var sawProgress bool
	for _, ev := range evs {
		if p, ok := ev.(progress.Progress); ok {
			sawProgress = true
			if p.TaskLabel != "A" {
				t.Fatalf("expected progress for task A, got %q", p.TaskLabel)
			}
		}
	}
	if !sawProgress {
		t.Fatalf("expected at least one progress.Progress event")
	}
}
