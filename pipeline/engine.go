// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kbo-data/kbodata/progress"
	"github.com/kbo-data/kbodata/store"
)

// Result summarizes a completed run for the orchestrator and run history.
type Result struct {
	TotalImported int
	TotalDeleted  int
	TotalErrors   int
	Duration      time.Duration
	Cancelled     bool
}

// Engine runs a fixed, ordered list of Steps against db, emitting
// PipelineEvents to events as it goes. events may be nil, in which case
// progress reporting is skipped.
type Engine struct {
	DB       *store.DB
	Steps    []Step
	Events   chan<- progress.Event
	Baseline int
}

// Run executes every step in order. Per §4.7: on cancellation the current
// step rolls back and every remaining step is marked Cancelled; on error
// the current step rolls back and the pipeline stops; a terminal
// Completed event is always emitted last.
func (e *Engine) Run(ctx context.Context, folder string, incremental bool, limit []string) (Result, error) {
	start := time.Now()
	res := Result{}

	labels := make([]string, len(e.Steps))
	for i, s := range e.Steps {
		labels[i] = s.Name()
	}
	e.emit(progress.Plan{
		Folder:      folder,
		Incremental: incremental,
		Limit:       limit,
		Tasks:       labels,
	})

	var firstErr error
	cancelledFromHere := false

	for _, step := range e.Steps {
		state := Pending
		if cancelledFromHere {
			state = Cancelled
			e.emit(progress.TaskPlanned{TaskLabel: step.Name()})
			e.emit(progress.TaskCompleted{TaskLabel: step.Name(), Cancelled: true})
			log.Debug().Str("Step", step.Name()).Str("State", state.String()).Msg("step skipped")
			continue
		}

		select {
		case <-ctx.Done():
			cancelledFromHere = true
			res.Cancelled = true
			state = Cancelled
			e.emit(progress.TaskPlanned{TaskLabel: step.Name()})
			e.emit(progress.TaskCompleted{TaskLabel: step.Name(), Cancelled: true})
			log.Debug().Str("Step", step.Name()).Str("State", state.String()).Msg("step cancelled before start")
			continue
		default:
		}

		state = InProgress
		stepStart := time.Now()
		estimate, hasEstimate, err := step.Prepare(ctx, e.DB, e.Baseline)
		if err != nil {
			firstErr = err
			state = Failed
			res.TotalErrors++
			e.emit(progress.TaskCompleted{TaskLabel: step.Name(), Duration: time.Since(stepStart)})
			log.Error().Err(err).Str("Step", step.Name()).Str("State", state.String()).Msg("pipeline step failed to prepare")
			break
		}
		if !hasEstimate {
			estimate = e.Baseline
		}
		e.emit(progress.TaskPlanned{TaskLabel: step.Name(), EstimatedTotal: estimate})

		if err := step.BeforeExecute(ctx, e.DB); err != nil {
			firstErr = err
			state = Failed
			res.TotalErrors++
			e.emit(progress.TaskCompleted{TaskLabel: step.Name(), Duration: time.Since(stepStart)})
			log.Error().Err(err).Str("Step", step.Name()).Str("State", state.String()).Msg("pipeline step setup failed")
			break
		}

		report := func(processed int) {
			e.emit(progress.Progress{
				TaskLabel:      step.Name(),
				Processed:      processed,
				EstimatedTotal: estimate,
				Elapsed:        time.Since(stepStart),
			})
		}
		imported, deleted, errCount, err := step.Execute(ctx, e.DB, report)
		duration := time.Since(stepStart)
		cancelled := ctx.Err() != nil

		res.TotalImported += imported
		res.TotalDeleted += deleted
		res.TotalErrors += errCount

		switch {
		case cancelled:
			state = Cancelled
		case err != nil:
			state = Failed
		default:
			state = Completed
		}

		e.emit(progress.TaskCompleted{
			TaskLabel: step.Name(),
			Imported:  imported,
			Deleted:   deleted,
			Errors:    errCount,
			Duration:  duration,
			Cancelled: cancelled,
		})
		log.Debug().Str("Step", step.Name()).Str("State", state.String()).Dur("Duration", duration).Msg("step finished")

		if cancelled {
			res.Cancelled = true
			cancelledFromHere = true
			continue
		}
		if err != nil {
			firstErr = err
			log.Error().Err(err).Str("Step", step.Name()).Msg("pipeline step failed")
			break
		}
	}

	res.Duration = time.Since(start)
	e.emit(progress.Completed{
		TotalImported: res.TotalImported,
		TotalDeleted:  res.TotalDeleted,
		TotalErrors:   res.TotalErrors,
		Duration:      res.Duration,
		Cancelled:     res.Cancelled,
	})

	return res, firstErr
}

func (e *Engine) emit(ev progress.Event) {
	if e.Events == nil {
		return
	}
	e.Events <- ev
}
