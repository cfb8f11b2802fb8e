// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline implements the ordered, strictly sequential step
// engine of §4.7: each step is prepared, optionally set up, executed,
// and always completes with a terminal state, whether it succeeded,
// failed or was cancelled.
package pipeline

import (
	"context"

	"github.com/kbo-data/kbodata/store"
)

// State is a step's lifecycle state, per §4.7.
type State int

const (
	Pending State = iota
	InProgress
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case InProgress:
		return "InProgress"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ProgressFunc reports how many records a running step has processed so
// far. Steps call it as often as they like; the engine forwards every call
// as a progress.Progress event and the reporter's rate limiter (§4.8)
// decides which of those actually get rendered.
type ProgressFunc func(processed int)

// Step is a single unit of pipeline work: one CSV ingest, one derivation
// phase, etc. Implementations run their writes inside the transaction
// they open in Execute and must roll back on error or cancellation.
type Step interface {
	// Name labels the step for progress events and logs.
	Name() string
	// Prepare computes an estimated row count, if one is cheaply
	// available; baseline is the orchestrator's fallback estimate.
	Prepare(ctx context.Context, db *store.DB, baseline int) (estimatedRows int, hasEstimate bool, err error)
	// BeforeExecute performs any setup that must happen outside Execute's
	// own transaction (e.g. loading a delete-key file). It is optional;
	// most steps leave it a no-op.
	BeforeExecute(ctx context.Context, db *store.DB) error
	// Execute performs the step's work and returns the number of rows
	// that failed (mapper/resolution errors), plus the imported and
	// deleted row counts actually committed. report is never nil.
	Execute(ctx context.Context, db *store.DB, report ProgressFunc) (imported, deleted, errorCount int, err error)
}
