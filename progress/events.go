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

// Package progress implements the single-threaded consumer side of the
// pipeline's event stream (§4.8): a bounded channel of PipelineEvent
// values, produced synchronously by the pipeline engine and rendered
// asynchronously here, with Progress events throttled per task.
package progress

import "time"

// Event is the sum type of everything the pipeline engine can emit. The
// ordering guarantee from §4.8 — Plan ≺ TaskPlanned(i) ≺ Progress(i)* ≺
// TaskCompleted(i) ≺ … ≺ Completed — is enforced by the engine, not here;
// the reporter only renders what it is handed, in order.
type Event interface {
	isEvent()
}

// Plan announces the whole run before any task starts.
type Plan struct {
	Folder             string
	Incremental        bool
	Limit              []string
	Tasks              []string
	TotalEstimatedRows int
}

// TaskPlanned announces a single task's estimated size immediately before
// it starts.
type TaskPlanned struct {
	TaskLabel     string
	EstimatedTotal int
}

// Progress reports incremental advancement within a task. The engine
// forwards every report a step makes; the Reporter renders at most one
// per 250ms per task.
type Progress struct {
	TaskLabel      string
	Processed      int
	EstimatedTotal int
	Elapsed        time.Duration
}

// TaskCompleted closes out a single task.
type TaskCompleted struct {
	TaskLabel string
	Imported  int
	Deleted   int
	Errors    int
	Duration  time.Duration
	Cancelled bool
}

// Completed is always the last event of a run, successful, cancelled or
// failed.
type Completed struct {
	TotalImported int
	TotalDeleted  int
	TotalErrors   int
	Duration      time.Duration
	Cancelled     bool
}

func (Plan) isEvent()          {}
func (TaskPlanned) isEvent()   {}
func (Progress) isEvent()      {}
func (TaskCompleted) isEvent() {}
func (Completed) isEvent()     {}
