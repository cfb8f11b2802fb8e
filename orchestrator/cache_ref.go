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

// Package orchestrator wires the pipeline steps (§4.13): it assembles
// the fixed step order for full/incremental/rebuild-cache modes and
// enforces the non-empty-DB invariant before a full import.
package orchestrator

import "github.com/kbo-data/kbodata/codecache"

// CacheRef holds the current code cache by reference so the codes step
// can refresh it mid-run: every later fact step reads through the same
// CacheRef, picking up the freshly reloaded cache without the engine
// needing any special-cased wiring between steps.
type CacheRef struct {
	Cache *codecache.Cache
}
