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

// Package codecache holds the immutable `(category, code_value) → id`
// mapping used by the mapper while an import run is in flight. It is
// loaded once from the store and never mutated again, so a lock-free map
// is the right shape: many goroutines read concurrently, none write.
package codecache

import (
	"context"
	"fmt"

	"github.com/alphadose/haxmap"

	"github.com/kbo-data/kbodata/model"
)

// key is the composite lookup key for a single category's map.
type key struct {
	category model.CodeCategory
	value    string
}

func (k key) String() string {
	return string(k.category) + "\x00" + k.value
}

// Store is the minimal read surface codecache needs from the relational
// store; store.DB satisfies it.
type Store interface {
	AllCodes(ctx context.Context) ([]model.Code, error)
}

// Cache is the read-only `code_value → id` map for every known category,
// built once at the start of a run.
type Cache struct {
	m *haxmap.Map[string, int64]
}

// Load reads every row of the code table and builds the cache. A run
// calls it before its first step and again in the Codes step, once the
// code table has been reconciled.
func Load(ctx context.Context, s Store) (*Cache, error) {
	codes, err := s.AllCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("codecache: load: %w", err)
	}
	m := haxmap.New[string, int64](uintptr(len(codes)))
	for _, c := range codes {
		m.Set(key{category: c.Category, value: c.CodeValue}.String(), c.ID)
	}
	return &Cache{m: m}, nil
}

// TryGet resolves a code value within a category. The zero id and false
// are returned when the value is unknown, matching the mapper's
// resolution-required-or-error contract (§4.5).
func (c *Cache) TryGet(category model.CodeCategory, codeValue string) (int64, bool) {
	if codeValue == "" {
		return 0, false
	}
	return c.m.Get(key{category: category, value: codeValue}.String())
}

// Len reports how many category/value pairs are currently cached. Mostly
// useful for logging and tests.
func (c *Cache) Len() int {
	return int(c.m.Len())
}
