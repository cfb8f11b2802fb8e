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

// Package csvsource streams typed rows out of the KBO CSV bundle, and
// estimates row counts from file size without a full scan.
package csvsource

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// DateLayout is the fixed date format used throughout the KBO bundle.
const DateLayout = "02-01-2006"

// ParseDate parses a KBO date field. An empty string is not an error: it
// maps to an absent date (ok == false).
func ParseDate(s string) (t time.Time, ok bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Rows lazily decodes every row of path into a channel of T, closing the
// channel when the file is exhausted. A missing file yields an already
// closed, empty channel rather than an error, per §4.2: the caller's step
// degrades to a no-op instead of failing the whole pipeline.
//
// Decoding runs on a background goroutine so the caller can range over the
// result and observe ctx cancellation between records, satisfying the
// per-record-boundary suspension point required by §5.
func Rows[T any](ctx context.Context, path string) <-chan T {
	out := make(chan T, 256)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("Path", path).Msg("csv file not found, skipping")
		} else {
			log.Error().Err(err).Str("Path", path).Msg("could not open csv file")
		}
		close(out)
		return out
	}

	decoded := make(chan T, 256)

	go func() {
		defer f.Close()
		if err := gocsv.UnmarshalToChan(f, decoded); err != nil {
			log.Error().Err(err).Str("Path", path).Msg("error decoding csv file")
		}
	}()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case row, ok := <-decoded:
				if !ok {
					return
				}
				select {
				case out <- row:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Exists reports whether path can be opened for reading.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
