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

// Package runhistory persists a record of every import/rebuild run (A4)
// to the import_run table, surfaced by `kbodata info`. It plays the role
// the teacher's cmd/run.go fills ad hoc with a data.RunSummary read off an
// exit channel: here the summary is a pipeline.Result, and it gets
// written to durable storage instead of only logged.
package runhistory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

// Mode names recorded in import_run.mode.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
	ModeRebuild     = "rebuild"
)

// Run is one row of import_run.
type Run struct {
	ID            int64
	Mode          string
	Folder        string
	StartedAt     time.Time
	FinishedAt    *time.Time
	ImportedCount int
	DeletedCount  int
	ErrorCount    int
	Cancelled     bool
}

// Start inserts an in-progress run row and returns its id, to be passed to
// Finish once the run completes.
func Start(ctx context.Context, db *store.DB, mode, folder string) (int64, error) {
	res, err := db.Conn().ExecContext(ctx,
		"INSERT INTO import_run (mode, folder, started_at) VALUES (?, ?, ?)",
		mode, folder, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("%w: start run history: %v", apperr.ErrStoreFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: run history id: %v", apperr.ErrStoreFailure, err)
	}
	return id, nil
}

// Finish records a run's outcome against the row Start created.
func Finish(ctx context.Context, db *store.DB, id int64, res pipeline.Result) error {
	cancelled := 0
	if res.Cancelled {
		cancelled = 1
	}
	_, err := db.Conn().ExecContext(ctx,
		`UPDATE import_run SET finished_at = ?, imported_count = ?, deleted_count = ?, error_count = ?, cancelled = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), res.TotalImported, res.TotalDeleted, res.TotalErrors, cancelled, id)
	if err != nil {
		return fmt.Errorf("%w: finish run history: %v", apperr.ErrStoreFailure, err)
	}
	return nil
}

// Recent returns the most recent runs, newest first, capped at limit.
func Recent(ctx context.Context, db *store.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Conn().QueryContext(ctx,
		`SELECT id, mode, folder, started_at, finished_at, imported_count, deleted_count, error_count, cancelled
		 FROM import_run ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list run history: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			started    string
			finished   sql.NullString
			cancelledI int
		)
		if err := rows.Scan(&r.ID, &r.Mode, &r.Folder, &started, &finished,
			&r.ImportedCount, &r.DeletedCount, &r.ErrorCount, &cancelledI); err != nil {
			return nil, fmt.Errorf("%w: scan run history: %v", apperr.ErrStoreFailure, err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
				r.FinishedAt = &t
			}
		}
		r.Cancelled = cancelledI != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate run history: %v", apperr.ErrStoreFailure, err)
	}
	return out, nil
}
