// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

// factStep is the generic shape behind every CSV-ingest step of §4.5/§4.6:
// read typed rows, map them through the code cache, then either reset the
// table and bulk-insert (full mode) or delete the staged keys and insert the
// staged additions (incremental mode). Every fact table (enterprise,
// establishment, branch, address, denomination, contact, activity) is an
// instance of this one shape; only the row/target types and the three
// callback functions differ between them.
type factStep[Row any, Target any] struct {
	stepName string
	table    string // CSV file base name and SQL table name, which coincide for every fact entity
	folder   string

	incremental bool
	cacheRef    *CacheRef

	mapFn    func(Row, *codecache.Cache) (Target, bool, []string)
	insertFn func(db *store.DB, ctx context.Context, tx *sql.Tx, rows []Target) (int, error)
	keyFn    func(Target) []string
}

func (s *factStep[Row, Target]) Name() string { return s.stepName }

func (s *factStep[Row, Target]) Prepare(_ context.Context, _ *store.DB, baseline int) (int, bool, error) {
	file := s.table + ".csv"
	if s.incremental {
		file = s.table + "_insert.csv"
	}
	n, err := csvsource.EstimateRowCount(filepath.Join(s.folder, file))
	if err != nil {
		return baseline, false, nil
	}
	return n, true, nil
}

func (s *factStep[Row, Target]) BeforeExecute(_ context.Context, _ *store.DB) error { return nil }

func (s *factStep[Row, Target]) Execute(ctx context.Context, db *store.DB, report pipeline.ProgressFunc) (imported, deleted, errCount int, err error) {
	tx, err := db.BeginWrite(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	defer tx.Rollback()

	cache := s.cacheRef.Cache

	if !s.incremental {
		if err := db.ResetTable(ctx, tx, s.table); err != nil {
			return 0, 0, 0, err
		}
		targets, n := s.mapAll(ctx, filepath.Join(s.folder, s.table+".csv"), cache, report)
		errCount += n
		imported, err = s.insertFn(db, ctx, tx, targets)
		if err != nil {
			return imported, 0, errCount, err
		}
	} else {
		deleteTargets, n := s.mapAll(ctx, filepath.Join(s.folder, s.table+"_delete.csv"), cache, report)
		errCount += n
		keys := make([][]string, len(deleteTargets))
		for i, t := range deleteTargets {
			keys[i] = s.keyFn(t)
		}
		deleted, err = db.DeleteByKeys(ctx, tx, s.table, keys)
		if err != nil {
			return 0, deleted, errCount, err
		}

		insertTargets, n := s.mapAll(ctx, filepath.Join(s.folder, s.table+"_insert.csv"), cache, report)
		errCount += n
		imported, err = s.insertFn(db, ctx, tx, insertTargets)
		if err != nil {
			return imported, deleted, errCount, err
		}
	}

	if ctx.Err() != nil {
		return imported, deleted, errCount, nil
	}
	if err := tx.Commit(); err != nil {
		return imported, deleted, errCount, fmt.Errorf("%w: commit %s: %v", apperr.ErrStoreFailure, s.table, err)
	}
	return imported, deleted, errCount, nil
}

// reportBatch is how often mapAll calls back into the engine with its
// running count; small enough to give a multi-minute step visible motion,
// large enough that the callback itself is noise next to the CSV decode.
const reportBatch = 500

// mapAll drains every row of path through mapFn, counting rows that failed
// to map. It stops early, without error, if ctx is cancelled mid-file: Rows
// closes its channel at the next record boundary and the partial result is
// returned; Execute then sees the cancellation and returns without
// committing, so the transaction is rolled back.
func (s *factStep[Row, Target]) mapAll(ctx context.Context, path string, cache *codecache.Cache, report pipeline.ProgressFunc) ([]Target, int) {
	var targets []Target
	errCount := 0
	processed := 0
	for row := range csvsource.Rows[Row](ctx, path) {
		t, ok, _ := s.mapFn(row, cache)
		if !ok {
			errCount++
			continue
		}
		targets = append(targets, t)
		processed++
		if report != nil && processed%reportBatch == 0 {
			report(processed)
		}
	}
	if report != nil && processed > 0 {
		report(processed)
	}
	return targets, errCount
}
