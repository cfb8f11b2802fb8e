// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"path/filepath"

	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

// codesStep imports code.csv, always as a full snapshot, then immediately
// reloads the shared CacheRef: every fact step that runs after this one in
// the same pipeline.Engine.Run sees the freshly resolved codes, including
// ones introduced or renumbered by this very run.
type codesStep struct {
	folder   string
	cacheRef *CacheRef
}

func (s *codesStep) Name() string { return "Codes" }

func (s *codesStep) Prepare(_ context.Context, _ *store.DB, baseline int) (int, bool, error) {
	n, err := csvsource.EstimateRowCount(filepath.Join(s.folder, "code.csv"))
	if err != nil {
		return baseline, false, nil
	}
	return n, true, nil
}

func (s *codesStep) BeforeExecute(_ context.Context, _ *store.DB) error { return nil }

func (s *codesStep) Execute(ctx context.Context, db *store.DB, report pipeline.ProgressFunc) (imported, deleted, errCount int, err error) {
	path := filepath.Join(s.folder, "code.csv")
	if !csvsource.Exists(path) {
		// code.csv is always a full snapshot (§4.13): an absent file means
		// "this drop carries no code changes", not "every code was removed",
		// so the reconcile is skipped entirely rather than wiping the table.
		return 0, 0, 0, nil
	}

	var staged []store.CodeDescriptionRow
	for row := range csvsource.Rows[model.CodeRow](ctx, path) {
		category := model.CodeCategory(row.Category)
		if row.Category == "" || row.Code == "" {
			errCount++
			continue
		}
		staged = append(staged, store.CodeDescriptionRow{
			Category:    category,
			Code:        row.Code,
			Language:    row.Language,
			Description: row.Description,
		})
		if report != nil && len(staged)%reportBatch == 0 {
			report(len(staged))
		}
	}
	if ctx.Err() != nil {
		return 0, 0, errCount, nil
	}

	inserted, deletedRows, err := db.ImportCodes(ctx, staged)
	if err != nil {
		return 0, 0, errCount, err
	}

	cache, err := codecache.Load(ctx, db)
	if err != nil {
		return inserted, deletedRows, errCount, err
	}
	s.cacheRef.Cache = cache

	return inserted, deletedRows, errCount, nil
}

var _ pipeline.Step = (*codesStep)(nil)
