// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"path/filepath"

	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

// metaStep imports meta.csv: a small key/value snapshot of the bundle's own
// operational variables, always read in full regardless of mode.
type metaStep struct {
	folder string
}

func (s *metaStep) Name() string { return "Meta" }

func (s *metaStep) Prepare(_ context.Context, _ *store.DB, baseline int) (int, bool, error) {
	n, err := csvsource.EstimateRowCount(filepath.Join(s.folder, "meta.csv"))
	if err != nil {
		return baseline, false, nil
	}
	return n, true, nil
}

func (s *metaStep) BeforeExecute(_ context.Context, _ *store.DB) error { return nil }

func (s *metaStep) Execute(ctx context.Context, db *store.DB, report pipeline.ProgressFunc) (imported, deleted, errCount int, err error) {
	for row := range csvsource.Rows[model.MetaRow](ctx, filepath.Join(s.folder, "meta.csv")) {
		if err := db.SetMeta(ctx, row.Variable, row.Value); err != nil {
			return imported, 0, errCount, err
		}
		imported++
		if report != nil {
			report(imported)
		}
	}
	return imported, 0, errCount, nil
}

var _ pipeline.Step = (*metaStep)(nil)
