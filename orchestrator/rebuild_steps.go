// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"

	"github.com/kbo-data/kbodata/docbuilder"
	"github.com/kbo-data/kbodata/fts"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

// rebuildDocumentsStep regenerates company_document, either for every
// enterprise (full import, or an explicit rebuild-cache run) or for the
// impacted set S computed by the orchestrator for an incremental run.
type rebuildDocumentsStep struct {
	impacted []string // nil means "rebuild everything"
}

func (s *rebuildDocumentsStep) Name() string { return "RebuildCompanyDocuments" }

func (s *rebuildDocumentsStep) Prepare(ctx context.Context, db *store.DB, baseline int) (int, bool, error) {
	if s.impacted != nil {
		return len(s.impacted), true, nil
	}
	counts, err := db.TableCounts(ctx)
	if err != nil {
		return baseline, false, nil
	}
	return counts["enterprise"], true, nil
}

func (s *rebuildDocumentsStep) BeforeExecute(_ context.Context, _ *store.DB) error { return nil }

func (s *rebuildDocumentsStep) Execute(ctx context.Context, db *store.DB, report pipeline.ProgressFunc) (imported, deleted, errCount int, err error) {
	builder := docbuilder.NewBuilder(db)
	var n int
	if s.impacted == nil {
		n, err = builder.RebuildAll(ctx, report)
	} else {
		n, err = builder.Rebuild(ctx, s.impacted, report)
	}
	return n, 0, 0, err
}

// rebuildFTSStep regenerates the FTS index from company_document. It always
// runs as a full rebuild (§4.10): the FTS rebuild reads the documents that
// rebuildDocumentsStep just wrote, so a partial rebuild would require
// tracking which rowids changed, which contentless FTS5 tables make more
// expensive to do incrementally than a full re-derivation in this dataset's
// typical size.
type rebuildFTSStep struct{}

func (s *rebuildFTSStep) Name() string { return "RebuildFtsIndex" }

func (s *rebuildFTSStep) Prepare(ctx context.Context, db *store.DB, baseline int) (int, bool, error) {
	counts, err := db.TableCounts(ctx)
	if err != nil {
		return baseline, false, nil
	}
	return counts["company_fts_map"], true, nil
}

func (s *rebuildFTSStep) BeforeExecute(_ context.Context, _ *store.DB) error { return nil }

func (s *rebuildFTSStep) Execute(ctx context.Context, db *store.DB, report pipeline.ProgressFunc) (imported, deleted, errCount int, err error) {
	n, err := fts.NewRebuilder(db).RebuildAll(ctx, report)
	return n, 0, 0, err
}

var (
	_ pipeline.Step = (*rebuildDocumentsStep)(nil)
	_ pipeline.Step = (*rebuildFTSStep)(nil)
)
