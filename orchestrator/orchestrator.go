// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/progress"
	"github.com/kbo-data/kbodata/runhistory"
	"github.com/kbo-data/kbodata/store"
)

// Options configures a single orchestrator call.
type Options struct {
	// Events receives progress.Event values as the run proceeds. May be nil.
	Events chan<- progress.Event
	// Baseline is the fallback per-step row estimate used when a step
	// cannot cheaply compute its own (§4.3).
	Baseline int
}

// FullImport implements §4.13's full_import(folder, incremental, ct): a
// non-incremental run requires every base table to be empty first: the
// store provides no way to tell an `enterprise.csv` that replaces the world
// from one that merely appends to it, so starting from a non-empty database
// without the incremental flag is refused outright.
func FullImport(ctx context.Context, db *store.DB, folder string, incremental bool, opts Options) (pipeline.Result, error) {
	return run(ctx, db, folder, nil, incremental, opts)
}

// ImportFiles implements §4.13's import_files(folder, files, incremental,
// ct): the same pipeline as FullImport, restricted to the named fact
// tables. Meta and Codes always run regardless of the restriction, since
// every fact step depends on the freshly loaded code cache.
func ImportFiles(ctx context.Context, db *store.DB, folder string, files []string, incremental bool, opts Options) (pipeline.Result, error) {
	return run(ctx, db, folder, files, incremental, opts)
}

// RebuildCache implements §4.13's rebuild_cache(documents, fts, ct):
// derivation-only steps with no CSV reads at all, for repairing
// company_document/company_fts after a schema or projection change without
// re-ingesting the CSV bundle.
func RebuildCache(ctx context.Context, db *store.DB, documents, fts bool, opts Options) (pipeline.Result, error) {
	var steps []pipeline.Step
	if documents {
		steps = append(steps, &rebuildDocumentsStep{})
	}
	if fts {
		steps = append(steps, &rebuildFTSStep{})
	}
	historyID, err := runhistory.Start(ctx, db, runhistory.ModeRebuild, "")
	if err != nil {
		return pipeline.Result{}, err
	}

	engine := &pipeline.Engine{DB: db, Steps: steps, Events: opts.Events, Baseline: opts.Baseline}
	res, err := engine.Run(ctx, "", false, nil)
	finishHistory(ctx, db, historyID, res)
	return res, err
}

func run(ctx context.Context, db *store.DB, folder string, files []string, incremental bool, opts Options) (pipeline.Result, error) {
	if !incremental {
		empty, err := db.BaseTablesEmpty(ctx)
		if err != nil {
			return pipeline.Result{}, err
		}
		if !empty {
			return pipeline.Result{}, fmt.Errorf(
				"%w: base tables are not empty, a non-incremental import would silently mix snapshots", apperr.ErrNotEmpty)
		}
	}

	mode := runhistory.ModeFull
	if incremental {
		mode = runhistory.ModeIncremental
	}
	historyID, err := runhistory.Start(ctx, db, mode, folder)
	if err != nil {
		return pipeline.Result{}, err
	}

	cache, err := codecache.Load(ctx, db)
	if err != nil {
		return pipeline.Result{}, err
	}
	cacheRef := &CacheRef{Cache: cache}

	ingest := []pipeline.Step{&metaStep{folder: folder}, &codesStep{folder: folder, cacheRef: cacheRef}}
	ingest = append(ingest, factSteps(folder, incremental, cacheRef, files)...)

	if !incremental {
		// A full snapshot's closure is "every enterprise": no delta files to
		// read, so the whole pipeline runs as a single ordered engine pass.
		ingest = append(ingest, &rebuildDocumentsStep{}, &rebuildFTSStep{})
		engine := &pipeline.Engine{DB: db, Steps: ingest, Events: opts.Events, Baseline: opts.Baseline}
		res, err := engine.Run(ctx, folder, incremental, files)
		finishHistory(ctx, db, historyID, res)
		recordRunMeta(ctx, db, folder, incremental, res, err)
		return res, err
	}

	ingestEngine := &pipeline.Engine{DB: db, Steps: ingest, Events: opts.Events, Baseline: opts.Baseline}
	res, err := ingestEngine.Run(ctx, folder, incremental, files)
	if err != nil || res.Cancelled {
		finishHistory(ctx, db, historyID, res)
		recordRunMeta(ctx, db, folder, incremental, res, err)
		return res, err
	}

	// The impacted-set closure reads entity_number references against
	// establishment/branch, so it must run after those tables are
	// committed: a second engine pass keeps that ordering explicit instead
	// of threading a mid-run callback through pipeline.Engine.
	impacted, err := impactedEnterprises(ctx, db, folder, files)
	if err != nil {
		return res, err
	}

	derived := []pipeline.Step{&rebuildDocumentsStep{impacted: impacted}, &rebuildFTSStep{}}
	derivedEngine := &pipeline.Engine{DB: db, Steps: derived, Events: opts.Events, Baseline: opts.Baseline}
	res2, err := derivedEngine.Run(ctx, folder, incremental, files)

	merged := pipeline.Result{
		TotalImported: res.TotalImported + res2.TotalImported,
		TotalDeleted:  res.TotalDeleted + res2.TotalDeleted,
		TotalErrors:   res.TotalErrors + res2.TotalErrors,
		Duration:      res.Duration + res2.Duration,
		Cancelled:     res.Cancelled || res2.Cancelled,
	}
	finishHistory(ctx, db, historyID, merged)
	recordRunMeta(ctx, db, folder, incremental, merged, err)
	return merged, err
}

func finishHistory(ctx context.Context, db *store.DB, id int64, res pipeline.Result) {
	if err := runhistory.Finish(ctx, db, id, res); err != nil {
		log.Error().Err(err).Int64("RunID", id).Msg("failed to record run history")
	}
}

func recordRunMeta(ctx context.Context, db *store.DB, folder string, incremental bool, res pipeline.Result, runErr error) {
	if runErr != nil || res.Cancelled {
		return
	}
	key := store.MetaLastFullImportAt
	if incremental {
		key = store.MetaLastIncrementalImportAt
	}
	_ = db.SetMeta(ctx, key, time.Now().UTC().Format(time.RFC3339))
	_ = db.SetMeta(ctx, store.MetaLastImportFolder, folder)
}
