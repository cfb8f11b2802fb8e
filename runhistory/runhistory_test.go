// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package runhistory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStartThenFinishRecordsOutcome(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := Start(ctx, db, ModeFull, "/drops/2026-08")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := Finish(ctx, db, id, pipeline.Result{TotalImported: 3, TotalDeleted: 1, TotalErrors: 0}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err := Recent(ctx, db, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Mode != ModeFull || r.Folder != "/drops/2026-08" {
		t.Fatalf("unexpected run: %+v", r)
	}
	if r.ImportedCount != 3 || r.DeletedCount != 1 {
		t.Fatalf("unexpected counts: %+v", r)
	}
	if r.FinishedAt == nil {
		t.Fatalf("expected FinishedAt to be set after Finish")
	}
}

func TestRecentOrdersNewestFirstAndRespectsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, err := Start(ctx, db, ModeIncremental, "folder")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if err := Finish(ctx, db, id, pipeline.Result{}); err != nil {
			t.Fatalf("finish: %v", err)
		}
	}

	runs, err := Recent(ctx, db, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit to cap at 2, got %d", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Fatalf("expected newest-first ordering, got ids %d then %d", runs[0].ID, runs[1].ID)
	}
}

func TestUnfinishedRunHasNilFinishedAt(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := Start(ctx, db, ModeFull, "folder"); err != nil {
		t.Fatalf("start: %v", err)
	}

	runs, err := Recent(ctx, db, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 || runs[0].FinishedAt != nil {
		t.Fatalf("expected an unfinished run with nil FinishedAt, got %+v", runs)
	}
}
