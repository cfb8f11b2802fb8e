// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbo-data/kbodata/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrationsAndStartsEmpty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	empty, err := db.BaseTablesEmpty(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty {
		t.Fatalf("expected freshly migrated db to be empty")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, ok, err := db.GetMeta(ctx, MetaLastImportFolder); err != nil || ok {
		t.Fatalf("expected absent meta variable, got ok=%v err=%v", ok, err)
	}

	if err := db.SetMeta(ctx, MetaLastImportFolder, "/drops/2026-08"); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	value, ok, err := db.GetMeta(ctx, MetaLastImportFolder)
	if err != nil || !ok {
		t.Fatalf("expected meta to be set, got ok=%v err=%v", ok, err)
	}
	if value != "/drops/2026-08" {
		t.Fatalf("unexpected meta value: %s", value)
	}

	if err := db.SetMeta(ctx, MetaLastImportFolder, "/drops/2026-09"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	value, _, _ = db.GetMeta(ctx, MetaLastImportFolder)
	if value != "/drops/2026-09" {
		t.Fatalf("expected overwrite to take effect, got %s", value)
	}
}

func TestImportCodesInsertsAndReconciles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rows := []CodeDescriptionRow{
		{Category: model.CategoryLanguage, Code: "1", Language: "NL", Description: "Nederlands"},
		{Category: model.CategoryLanguage, Code: "1", Language: "FR", Description: "Neerlandais"},
		{Category: model.CategoryLanguage, Code: "2", Language: "NL", Description: "Frans"},
	}
	inserted, deleted, err := db.ImportCodes(ctx, rows)
	if err != nil {
		t.Fatalf("import codes: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 distinct codes inserted, got %d", inserted)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions on first import, got %d", deleted)
	}

	codes, err := db.AllCodes(ctx)
	if err != nil {
		t.Fatalf("all codes: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}

	// Reconcile again, dropping code "2" from the source: it must disappear.
	rows = rows[:2]
	_, deleted, err = db.ImportCodes(ctx, rows)
	if err != nil {
		t.Fatalf("reimport codes: %v", err)
	}
	if deleted == 0 {
		t.Fatalf("expected stale code to be deleted")
	}
	codes, _ = db.AllCodes(ctx)
	if len(codes) != 1 {
		t.Fatalf("expected 1 code remaining, got %d", len(codes))
	}
}

func TestInsertAndDeleteEnterprises(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, _, err := db.ImportCodes(ctx, []CodeDescriptionRow{
		{Category: model.CategoryJuridicalSituation, Code: "001", Language: "NL", Description: "Normale situatie"},
		{Category: model.CategoryTypeOfEnterprise, Code: "1", Language: "NL", Description: "Natuurlijk persoon"},
	})
	if err != nil {
		t.Fatalf("seed codes: %v", err)
	}
	codes, _ := db.AllCodes(ctx)
	var situationID, typeID int64
	for _, c := range codes {
		switch c.Category {
		case model.CategoryJuridicalSituation:
			situationID = c.ID
		case model.CategoryTypeOfEnterprise:
			typeID = c.ID
		}
	}

	tx, err := db.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("begin write: %v", err)
	}
	n, err := db.InsertEnterprises(ctx, tx, []model.Enterprise{
		{EnterpriseNumber: "0403199702", JuridicalSituationID: situationID, TypeOfEnterpriseID: typeID, StartDate: time.Now()},
	})
	if err != nil {
		t.Fatalf("insert enterprises: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row inserted, got %d", n)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	empty, err := db.BaseTablesEmpty(ctx)
	if err != nil {
		t.Fatalf("base tables empty: %v", err)
	}
	if empty {
		t.Fatalf("expected base tables to be non-empty after insert")
	}

	tx, err = db.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("begin write: %v", err)
	}
	deletedN, err := db.DeleteByKeys(ctx, tx, "enterprise", [][]string{{"0403199702"}})
	if err != nil {
		t.Fatalf("delete by keys: %v", err)
	}
	if deletedN != 1 {
		t.Fatalf("expected 1 row deleted, got %d", deletedN)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	empty, err = db.BaseTablesEmpty(ctx)
	if err != nil {
		t.Fatalf("base tables empty: %v", err)
	}
	if !empty {
		t.Fatalf("expected base tables to be empty after delete")
	}
}
