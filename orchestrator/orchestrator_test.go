// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbo-data/kbodata/runhistory"
	"github.com/kbo-data/kbodata/store"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func seedFullBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "meta.csv", "Variable,Value\nExtractTimestamp,2026-08-01 00:00:00\n")
	writeCSV(t, dir, "code.csv", "Category,Code,Language,Description\n"+
		"JuridicalSituation,001,NL,Normale situatie\n"+
		"TypeOfEnterprise,1,NL,Natuurlijk persoon\n"+
		"TypeOfAddress,1,NL,Maatschappelijke zetel\n"+
		"Language,1,NL,Nederlands\n"+
		"TypeOfDenomination,001,NL,Maatschappelijke naam\n")
	writeCSV(t, dir, "enterprise.csv", "EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,JuridicalFormCAC,StartDate\n"+
		"0403199702,AC,001,1,,,01-01-2000\n")
	writeCSV(t, dir, "establishment.csv", "EstablishmentNumber,StartDate,EnterpriseNumber\n"+
		"2000000001,01-01-2000,0403199702\n")
	writeCSV(t, dir, "address.csv", "EntityNumber,TypeOfAddress,CountryNL,CountryFR,Zipcode,MunicipalityNL,MunicipalityFR,StreetNL,StreetFR,HouseNumber,Box,ExtraAddressInfo,DateStrikingOff\n"+
		"0403199702,1,,,1000,Brussel,Bruxelles,Teststraat,Ruetest,1,,,\n")
	writeCSV(t, dir, "denomination.csv", "EntityNumber,Language,TypeOfDenomination,Denomination\n"+
		"0403199702,1,001,KBC GROEP\n")
	return dir
}

func openOrchestratorTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFullImportPopulatesStoreAndDerivedIndexes(t *testing.T) {
	dir := seedFullBundle(t)
	db := openOrchestratorTestDB(t)
	ctx := context.Background()

	res, err := FullImport(ctx, db, dir, false, Options{})
	if err != nil {
		t.Fatalf("full import: %v", err)
	}
	if res.TotalErrors != 0 {
		t.Fatalf("expected no mapping errors, got %d", res.TotalErrors)
	}

	counts, err := db.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts["enterprise"] != 1 || counts["establishment"] != 1 || counts["address"] != 1 || counts["denomination"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts["company_document"] != 1 {
		t.Fatalf("expected 1 company_document, got %d", counts["company_document"])
	}
	if counts["code"] != 5 {
		t.Fatalf("expected 5 codes, got %d", counts["code"])
	}

	var ftsCount int
	if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM company_fts_map").Scan(&ftsCount); err != nil {
		t.Fatalf("count fts map: %v", err)
	}
	if ftsCount != 1 {
		t.Fatalf("expected 1 fts map row, got %d", ftsCount)
	}

	folder, ok, err := db.GetMeta(ctx, store.MetaLastFullImportAt)
	if err != nil || !ok || folder == "" {
		t.Fatalf("expected last_full_import_at to be recorded, ok=%v err=%v", ok, err)
	}

	runs, err := runhistory.Recent(ctx, db, 10)
	if err != nil {
		t.Fatalf("run history: %v", err)
	}
	if len(runs) != 1 || runs[0].Mode != runhistory.ModeFull || runs[0].FinishedAt == nil {
		t.Fatalf("expected one finished full run recorded, got %+v", runs)
	}
}

func TestFullImportRefusesNonEmptyBaseTables(t *testing.T) {
	dir := seedFullBundle(t)
	db := openOrchestratorTestDB(t)
	ctx := context.Background()

	if _, err := FullImport(ctx, db, dir, false, Options{}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := FullImport(ctx, db, dir, false, Options{}); err == nil {
		t.Fatalf("expected second non-incremental import to be refused")
	}
}

func TestImportFilesIncrementalRebuildsImpactedDocument(t *testing.T) {
	dir := seedFullBundle(t)
	db := openOrchestratorTestDB(t)
	ctx := context.Background()

	if _, err := FullImport(ctx, db, dir, false, Options{}); err != nil {
		t.Fatalf("seed full import: %v", err)
	}

	var etagBefore string
	if err := db.Conn().QueryRowContext(ctx, "SELECT etag FROM company_document WHERE enterprise_number = ?", "0403199702").Scan(&etagBefore); err != nil {
		t.Fatalf("read etag before: %v", err)
	}

	deltaDir := t.TempDir()
	writeCSV(t, deltaDir, "denomination_insert.csv", "EntityNumber,Language,TypeOfDenomination,Denomination\n"+
		"0403199702,1,001,KBC GROUP\n")
	writeCSV(t, deltaDir, "denomination_delete.csv", "EntityNumber,Language,TypeOfDenomination,Denomination\n"+
		"0403199702,1,001,KBC GROEP\n")

	res, err := ImportFiles(ctx, db, deltaDir, []string{"denomination"}, true, Options{})
	if err != nil {
		t.Fatalf("import files: %v", err)
	}
	if res.TotalDeleted != 1 || res.TotalImported != 1 {
		t.Fatalf("expected 1 deleted and 1 imported denomination, got %+v", res)
	}

	var value string
	if err := db.Conn().QueryRowContext(ctx, "SELECT value FROM denomination WHERE entity_number = ?", "0403199702").Scan(&value); err != nil {
		t.Fatalf("read denomination: %v", err)
	}
	if value != "KBC GROUP" {
		t.Fatalf("expected denomination to be replaced, got %q", value)
	}

	var etagAfter string
	if err := db.Conn().QueryRowContext(ctx, "SELECT etag FROM company_document WHERE enterprise_number = ?", "0403199702").Scan(&etagAfter); err != nil {
		t.Fatalf("read etag after: %v", err)
	}
	if etagAfter == etagBefore {
		t.Fatalf("expected document to be rebuilt after incremental import")
	}
}

func TestRebuildCacheSkipsCSVReads(t *testing.T) {
	dir := seedFullBundle(t)
	db := openOrchestratorTestDB(t)
	ctx := context.Background()

	if _, err := FullImport(ctx, db, dir, false, Options{}); err != nil {
		t.Fatalf("seed full import: %v", err)
	}

	if _, err := db.Conn().ExecContext(ctx, "DELETE FROM company_document"); err != nil {
		t.Fatalf("clear documents: %v", err)
	}

	res, err := RebuildCache(ctx, db, true, true, Options{})
	if err != nil {
		t.Fatalf("rebuild cache: %v", err)
	}
	if res.TotalImported == 0 {
		t.Fatalf("expected rebuild cache to regenerate documents")
	}

	var n int
	if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM company_document").Scan(&n); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 document after rebuild, got %d", n)
	}
}
