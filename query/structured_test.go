// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbo-data/kbodata/orchestrator"
	"github.com/kbo-data/kbodata/querybuild"
	"github.com/kbo-data/kbodata/store"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func seedStructuredSearchBundle(t *testing.T) *store.DB {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "code.csv", "Category,Code,Language,Description\n"+
		"JuridicalSituation,001,NL,Normale situatie\n"+
		"TypeOfEnterprise,1,NL,Natuurlijk persoon\n"+
		"TypeOfAddress,1,NL,Maatschappelijke zetel\n"+
		"Language,1,NL,Nederlands\n"+
		"TypeOfDenomination,001,NL,Maatschappelijke naam\n")
	writeCSV(t, dir, "enterprise.csv", "EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,JuridicalFormCAC,StartDate\n"+
		"0403199702,AC,001,1,,,01-01-2000\n"+
		"0404412992,AC,001,1,,,01-01-2001\n")
	writeCSV(t, dir, "address.csv", "EntityNumber,TypeOfAddress,CountryNL,CountryFR,Zipcode,MunicipalityNL,MunicipalityFR,StreetNL,StreetFR,HouseNumber,Box,ExtraAddressInfo,DateStrikingOff\n"+
		"0403199702,1,,,1000,Brussel,Bruxelles,Teststraat,Ruetest,1,,,\n"+
		"0404412992,1,,,9000,Gent,Gand,Kouterlaan,Avenue Kouter,5,,,\n")
	writeCSV(t, dir, "denomination.csv", "EntityNumber,Language,TypeOfDenomination,Denomination\n"+
		"0403199702,1,001,KBC GROEP\n"+
		"0404412992,1,001,DELHAIZE GROUP\n")

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := orchestrator.FullImport(context.Background(), db, dir, false, orchestrator.Options{}); err != nil {
		t.Fatalf("seed full import: %v", err)
	}
	return db
}

func TestSearchStructuredMatchesByName(t *testing.T) {
	db := seedStructuredSearchBundle(t)
	ft := NewFullText(db)

	results, err := ft.SearchStructured(context.Background(), querybuild.Criteria{Name: "KBC"}, "NL", 0, 10)
	if err != nil {
		t.Fatalf("search structured: %v", err)
	}
	if len(results) != 1 || results[0].EnterpriseNumber != "0403199702" {
		t.Fatalf("expected single KBC match, got %+v", results)
	}
}

func TestSearchStructuredMatchesByCityEitherLanguage(t *testing.T) {
	db := seedStructuredSearchBundle(t)
	ft := NewFullText(db)

	results, err := ft.SearchStructured(context.Background(), querybuild.Criteria{City: "Gand"}, "FR", 0, 10)
	if err != nil {
		t.Fatalf("search structured: %v", err)
	}
	if len(results) != 1 || results[0].EnterpriseNumber != "0404412992" {
		t.Fatalf("expected Gent/Gand match via French column, got %+v", results)
	}
}

func TestSearchStructuredNoCriteriaReturnsEverythingWithinPage(t *testing.T) {
	db := seedStructuredSearchBundle(t)
	ft := NewFullText(db)

	results, err := ft.SearchStructured(context.Background(), querybuild.Criteria{}, "NL", 0, 1)
	if err != nil {
		t.Fatalf("search structured: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected page size to cap results at 1, got %d", len(results))
	}
}

func TestSearchStructuredPostalCodeIsExactMatch(t *testing.T) {
	db := seedStructuredSearchBundle(t)
	ft := NewFullText(db)

	results, err := ft.SearchStructured(context.Background(), querybuild.Criteria{PostalCode: "900"}, "NL", 0, 10)
	if err != nil {
		t.Fatalf("search structured: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected exact postal code match to reject a prefix, got %+v", results)
	}
}
