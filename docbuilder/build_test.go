// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package docbuilder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/store"
)

func seededDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, _, err = db.ImportCodes(ctx, []store.CodeDescriptionRow{
		{Category: model.CategoryJuridicalSituation, Code: "001", Language: "NL", Description: "Normale situatie"},
		{Category: model.CategoryTypeOfEnterprise, Code: "1", Language: "NL", Description: "Natuurlijk persoon"},
		{Category: model.CategoryLanguage, Code: "1", Language: "NL", Description: "Nederlands"},
		{Category: model.CategoryTypeOfDenomination, Code: "001", Language: "NL", Description: "Maatschappelijke naam"},
	})
	if err != nil {
		t.Fatalf("seed codes: %v", err)
	}
	codes, _ := db.AllCodes(ctx)
	ids := map[model.CodeCategory]int64{}
	for _, c := range codes {
		ids[c.Category] = c.ID
	}

	tx, err := db.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("begin write: %v", err)
	}
	if _, err := db.InsertEnterprises(ctx, tx, []model.Enterprise{
		{EnterpriseNumber: "0403199702", JuridicalSituationID: ids[model.CategoryJuridicalSituation], TypeOfEnterpriseID: ids[model.CategoryTypeOfEnterprise], StartDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}); err != nil {
		t.Fatalf("insert enterprise: %v", err)
	}
	if _, err := db.InsertDenominations(ctx, tx, []model.Denomination{
		{EntityNumber: "0403199702", LanguageID: ids[model.CategoryLanguage], TypeOfDenominationID: ids[model.CategoryTypeOfDenomination], Value: "KBC GROEP"},
	}); err != nil {
		t.Fatalf("insert denomination: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return db
}

func TestRebuildAllProducesOneDocumentPerEnterprise(t *testing.T) {
	db := seededDB(t)
	builder := NewBuilder(db)

	n, err := builder.RebuildAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 document built, got %d", n)
	}

	var payload, etag string
	row := db.Conn().QueryRow("SELECT payload, etag FROM company_document WHERE enterprise_number = ?", "0403199702")
	if err := row.Scan(&payload, &etag); err != nil {
		t.Fatalf("query document: %v", err)
	}
	if etag == "" {
		t.Fatalf("expected non-empty etag")
	}
}

func TestRebuildIsIdempotentOnEtag(t *testing.T) {
	db := seededDB(t)
	builder := NewBuilder(db)
	ctx := context.Background()

	if _, err := builder.RebuildAll(ctx, nil); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	var etag1 string
	db.Conn().QueryRow("SELECT etag FROM company_document WHERE enterprise_number = ?", "0403199702").Scan(&etag1)

	if _, err := builder.RebuildAll(ctx, nil); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	var etag2 string
	db.Conn().QueryRow("SELECT etag FROM company_document WHERE enterprise_number = ?", "0403199702").Scan(&etag2)

	if etag1 != etag2 {
		t.Fatalf("expected stable etag across rebuilds, got %s vs %s", etag1, etag2)
	}
}
