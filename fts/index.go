// Copyright 2024
// SPDX-License-Identifier: Apache-2.0

// Package fts rebuilds the contentless inverted index (company_fts) and its
// sidecar row-id map (company_fts_map) from the company_document payloads
// (§4.10). The FTS5 tokenizer itself is registered by the store package,
// since a schema migration needs it the moment a store.DB is opened.
package fts

import (
	"context"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/docbuilder"
	"github.com/kbo-data/kbodata/store"
)

// ColumnWeights are the fixed BM25 weights for the columns of company_fts
// in declared order (§4.12 Phase C), shared with the query planner.
var ColumnWeights = []float64{5.0, 3.0, 1.0, 1.0, 4.0, 4.0, 2.5, 0.5, 0.5, 0.5, 0.5}

// Rebuilder rebuilds the FTS index from company_document payloads.
type Rebuilder struct {
	DB *store.DB
}

// NewRebuilder creates a Rebuilder bound to db.
func NewRebuilder(db *store.DB) *Rebuilder {
	return &Rebuilder{DB: db}
}

// ftsReportBatch is how often RebuildAll calls back with its running count.
const ftsReportBatch = 200

// RebuildAll empties company_fts (with the FTS5 'delete-all' command) and
// company_fts_map, then refills both from every company_document row in
// enterprise_number order, in a single transaction (§4.10). The tables
// themselves are kept; they are not dropped or recreated. report, if
// non-nil, is called periodically with the running count of rows
// reindexed.
func (r *Rebuilder) RebuildAll(ctx context.Context, report func(int)) (int, error) {
	tx, err := r.DB.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin fts rebuild: %v", apperr.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM company_fts_map"); err != nil {
		return 0, fmt.Errorf("%w: clear company_fts_map: %v", apperr.ErrStoreFailure, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO company_fts(company_fts) VALUES ('delete-all')"); err != nil {
		return 0, fmt.Errorf("%w: clear company_fts: %v", apperr.ErrStoreFailure, err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT enterprise_number, payload FROM company_document ORDER BY enterprise_number")
	if err != nil {
		return 0, fmt.Errorf("%w: list documents: %v", apperr.ErrStoreFailure, err)
	}

	mapStmt, err := tx.PrepareContext(ctx, "INSERT INTO company_fts_map (enterprise_number) VALUES (?)")
	if err != nil {
		rows.Close()
		return 0, fmt.Errorf("%w: prepare map insert: %v", apperr.ErrStoreFailure, err)
	}
	defer mapStmt.Close()

	ftsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO company_fts (rowid, company_name, commercial_name, street_nl, street_fr, city_nl, city_fr,
			postal_code, activity_desc_nl, activity_desc_fr, activity_desc_de, activity_desc_en)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		rows.Close()
		return 0, fmt.Errorf("%w: prepare fts insert: %v", apperr.ErrStoreFailure, err)
	}
	defer ftsStmt.Close()

	n := 0
	for rows.Next() {
		select {
		case <-ctx.Done():
			rows.Close()
			return n, ctx.Err()
		default:
		}

		var enterpriseNumber, payloadJSON string
		if err := rows.Scan(&enterpriseNumber, &payloadJSON); err != nil {
			rows.Close()
			return n, fmt.Errorf("%w: scan document: %v", apperr.ErrStoreFailure, err)
		}
		var payload docbuilder.Payload
		if err := gojson.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			rows.Close()
			return n, fmt.Errorf("unmarshal payload for %s: %w", enterpriseNumber, err)
		}

		res, err := mapStmt.ExecContext(ctx, enterpriseNumber)
		if err != nil {
			rows.Close()
			return n, fmt.Errorf("%w: insert fts map row for %s: %v", apperr.ErrStoreFailure, enterpriseNumber, err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			rows.Close()
			return n, fmt.Errorf("%w: fts map rowid for %s: %v", apperr.ErrStoreFailure, enterpriseNumber, err)
		}

		f := payload.FTS
		if _, err := ftsStmt.ExecContext(ctx, rowid, f.CompanyName, f.CommercialName, f.Street.NL, f.Street.FR,
			f.City.NL, f.City.FR, f.PostalCode, f.Activity.NL, f.Activity.FR, f.Activity.DE, f.Activity.EN); err != nil {
			rows.Close()
			return n, fmt.Errorf("%w: insert fts row for %s: %v", apperr.ErrStoreFailure, enterpriseNumber, err)
		}
		n++
		if report != nil && n%ftsReportBatch == 0 {
			report(n)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("%w: iterate documents: %v", apperr.ErrStoreFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("%w: commit fts rebuild: %v", apperr.ErrStoreFailure, err)
	}
	if report != nil && n > 0 {
		report(n)
	}
	return n, nil
}
