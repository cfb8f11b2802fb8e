// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kbo-data/kbodata/apperr"
)

// Operational meta variables tracked outside the original §3 schema, per
// SPEC_FULL.md §3.
const (
	MetaSchemaVersion             = "schema_version"
	MetaLastFullImportAt          = "last_full_import_at"
	MetaLastIncrementalImportAt   = "last_incremental_import_at"
	MetaLastImportFolder          = "last_import_folder"
)

// GetMeta reads a single meta variable, returning ("", false) when absent.
func (db *DB) GetMeta(ctx context.Context, variable string) (string, bool, error) {
	var value string
	row := db.conn.QueryRowContext(ctx, "SELECT value FROM meta WHERE variable = ?", variable)
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get meta %s: %v", apperr.ErrStoreFailure, variable, err)
	}
	return value, true, nil
}

// SetMeta upserts a meta variable.
func (db *DB) SetMeta(ctx context.Context, variable, value string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO meta (variable, value) VALUES (?, ?)
		ON CONFLICT (variable) DO UPDATE SET value = excluded.value`, variable, value)
	if err != nil {
		return fmt.Errorf("%w: set meta %s: %v", apperr.ErrStoreFailure, variable, err)
	}
	return nil
}

// TableCounts returns the row count of every base and derived table, used
// by `kbodata info`.
func (db *DB) TableCounts(ctx context.Context) (map[string]int, error) {
	tables := []string{
		"enterprise", "establishment", "branch", "address", "denomination",
		"contact", "activity", "code", "code_description", "company_document",
		"company_fts_map",
	}
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		var n int
		row := db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t))
		if err := row.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: counting %s: %v", apperr.ErrStoreFailure, t, err)
		}
		counts[t] = n
	}
	return counts, nil
}
