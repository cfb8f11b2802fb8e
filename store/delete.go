// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kbo-data/kbodata/apperr"
)

// tableKeyColumns maps each fact table to the column(s) its
// `<table>_delete.csv` keys by, per §4.6's incremental delete path.
var tableKeyColumns = map[string][]string{
	"enterprise":    {"enterprise_number"},
	"establishment": {"establishment_number"},
	"branch":        {"id"},
	"address":       {"entity_number", "type_of_address_id"},
	"denomination":  {"entity_number", "language_id", "type_of_denomination_id"},
	"contact":       {"entity_number", "entity_contact_id", "contact_type_id"},
	"activity":      {"entity_number", "activity_group_id", "classification_id", "nace_code_id"},
}

// DeleteByKeys implements the incremental delete path of §4.6: load the
// delete file's key tuples into a temp table, then delete matching rows
// from table in a single statement.
func (db *DB) DeleteByKeys(ctx context.Context, tx *sql.Tx, table string, keys [][]string) (int, error) {
	cols, ok := tableKeyColumns[table]
	if !ok {
		return 0, fmt.Errorf("%w: no key columns registered for %s", apperr.ErrStoreFailure, table)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	tempTable := "delete_keys_" + table
	colDefs := make([]string, len(cols))
	for i, c := range cols {
		colDefs[i] = c + " TEXT NOT NULL"
	}
	createSQL := fmt.Sprintf("CREATE TEMP TABLE %s (%s)", tempTable, strings.Join(colDefs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", apperr.ErrStoreFailure, tempTable, err)
	}
	defer tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", tempTable))

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", tempTable, strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare %s insert: %v", apperr.ErrStoreFailure, tempTable, err)
	}
	defer stmt.Close()

	for _, key := range keys {
		args := make([]any, len(key))
		for i, k := range key {
			args[i] = k
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("%w: stage delete key: %v", apperr.ErrStoreFailure, err)
		}
	}

	joinCond := make([]string, len(cols))
	for i, c := range cols {
		joinCond[i] = fmt.Sprintf("%s.%s = %s.%s", table, c, tempTable, c)
	}
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE EXISTS (SELECT 1 FROM %s WHERE %s)",
		table, tempTable, strings.Join(joinCond, " AND "))
	res, err := tx.ExecContext(ctx, deleteSQL)
	if err != nil {
		return 0, fmt.Errorf("%w: delete from %s: %v", apperr.ErrStoreFailure, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected for %s delete: %v", apperr.ErrStoreFailure, table, err)
	}
	return int(n), nil
}
