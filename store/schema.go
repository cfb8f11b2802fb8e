// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kbo-data/kbodata/apperr"
)

// resettableIndexes lists the indexes that must be re-created alongside
// each base table when it is reset for a full import, since SQLite drops
// a table's indexes along with it.
var resettableIndexes = map[string][]string{
	"establishment": {"CREATE INDEX IF NOT EXISTS idx_establishment_enterprise ON establishment (enterprise_number)"},
	"branch":        {"CREATE INDEX IF NOT EXISTS idx_branch_enterprise ON branch (enterprise_number)"},
	"address":       {"CREATE INDEX IF NOT EXISTS idx_address_entity ON address (entity_number)"},
	"denomination":  {"CREATE INDEX IF NOT EXISTS idx_denomination_entity ON denomination (entity_number)"},
	"contact":       {"CREATE INDEX IF NOT EXISTS idx_contact_entity ON contact (entity_number)"},
	"activity":      {"CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity (entity_number)"},
}

// ResetTable implements the per-step schema reset of §4.6: capture the
// table's CREATE DDL from sqlite_master, drop it, and re-execute the
// captured DDL, then re-create its indexes. Used at the start of each
// fact-table step in full mode.
func (db *DB) ResetTable(ctx context.Context, tx *sql.Tx, table string) error {
	var ddl string
	row := tx.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	if err := row.Scan(&ddl); err != nil {
		return fmt.Errorf("%w: captured CREATE missing for %s: %v", apperr.ErrSchemaMismatch, table, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
		return fmt.Errorf("%w: drop %s: %v", apperr.ErrStoreFailure, table, err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: recreate %s: %v", apperr.ErrStoreFailure, table, err)
	}
	for _, idx := range resettableIndexes[table] {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("%w: recreate index on %s: %v", apperr.ErrStoreFailure, table, err)
		}
	}
	return nil
}

// BeginWrite starts the transaction a single step runs its writes in (a
// default, deferred SQLite transaction), per §5's "exactly one writer,
// sequential step execution".
func (db *DB) BeginWrite(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin write: %v", apperr.ErrStoreFailure, err)
	}
	return tx, nil
}
