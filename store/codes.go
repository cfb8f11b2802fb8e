// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/model"
)

// AllCodes returns every row of the code table, used by codecache.Load to
// build the in-memory `(category, code_value) → id` map at the start of a
// run.
func (db *DB) AllCodes(ctx context.Context) ([]model.Code, error) {
	var out []model.Code
	if err := sqlscan.Select(ctx, db.conn, &out, "SELECT id, category, code_value FROM code"); err != nil {
		return nil, fmt.Errorf("%w: select codes: %v", apperr.ErrStoreFailure, err)
	}
	return out, nil
}

// CodeDescriptionRow pairs a raw CSV code row with its resolved category,
// the unit ImportCodes operates on.
type CodeDescriptionRow struct {
	Category    model.CodeCategory
	Code        string
	Language    string
	Description string
}

// ImportCodes performs the two-phase codes step of §4.13: stage the CSV
// contents into temp tables, then reconcile them against the live `code`
// and `code_description` tables inside a single transaction. code.csv is
// always a full snapshot, so reconciliation also deletes codes/
// descriptions that disappeared from the source file.
func (db *DB) ImportCodes(ctx context.Context, rows []CodeDescriptionRow) (inserted, deleted int, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: begin import codes: %v", apperr.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TEMP TABLE codes_stage (category TEXT NOT NULL, code TEXT NOT NULL)`); err != nil {
		return 0, 0, fmt.Errorf("%w: create codes_stage: %v", apperr.ErrStoreFailure, err)
	}
	if _, err := tx.ExecContext(ctx, `
		CREATE TEMP TABLE code_description_stage (
			category TEXT NOT NULL, code TEXT NOT NULL, language TEXT NOT NULL, description TEXT NOT NULL
		)`); err != nil {
		return 0, 0, fmt.Errorf("%w: create code_description_stage: %v", apperr.ErrStoreFailure, err)
	}

	codeStmt, err := tx.PrepareContext(ctx, `INSERT INTO codes_stage (category, code) VALUES (?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: prepare codes_stage insert: %v", apperr.ErrStoreFailure, err)
	}
	defer codeStmt.Close()

	descStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO code_description_stage (category, code, language, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: prepare code_description_stage insert: %v", apperr.ErrStoreFailure, err)
	}
	defer descStmt.Close()

	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		key := string(r.Category) + "\x00" + r.Code
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			if _, err := codeStmt.ExecContext(ctx, string(r.Category), r.Code); err != nil {
				return 0, 0, fmt.Errorf("%w: stage code: %v", apperr.ErrStoreFailure, err)
			}
		}
		if _, err := descStmt.ExecContext(ctx, string(r.Category), r.Code, r.Language, r.Description); err != nil {
			return 0, 0, fmt.Errorf("%w: stage code description: %v", apperr.ErrStoreFailure, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO code (category, code_value)
		SELECT DISTINCT category, code FROM codes_stage`)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: insert codes: %v", apperr.ErrStoreFailure, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		inserted = int(n)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO code_description (code_id, language, description)
		SELECT c.id, s.language, s.description
		FROM code_description_stage s
		JOIN code c ON c.category = s.category AND c.code_value = s.code`); err != nil {
		return 0, 0, fmt.Errorf("%w: insert code descriptions: %v", apperr.ErrStoreFailure, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE code_description
		SET description = (
			SELECT s.description FROM code_description_stage s
			JOIN code c ON c.category = s.category AND c.code_value = s.code
			WHERE c.id = code_description.code_id AND s.language = code_description.language
		)
		WHERE EXISTS (
			SELECT 1 FROM code_description_stage s
			JOIN code c ON c.category = s.category AND c.code_value = s.code
			WHERE c.id = code_description.code_id AND s.language = code_description.language
			  AND s.description != code_description.description
		)`); err != nil {
		return 0, 0, fmt.Errorf("%w: update code descriptions: %v", apperr.ErrStoreFailure, err)
	}

	delRes, err := tx.ExecContext(ctx, `
		DELETE FROM code_description
		WHERE NOT EXISTS (
			SELECT 1 FROM code_description_stage s
			JOIN code c ON c.category = s.category AND c.code_value = s.code
			WHERE c.id = code_description.code_id AND s.language = code_description.language
		)`)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: delete stale code descriptions: %v", apperr.ErrStoreFailure, err)
	}
	if n, err := delRes.RowsAffected(); err == nil {
		deleted += int(n)
	}

	codeDelRes, err := tx.ExecContext(ctx, `
		DELETE FROM code
		WHERE NOT EXISTS (SELECT 1 FROM codes_stage s WHERE s.category = code.category AND s.code = code.code_value)`)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: delete stale codes: %v", apperr.ErrStoreFailure, err)
	}
	if n, err := codeDelRes.RowsAffected(); err == nil {
		deleted += int(n)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE codes_stage`); err != nil {
		return 0, 0, fmt.Errorf("%w: drop codes_stage: %v", apperr.ErrStoreFailure, err)
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE code_description_stage`); err != nil {
		return 0, 0, fmt.Errorf("%w: drop code_description_stage: %v", apperr.ErrStoreFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%w: commit import codes: %v", apperr.ErrStoreFailure, err)
	}
	return inserted, deleted, nil
}
