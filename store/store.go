// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store is the embedded relational store: a single SQLite file
// holding the schema of the KBO registry plus its derived projections.
// Connection lifecycle, migrations, bulk writes and schema resets all
// live here; the query and docbuilder/fts packages consume the opened
// *DB as a thin database/sql wrapper.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/kbo-data/kbodata/apperr"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps the single sqlite connection used for the lifetime of an
// import run or a query session. Per §5, writers hold it exclusively;
// readers query it directly through Conn, outside any transaction.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if absent) the SQLite file at path, applies the
// connect-time pragmas from §4.6 and runs pending migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", apperr.ErrStoreFailure, path, err)
	}
	// Exactly one writer per §5: the mattn/go-sqlite3 driver serializes
	// access to a single *os/file handle poorly under concurrent writers,
	// so we pin the pool to one connection and let SQLite's own locking
	// do the rest.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.applyPragmas(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -200000",
	}
	for _, p := range pragmas {
		if _, err := db.conn.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%w: pragma %q: %v", apperr.ErrStoreFailure, p, err)
		}
	}
	return nil
}

func (db *DB) migrate() error {
	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: migration source: %v", apperr.ErrStoreFailure, err)
	}
	dbDriver, err := sqlite3.WithInstance(db.conn, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("%w: migration driver: %v", apperr.ErrStoreFailure, err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("%w: migrate init: %v", apperr.ErrStoreFailure, err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("%w: migrate up: %v", apperr.ErrStoreFailure, err)
	}
	log.Debug().Str("Path", db.path).Msg("schema migrations applied")
	return nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying *sql.DB for packages that need to run their
// own queries (query, docbuilder, fts).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the file path the store was opened against.
func (db *DB) Path() string {
	return db.path
}

// BaseTablesEmpty reports whether every base table (excluding `meta` and
// `code*`) is empty, the precondition for a non-incremental full import
// per §4.13.
func (db *DB) BaseTablesEmpty(ctx context.Context) (bool, error) {
	tables := []string{"enterprise", "establishment", "branch", "address", "denomination", "contact", "activity"}
	for _, t := range tables {
		var n int
		row := db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t))
		if err := row.Scan(&n); err != nil {
			return false, fmt.Errorf("%w: counting %s: %v", apperr.ErrStoreFailure, t, err)
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}
