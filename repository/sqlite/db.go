// Package sqlite is the embedded Task Store used by the REPL and by tests. It
// enforces the same partial unique indexes as the Postgres schema.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fastygo/taskbot/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	workspace  TEXT    NOT NULL,
	username   TEXT    NOT NULL,
	name       TEXT    NOT NULL,
	active     BOOLEAN NOT NULL DEFAULT 0,
	completed  BOOLEAN NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	CHECK (NOT (active AND completed))
);
CREATE UNIQUE INDEX IF NOT EXISTS tasks_open_name_idx
	ON tasks (workspace, username, name) WHERE completed = 0;
CREATE UNIQUE INDEX IF NOT EXISTS tasks_single_active_idx
	ON tasks (workspace, username) WHERE active = 1;
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (workspace, created_at);

CREATE TABLE IF NOT EXISTS settings (
	workspace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      TEXT    NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (workspace, key)
);
`

// Open opens (or creates) the database at path and ensures the schema exists.
// The caller is responsible for closing it.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.WrapError(domain.ErrCodeStore, "sqlite: "+op, err)
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
