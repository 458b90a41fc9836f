// Package prefsdb persists the panel filter in sqlite, one row per world.
package prefsdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"oresight.gg/internal/prefs"
)

type DB struct {
	db      *sql.DB
	worldID string
}

func Open(path, worldID string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if worldID == "" {
		return nil, fmt.Errorf("empty world id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, worldID: worldID}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS filter_state (
  world_id            TEXT PRIMARY KEY,
  enabled             TEXT NOT NULL,
  explicitly_disabled TEXT NOT NULL,
  initialized         INTEGER NOT NULL,
  updated_at          TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Load implements prefs.Backend. A missing row means nothing was ever saved;
// null or malformed key lists load as empty rather than failing the session.
func (d *DB) Load() (prefs.State, bool, error) {
	var st prefs.State
	var enabled, disabled sql.NullString
	var initialized int

	row := d.db.QueryRow(
		`SELECT enabled, explicitly_disabled, initialized FROM filter_state WHERE world_id = ?`,
		d.worldID,
	)
	switch err := row.Scan(&enabled, &disabled, &initialized); err {
	case nil:
	case sql.ErrNoRows:
		return st, false, nil
	default:
		return st, false, err
	}

	st.Enabled = decodeKeys(enabled)
	st.ExplicitlyDisabled = decodeKeys(disabled)
	st.Initialized = initialized != 0
	return st, true, nil
}

func (d *DB) Save(st prefs.State) error {
	enabled, err := json.Marshal(st.Enabled)
	if err != nil {
		return err
	}
	disabled, err := json.Marshal(st.ExplicitlyDisabled)
	if err != nil {
		return err
	}
	initialized := 0
	if st.Initialized {
		initialized = 1
	}
	_, err = d.db.Exec(`
INSERT INTO filter_state (world_id, enabled, explicitly_disabled, initialized, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(world_id) DO UPDATE SET
  enabled = excluded.enabled,
  explicitly_disabled = excluded.explicitly_disabled,
  initialized = excluded.initialized,
  updated_at = excluded.updated_at`,
		d.worldID, string(enabled), string(disabled), initialized,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (d *DB) Close() error { return d.db.Close() }

func decodeKeys(s sql.NullString) []string {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(s.String), &keys); err != nil {
		return nil
	}
	return keys
}
