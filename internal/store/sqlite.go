package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite is the default durable backend: one records table in a single file.
type SQLite struct {
	conn *sqlx.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the store database at path.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate store db: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Get decodes the value at key into `into`. Returns found=false when absent.
func (s *SQLite) Get(key string, into any) (bool, error) {
	var raw string
	err := s.conn.Get(&raw, "SELECT value FROM records WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key, replacing any existing value.
func (s *SQLite) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.conn.Exec(
		"INSERT OR REPLACE INTO records (key, value) VALUES (?, ?)",
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLite) Delete(key string) error {
	if _, err := s.conn.Exec("DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns all keys with the given prefix in sorted order.
func (s *SQLite) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.conn.Select(&keys,
		"SELECT key FROM records WHERE key >= ? AND key < ? ORDER BY key",
		prefix, prefix+"\xff",
	)
	if err != nil {
		return nil, fmt.Errorf("scan prefix %s: %w", prefix, err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
