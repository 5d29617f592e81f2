package sqlite

import (
	"database/sql"
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	_ "github.com/mattn/go-sqlite3"
	"os"
	"path/filepath"
)

// sqliteImpl stores all entries in a single SQLite table.
//
// Table:
//
//	entries(key, value)  PRIMARY KEY (key)
type sqliteImpl struct {
	db   *sql.DB
	path string
}

// NewSqliteBackend opens (or creates) the SQLite database at dbPath.
// The special path ":memory:" opens a private in-memory database.
func NewSqliteBackend(dbPath string) (backend.IBackend, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory for %s: %w", dbPath, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", dbPath, err)
	}

	// every connection to ":memory:" is its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	backend.Logger.Infof("sqlite backend opened %s", dbPath)

	return &sqliteImpl{db: db, path: dbPath}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (s *sqliteImpl) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *sqliteImpl) Set(key string, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *sqliteImpl) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM entries WHERE key = ?", key)
	return err
}

func (s *sqliteImpl) Clear() error {
	_, err := s.db.Exec("DELETE FROM entries")
	return err
}

func (s *sqliteImpl) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM entries ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *sqliteImpl) Info() backend.Info {
	meta := map[string]any{"path": s.path}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err == nil {
		meta["entries"] = count
	}

	return backend.Info{
		Name:       "sqlite",
		Persistent: s.path != ":memory:",
		Metadata:   meta,
	}
}

func (s *sqliteImpl) Close() error {
	return s.db.Close()
}
