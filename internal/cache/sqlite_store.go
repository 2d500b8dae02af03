package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/greekpron/internal/archive"
	"codeberg.org/snonux/greekpron/internal/logging"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS pron_cache (
	key           TEXT PRIMARY KEY,
	transcription TEXT NOT NULL,
	updated_at    INTEGER NOT NULL
)`

const upsertSQL = `INSERT INTO pron_cache (key, transcription, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET transcription = excluded.transcription, updated_at = excluded.updated_at`

// SQLiteStore keeps cache entries as rows of a single SQLite database file.
// The database is opened on first use.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// NewSQLiteStore creates a store backed by the SQLite file at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := s.connect()
	if isCorrupt(err) {
		// move the damaged file aside and start a fresh database
		archived, aerr := archive.ArchiveCache(s.path)
		if aerr != nil {
			return fmt.Errorf("failed to initialize cache database: %w", errors.Join(err, aerr))
		}
		logging.Warn("pronunciation cache database corrupt, moved aside",
			"path", s.path,
			"archive", archived,
			"error", err)
		db, err = s.connect()
	}
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) connect() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	return db, nil
}

// isCorrupt reports whether err means the file is not a usable database
func isCorrupt(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrNotADB || sqliteErr.Code == sqlite3.ErrCorrupt
}

// Load reads every row
func (s *SQLiteStore) Load() (map[string]string, error) {
	if err := s.open(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT key, transcription FROM pron_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache database: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, transcription string
		if err := rows.Scan(&key, &transcription); err != nil {
			return nil, fmt.Errorf("failed to read cache row: %w", err)
		}
		entries[key] = transcription
	}
	return entries, rows.Err()
}

// Persist upserts the changed entry, or every entry when key is empty
func (s *SQLiteStore) Persist(entries map[string]string, key string) error {
	if err := s.open(); err != nil {
		return err
	}

	now := time.Now().Unix()
	if key != "" {
		if _, err := s.db.Exec(upsertSQL, key, entries[key], now); err != nil {
			return fmt.Errorf("failed to store cache entry: %w", err)
		}
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	for k, v := range entries {
		if _, err := tx.Exec(upsertSQL, k, v, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store cache entry: %w", err)
		}
	}
	return tx.Commit()
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database if it was opened
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// IsSQLitePath reports whether path looks like a SQLite database file
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
