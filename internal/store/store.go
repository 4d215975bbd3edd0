package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dirhop/internal/scanner"
)

// Store provides durable persistence for the folder cache.
type Store interface {
	// LoadGeneration returns the persisted generation, or nil if none
	// has ever been saved.
	LoadGeneration() (*Generation, error)
	// SaveGeneration replaces the persisted generation wholesale.
	SaveGeneration(gen *Generation) error
	// InsertFolder adds or refreshes a single folder record.
	InsertFolder(f scanner.Folder) error
	// DeleteFolder removes the record with the given absolute path.
	DeleteFolder(path string) error
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and
// initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadGeneration() (*Generation, error) {
	builtAt, err := s.getMeta("built_at")
	if err != nil {
		return nil, err
	}
	if builtAt == "" {
		return nil, nil // never saved
	}

	gen := &Generation{}

	ts, err := strconv.ParseInt(builtAt, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse built_at: %w", err)
	}
	gen.BuiltAt = time.Unix(ts, 0)

	if v, err := s.getMeta("schema_version"); err != nil {
		return nil, err
	} else if v != "" {
		gen.Schema, _ = strconv.Atoi(v)
	}

	rootsJSON, err := s.getMeta("roots")
	if err != nil {
		return nil, err
	}
	if rootsJSON != "" {
		if err := json.Unmarshal([]byte(rootsJSON), &gen.Roots); err != nil {
			return nil, fmt.Errorf("parse roots: %w", err)
		}
	}

	// rowid is insertion order, which preserves the scanner's
	// shallow-first ordering across a restart.
	rows, err := s.db.Query("SELECT path, rel_path, name, root, seen_at FROM folders ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f scanner.Folder
		if err := rows.Scan(&f.Path, &f.RelPath, &f.Name, &f.Root, &f.SeenAt); err != nil {
			return nil, err
		}
		gen.Folders = append(gen.Folders, f)
	}
	return gen, rows.Err()
}

func (s *SQLiteStore) SaveGeneration(gen *Generation) error {
	rootsJSON, err := json.Marshal(gen.Roots)
	if err != nil {
		return fmt.Errorf("marshal roots: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM folders"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO folders (path, rel_path, name, root, seen_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range gen.Folders {
		if _, err := stmt.Exec(f.Path, f.RelPath, f.Name, f.Root, f.SeenAt); err != nil {
			return fmt.Errorf("insert folder %s: %w", f.Path, err)
		}
	}

	meta := map[string]string{
		"schema_version": strconv.Itoa(gen.Schema),
		"built_at":       strconv.FormatInt(gen.BuiltAt.Unix(), 10),
		"roots":          string(rootsJSON),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) InsertFolder(f scanner.Folder) error {
	_, err := s.db.Exec(`
		INSERT INTO folders (path, rel_path, name, root, seen_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET rel_path = excluded.rel_path, root = excluded.root, seen_at = excluded.seen_at
	`, f.Path, f.RelPath, f.Name, f.Root, f.SeenAt)
	return err
}

func (s *SQLiteStore) DeleteFolder(path string) error {
	_, err := s.db.Exec("DELETE FROM folders WHERE path = ?", path)
	return err
}

func (s *SQLiteStore) getMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
