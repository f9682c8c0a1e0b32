package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tessro/jukebox/internal/core"
)

const schema = `CREATE TABLE IF NOT EXISTS tracks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	lore TEXT NOT NULL DEFAULT '[]',
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	style TEXT NOT NULL DEFAULT 'cat',
	custom_model_data INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore persists the catalog in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", cleanPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Track implements core.Catalog. Query failures read as a missing track.
func (s *SQLiteStore) Track(id string) (*core.Track, bool) {
	row := s.db.QueryRow(`SELECT id, name, author, lore, duration_seconds, style, custom_model_data FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// List returns all tracks ordered by id.
func (s *SQLiteStore) List() ([]core.Track, error) {
	rows, err := s.db.Query(`SELECT id, name, author, lore, duration_seconds, style, custom_model_data FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var out []core.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Put adds or replaces a track.
func (s *SQLiteStore) Put(t core.Track) error {
	if err := Validate(&t); err != nil {
		return err
	}
	lore := t.Lore
	if lore == nil {
		lore = []string{}
	}
	loreJSON, err := json.Marshal(lore)
	if err != nil {
		return fmt.Errorf("marshal lore: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO tracks (id, name, author, lore, duration_seconds, style, custom_model_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			lore = excluded.lore,
			duration_seconds = excluded.duration_seconds,
			style = excluded.style,
			custom_model_data = excluded.custom_model_data`,
		t.ID, t.Name, t.Author, string(loreJSON), t.DurationSeconds, t.Style, t.CustomModelData)
	if err != nil {
		return fmt.Errorf("put track %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a track.
func (s *SQLiteStore) Delete(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete track %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete track %s: %w", id, err)
	}
	return n > 0, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (core.Track, error) {
	var (
		t    core.Track
		lore string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Author, &lore, &t.DurationSeconds, &t.Style, &t.CustomModelData); err != nil {
		return core.Track{}, err
	}
	if lore != "" {
		if err := json.Unmarshal([]byte(lore), &t.Lore); err != nil {
			return core.Track{}, fmt.Errorf("parse lore for %s: %w", t.ID, err)
		}
	}
	return t, nil
}
