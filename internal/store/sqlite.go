package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/rs/xid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const schema = `CREATE TABLE IF NOT EXISTS assets (
	path       TEXT PRIMARY KEY,
	folder     TEXT NOT NULL,
	type       TEXT NOT NULL,
	data       TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps assets as JSON documents in a sqlite database. Rows
// carry the id of the run that last wrote them.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	runID xid.ID
	now   func() time.Time
}

// OpenSQLite opens or creates the database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("create assets table: %w", err)
	}

	return &SQLiteStore{db: db, runID: xid.New(), now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginRun tags the rows written from now on with id.
func (s *SQLiteStore) BeginRun(id xid.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = id
}

// Prepare implements importer.Store. Folders always exist in the database.
func (s *SQLiteStore) Prepare(string, bool) error {
	return s.db.Ping()
}

// Save implements importer.Store. The row is written in one statement.
func (s *SQLiteStore) Save(p string, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode asset %s: %w", p, err)
	}

	s.mu.Lock()
	runID := s.runID
	s.mu.Unlock()

	_, err = s.db.Exec(`INSERT INTO assets (path, folder, type, data, run_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	folder = excluded.folder,
	type = excluded.type,
	data = excluded.data,
	run_id = excluded.run_id,
	updated_at = excluded.updated_at`,
		p, path.Dir(p), fmt.Sprintf("%T", obj), string(data), runID.String(), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save asset %s: %w", p, err)
	}

	return nil
}

// Load implements importer.Store.
func (s *SQLiteStore) Load(p string, into any) (bool, error) {
	var data string

	err := s.db.QueryRow(`SELECT data FROM assets WHERE path = ?`, p).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to load asset %s: %w", p, err)
	}

	if err := json.Unmarshal([]byte(data), into); err != nil {
		return false, fmt.Errorf("failed to parse asset %s: %w", p, err)
	}

	return true, nil
}

// Row is the stored form of an asset.
type Row struct {
	Path      string
	Type      string
	RunID     string
	UpdatedAt string
}

// List returns the rows stored under folder, sorted by path.
func (s *SQLiteStore) List(ctx context.Context, folder string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, type, run_id, updated_at FROM assets WHERE folder = ? ORDER BY path`, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets in %s: %w", folder, err)
	}
	defer rows.Close()

	var out []Row

	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Path, &r.Type, &r.RunID, &r.UpdatedAt); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, rows.Err()
}
