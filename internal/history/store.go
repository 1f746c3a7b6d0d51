package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// FileName is the database file inside the state directory.
const FileName = "history.db"

// Store provides SQLite-backed persistence for export records.
type Store struct {
	db *sql.DB
}

// Open opens the history database inside stateDir.
func Open(stateDir string) (*Store, error) {
	return NewStore(filepath.Join(stateDir, FileName))
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		design TEXT NOT NULL,
		dir TEXT NOT NULL,
		sessions INTEGER DEFAULT 0,
		conditions INTEGER DEFAULT 0,
		compressed INTEGER DEFAULT 0,
		bytes INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS exports_created_at ON exports(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record stores e, assigning an ID and creation time when they are unset.
func (s *Store) Record(e *Export) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	// Stored as text; a single zone keeps created_at ordering lexical.
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.Exec(
		`INSERT INTO exports (id, name, path, design, dir, sessions, conditions, compressed, bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Path, e.Design, e.Dir, e.Sessions, e.Conditions, e.Compressed, e.Bytes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}

	return nil
}

// Get retrieves an export by ID. Returns nil when no record matches.
func (s *Store) Get(id string) (*Export, error) {
	row := s.db.QueryRow(
		`SELECT id, name, path, design, dir, sessions, conditions, compressed, bytes, created_at
		 FROM exports WHERE id = ?`,
		id,
	)

	e, err := scanExport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}

	return e, nil
}

// List returns the most recent exports, newest first.
func (s *Store) List(limit int) ([]Export, error) {
	rows, err := s.db.Query(
		`SELECT id, name, path, design, dir, sessions, conditions, compressed, bytes, created_at
		 FROM exports
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var exports []Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return exports, nil
}

// PruneOlderThan deletes exports created before cutoff and returns how many
// records were removed. The exported files themselves are left alone.
func (s *Store) PruneOlderThan(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM exports WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete exports: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (*Export, error) {
	var e Export
	err := row.Scan(&e.ID, &e.Name, &e.Path, &e.Design, &e.Dir,
		&e.Sessions, &e.Conditions, &e.Compressed, &e.Bytes, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
