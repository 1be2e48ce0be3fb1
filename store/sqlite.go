package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a single table; parent_id carries no foreign key
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// single writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

const selectColumns = `id, created_at, base_name, length, params, upvotes, downvotes, fitness, parent_id`

func (s *SQLiteStore) ListAll(ctx context.Context) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+selectColumns+` FROM runs ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, base_name, length, params, upvotes, downvotes, fitness, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UTC().UnixNano(), rec.BaseName, rec.Length, rec.Params,
		rec.Upvotes, rec.Downvotes, rec.Fitness, rec.ParentID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) UpdateFitness(ctx context.Context, id string, fitness float64) error {
	return s.exec(ctx, id, `UPDATE runs SET fitness = ? WHERE id = ?`, fitness, id)
}

func (s *SQLiteStore) AddFeedback(ctx context.Context, id string, up, down int) error {
	return s.exec(ctx, id, `UPDATE runs SET upvotes = upvotes + ?, downvotes = downvotes + ? WHERE id = ?`, up, down, id)
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// exec runs a single-row update and maps zero affected rows to ErrNotFound
func (s *SQLiteStore) exec(ctx context.Context, id, query string, args ...any) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (RunRecord, error) {
	var (
		rec     RunRecord
		created int64
	)
	err := row.Scan(&rec.ID, &created, &rec.BaseName, &rec.Length, &rec.Params,
		&rec.Upvotes, &rec.Downvotes, &rec.Fitness, &rec.ParentID)
	if err != nil {
		return RunRecord{}, err
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL,
			base_name TEXT NOT NULL,
			length INTEGER NOT NULL,
			params TEXT NOT NULL,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			fitness REAL NOT NULL DEFAULT 0,
			parent_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS runs_parent ON runs(parent_id);
	`)
	return err
}
