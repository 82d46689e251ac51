package kv

import (
	"context"
	"database/sql"
	"time"
)

// SQLStore implements Store on top of a relational database. It works against
// both SQLite and PostgreSQL; the schema is created by NewSQLiteDB or
// NewPostgresDB before the store is constructed.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an initialized database handle
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	query := `SELECT value FROM kv_documents WHERE key = $1`

	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_documents (key, value, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_documents WHERE key = $1`, key)
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
