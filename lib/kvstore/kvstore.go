// Package kvstore is the persistence boundary of the pipeline: an opaque
// string-keyed store. Persisted entities are JSON blobs under fixed keys,
// the store itself never interprets them.
package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store interface {
	// Get returns the stored value, and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Config struct {
	// File is a local sqlite path, ":memory:" when empty.
	File string `json:"file"`
	// Url switches to a remote libsql database.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		dsn := config.Url
		if config.AuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", dsn, config.AuthToken)
		}
		return sql.Open("libsql", dsn)
	}
	path := config.File
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty db
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL
);`

type SqlStore struct {
	db *sql.DB
}

func NewSqlStore(db *sql.DB) (SqlStore, error) {
	_, err := db.Exec(schema)
	if err != nil {
		return SqlStore{}, err
	}
	return SqlStore{db: db}, nil
}

func (s SqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s SqlStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// MemoryStore is a Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
