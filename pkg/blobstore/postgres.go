package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aulavista/horarios-api/pkg/config"
)

// PostgresStore keeps snapshots in a single key/value table. The database is
// used strictly as a blob container; no relational structure is exposed.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresDB opens a PostgreSQL connection pool with the usual tuning.
func NewPostgresDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewPostgresStore ensures the snapshots table exists and returns the store.
func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS snapshots (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get fetches the blob stored for key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM snapshots WHERE key = $1`
	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	return value, nil
}

// Put replaces the blob stored for key.
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO snapshots (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return nil
}

// Delete removes the key if present.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM snapshots WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}
