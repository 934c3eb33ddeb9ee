package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lwhx/OVH/internal/constants"
	"github.com/lwhx/OVH/internal/lock"
	_ "github.com/lib/pq"
)

const schema = "sniper_schema"

var schemaScripts = []string{
	`CREATE SCHEMA IF NOT EXISTS ` + schema,
	`CREATE TABLE IF NOT EXISTS ` + schema + `.documents (
		key        TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

type PostgresDocumentStore struct {
	db *sql.DB
}

// Open connects, creates the schema under a migration lock and returns a
// ready store.
func Open(ctx context.Context, postgresURL string) (*PostgresDocumentStore, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresDocumentStore(db)
	if err := s.Init(ctx, lock.NewPostgresAdvisoryLock(db)); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// Init creates the schema. Only one instance at a time runs it.
func (s *PostgresDocumentStore) Init(ctx context.Context, locker lock.Locker) error {
	return lock.WithLock(ctx, locker, constants.MigrationLock, func() error {
		for _, script := range schemaScripts {
			if _, err := s.db.ExecContext(ctx, script); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresDocumentStore) Load(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM `+schema+`.documents WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return body, nil
}

func (s *PostgresDocumentStore) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO ` + schema + `.documents (key, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (s *PostgresDocumentStore) Close() error {
	return s.db.Close()
}
