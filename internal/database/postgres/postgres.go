// Package postgres implements the database contracts on PostgreSQL with
// pgvector, for libraries large enough to want a shared database server.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mpetrik/photo-people/internal/config"
)

// Store is a PostgreSQL-backed database.Store.
type Store struct {
	db *sql.DB
}

// Connect opens a connection pool, verifies it and runs migrations.
func Connect(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB returns the underlying sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS persons (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			confirmed  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS faces (
			id         BIGSERIAL PRIMARY KEY,
			photo_path TEXT NOT NULL,
			x          INTEGER NOT NULL,
			y          INTEGER NOT NULL,
			width      INTEGER NOT NULL,
			height     INTEGER NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			embedding  vector(%d),
			person_id  BIGINT REFERENCES persons(id) ON DELETE SET NULL,
			ignored    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, FaceVectorDim),
		`CREATE INDEX IF NOT EXISTS faces_photo_path_idx ON faces(photo_path)`,
		`CREATE INDEX IF NOT EXISTS faces_person_id_idx ON faces(person_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

// FaceVectorDim is the vector column dimension, fixed at schema creation.
const FaceVectorDim = 512

// CreateVectorIndex creates the IVFFlat index for cosine similarity search.
// Should be called once the table has data for sensible list assignment.
func (s *Store) CreateVectorIndex(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS faces_vector_idx
		ON faces USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	return nil
}
