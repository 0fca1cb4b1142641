// Package reclog persists served recommendations to Postgres for
// later analysis. Logging is best-effort: the store is optional and
// callers are expected to swallow its errors.
package reclog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/recommend"
)

const insertQuery = `
	INSERT INTO recommendations (id, user_id, user_email, user_description, persona, matches, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Schema creates the recommendations table. Applied at startup so the
// daemon works against a fresh database.
const Schema = `
	CREATE TABLE IF NOT EXISTS recommendations (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		user_description TEXT NOT NULL,
		persona JSONB NOT NULL,
		matches JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`

// Store writes recommendation records to Postgres.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// New connects to Postgres and ensures the recommendations table
// exists.
func New(dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring recommendations table: %w", err)
	}

	logger.Info("recommendation log connected")
	return &Store{db: db, logger: logger}, nil
}

// Save implements recommend.Recorder.
func (s *Store) Save(ctx context.Context, rec recommend.Record) error {
	personaJSON, err := json.Marshal(rec.Persona)
	if err != nil {
		return fmt.Errorf("marshaling persona: %w", err)
	}
	matchesJSON, err := json.Marshal(rec.Matches)
	if err != nil {
		return fmt.Errorf("marshaling matches: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertQuery,
		uuid.NewString(),
		rec.UserID,
		rec.UserEmail,
		rec.UserDescription,
		personaJSON,
		matchesJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ recommend.Recorder = (*Store)(nil)
