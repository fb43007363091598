// Package db provides optional PostgreSQL persistence for CV snapshots, so a
// browser session can be resumed later. The in-memory store remains the
// source of truth; persistence failures only degrade recovery.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/cv-builder/internal/cv"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cv_snapshots (
			session_id UUID PRIMARY KEY,
			lang       TEXT NOT NULL,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create cv_snapshots table: %w", err)
	}
	return nil
}

// SaveSnapshot upserts the source snapshot for a session.
func (db *DB) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, doc cv.CVData, lang string) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO cv_snapshots (session_id, lang, document)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE SET lang = $2, document = $3, updated_at = NOW()`,
		sessionID, lang, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot for a session, or (nil, "", nil)
// when no snapshot exists.
func (db *DB) LoadSnapshot(ctx context.Context, sessionID uuid.UUID) (*cv.CVData, string, error) {
	var jsonBytes []byte
	var lang string
	err := db.pool.QueryRow(ctx,
		`SELECT document, lang FROM cv_snapshots WHERE session_id = $1`,
		sessionID,
	).Scan(&jsonBytes, &lang)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load snapshot: %w", err)
	}

	var partial cv.Partial
	if err := json.Unmarshal(jsonBytes, &partial); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	// Stored documents were normalized on the way in, but normalize again so
	// a hand-edited row cannot break the shape invariants.
	doc := cv.Normalize(partial)
	return &doc, lang, nil
}

// DeleteSnapshot removes a session's snapshot.
func (db *DB) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM cv_snapshots WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
