// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin','user','test')),
			last_logout_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS order_events (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('acquire','release')),
			item_ids TEXT[] NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		// Refs are append-only; the serial key preserves insertion order and
		// the cascade keeps refs from outliving their event.
		`CREATE TABLE IF NOT EXISTS credential_event_refs (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL REFERENCES credentials(username) ON DELETE CASCADE,
			event_id UUID NOT NULL REFERENCES order_events(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_credential_event_refs_username ON credential_event_refs(username);`,
		`CREATE TABLE IF NOT EXISTS books (
			id UUID PRIMARY KEY,
			title TEXT UNIQUE NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			genres TEXT[] NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			published_year TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			cover_image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
