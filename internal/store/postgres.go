package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/roboscout/roboscout/internal/logger"
)

// PostgresStore persists scraped documents in a single scraped_data table.
type PostgresStore struct {
	db *sqlx.DB
}

const scrapedDataSchema = `
CREATE TABLE IF NOT EXISTS scraped_data (
	unique_name     TEXT PRIMARY KEY,
	url             TEXT NOT NULL DEFAULT '',
	raw_data        TEXT NOT NULL DEFAULT '',
	pagination_data JSONB,
	formatted_data  JSONB,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgres connects to Postgres and ensures the scraped_data table
// exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, scrapedDataSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create scraped_data table: %w", err)
	}

	logger.Debug("postgres store ready")
	return &PostgresStore{db: db}, nil
}

// UpsertRaw inserts or replaces the raw text for a document.
func (s *PostgresStore) UpsertRaw(ctx context.Context, id, url, raw string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraped_data (unique_name, url, raw_data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (unique_name)
		DO UPDATE SET url = EXCLUDED.url, raw_data = EXCLUDED.raw_data, updated_at = now()`,
		id, url, raw)
	if err != nil {
		return fmt.Errorf("failed to upsert raw data: %w", err)
	}
	return nil
}

// ReadRaw returns the stored raw text, or "" for unknown documents.
func (s *PostgresStore) ReadRaw(ctx context.Context, id string) (string, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw,
		`SELECT raw_data FROM scraped_data WHERE unique_name = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read raw data: %w", err)
	}
	return raw, nil
}

// UpdatePagination stores the pagination payload, creating the row if needed.
func (s *PostgresStore) UpdatePagination(ctx context.Context, id, url, pagination string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraped_data (unique_name, url, pagination_data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (unique_name)
		DO UPDATE SET pagination_data = EXCLUDED.pagination_data, updated_at = now()`,
		id, url, pagination)
	if err != nil {
		return fmt.Errorf("failed to update pagination data: %w", err)
	}
	return nil
}

// UpdateFormatted stores the structured listings payload, creating the row
// if needed.
func (s *PostgresStore) UpdateFormatted(ctx context.Context, id, url, formatted string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraped_data (unique_name, url, formatted_data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (unique_name)
		DO UPDATE SET formatted_data = EXCLUDED.formatted_data, updated_at = now()`,
		id, url, formatted)
	if err != nil {
		return fmt.Errorf("failed to update formatted data: %w", err)
	}
	return nil
}

// ReadFormatted returns the stored structured payload, or "" for unknown or
// unextracted documents.
func (s *PostgresStore) ReadFormatted(ctx context.Context, id string) (string, error) {
	var formatted sql.NullString
	err := s.db.GetContext(ctx, &formatted,
		`SELECT formatted_data FROM scraped_data WHERE unique_name = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read formatted data: %w", err)
	}
	return formatted.String, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
