// Package store persists scraped documents through their lifecycle: raw
// page text, discovered pagination, and the final formatted listings.
package store

import "context"

// Record is one scraped document row.
type Record struct {
	UniqueName     string `db:"unique_name"`
	URL            string `db:"url"`
	RawData        string `db:"raw_data"`
	PaginationData string `db:"pagination_data"`
	FormattedData  string `db:"formatted_data"`
}

// Store is the persistence contract for scraped documents, keyed by a
// stable document identifier. All writes are upserts so re-running a
// pipeline refreshes rows in place.
type Store interface {
	// UpsertRaw inserts or replaces the raw text for a document.
	UpsertRaw(ctx context.Context, id, url, raw string) error

	// ReadRaw returns the stored raw text, or "" when the document is
	// unknown. Absence is not an error.
	ReadRaw(ctx context.Context, id string) (string, error)

	// UpdatePagination stores the serialized pagination payload for a
	// document, creating the row if needed.
	UpdatePagination(ctx context.Context, id, url, pagination string) error

	// UpdateFormatted stores the serialized structured listings for a
	// document, creating the row if needed.
	UpdateFormatted(ctx context.Context, id, url, formatted string) error

	// ReadFormatted returns the stored structured payload, or "" when the
	// document is unknown or not yet extracted.
	ReadFormatted(ctx context.Context, id string) (string, error)

	// Close releases the underlying connection, if any.
	Close() error
}
