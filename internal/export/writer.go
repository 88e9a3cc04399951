// Package export serializes enriched listings for downstream consumers.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/roboscout/roboscout/internal/listing"
)

// Format represents export format types.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Writer serializes listings.
type Writer interface {
	// WriteAll writes all listings.
	WriteAll(listings []listing.Listing) error

	// Flush ensures all data is written.
	Flush() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty   bool
	indent   string
	minScore int
}

// WithPretty enables pretty-printed JSON.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) { c.pretty = enabled }
}

// WithMinScore drops listings scoring below min before writing.
func WithMinScore(min int) WriterOption {
	return func(c *writerConfig) { c.minScore = min }
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{pretty: true, indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return newJSONWriter(w, cfg), nil
	case FormatCSV:
		return newCSVWriter(w, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// filterByScore keeps listings whose relevancy score meets the minimum.
// A zero minimum keeps everything.
func filterByScore(listings []listing.Listing, minScore int) []listing.Listing {
	if minScore <= 0 {
		return listings
	}
	out := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		score, err := strconv.Atoi(l.GetString("relevancy_score"))
		if err == nil && score >= minScore {
			out = append(out, l)
		}
	}
	return out
}
