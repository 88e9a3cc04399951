package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roboscout/roboscout/internal/listing"
)

// csvWriter writes listings as a flat CSV table. Required keys come first
// in their canonical order; any extra fields follow alphabetically.
type csvWriter struct {
	w      *csv.Writer
	cfg    *writerConfig
	buffer []listing.Listing
}

func newCSVWriter(w io.Writer, cfg *writerConfig) *csvWriter {
	return &csvWriter{w: csv.NewWriter(w), cfg: cfg}
}

// WriteAll buffers listings for output.
func (w *csvWriter) WriteAll(listings []listing.Listing) error {
	w.buffer = append(w.buffer, filterByScore(listings, w.cfg.minScore)...)
	return nil
}

// Flush writes the header row and one row per listing.
func (w *csvWriter) Flush() error {
	columns := columnsFor(w.buffer)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = headerFor(col)
	}
	if err := w.w.Write(header); err != nil {
		return err
	}

	for _, l := range w.buffer {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellValue(l[col])
		}
		if err := w.w.Write(row); err != nil {
			return err
		}
	}

	w.w.Flush()
	return w.w.Error()
}

// columnsFor returns the required keys followed by any extra keys present
// across the listings, sorted.
func columnsFor(listings []listing.Listing) []string {
	required := make(map[string]bool, len(listing.RequiredKeys))
	columns := make([]string, 0, len(listing.RequiredKeys))
	for _, key := range listing.RequiredKeys {
		required[key] = true
		columns = append(columns, key)
	}

	extraSet := make(map[string]bool)
	for _, l := range listings {
		for key := range l {
			if !required[key] && !extraSet[key] {
				extraSet[key] = true
			}
		}
	}

	extras := make([]string, 0, len(extraSet))
	for key := range extraSet {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	return append(columns, extras...)
}

// headerFor converts a snake_case key into a Title Case column header.
func headerFor(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		if word == "url" {
			words[i] = "URL"
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// cellValue renders a listing value as a CSV cell.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
