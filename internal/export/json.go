package export

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/roboscout/roboscout/internal/listing"
)

// jsonWriter writes listings as one JSON document.
type jsonWriter struct {
	w      *bufio.Writer
	cfg    *writerConfig
	buffer []listing.Listing
}

func newJSONWriter(w io.Writer, cfg *writerConfig) *jsonWriter {
	return &jsonWriter{w: bufio.NewWriter(w), cfg: cfg}
}

// WriteAll buffers listings for output.
func (w *jsonWriter) WriteAll(listings []listing.Listing) error {
	w.buffer = append(w.buffer, filterByScore(listings, w.cfg.minScore)...)
	return nil
}

// Flush writes the buffered listings as {"listings": [...]}.
func (w *jsonWriter) Flush() error {
	doc := map[string]any{"listings": w.buffer}

	var output []byte
	var err error
	if w.cfg.pretty {
		output, err = json.MarshalIndent(doc, "", w.cfg.indent)
	} else {
		output, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}
