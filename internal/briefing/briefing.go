// Package briefing loads stakeholder PDF documents and condenses them into
// the business context that steers extraction and scoring prompts.
package briefing

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/roboscout/roboscout/internal/logger"
)

// LoadDir reads every PDF in dir and returns their concatenated text. A
// missing directory is not an error: runs without a briefing are allowed
// and simply get an empty context.
func LoadDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		logger.Debug("briefing directory not found, continuing without context", "dir", dir)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read briefing directory: %w", err)
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, err := extractText(path)
		if err != nil {
			logger.Warn("failed to read briefing PDF, skipping", "path", path, "error", err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	logger.Debug("briefing loaded", "dir", dir, "documents", len(parts))
	return strings.Join(parts, "\n\n"), nil
}

// extractText pulls plain text from a single PDF file.
func extractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
